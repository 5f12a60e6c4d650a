package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/middleware"
	"github.com/gov-collab/portal-api/internal/models"
)

func TestContentGetRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tp?event_id=1&section_id=10", nil)
	c.Request = req

	handler.Get(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestContentGetRejectsMissingEventID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tp?section_id=10", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Role: models.RoleCollaborator})

	handler.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContentGetRejectsNonNumericCountryID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/tp?event_id=1&section_id=10&country_id=japan", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Role: models.RoleCollaborator})

	handler.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewContentHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/tp/save", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 7, Role: models.RoleCollaborator})

	handler.Save(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
