package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gov-collab/portal-api/internal/middleware"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

// claimsFromContext extracts the authenticated claims set by the JWT
// middleware.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, error) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

// queryID parses an optional int64 query parameter, returning nil when
// absent.
func queryID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return &id, nil
}

// requireQueryID parses a mandatory int64 query parameter.
func requireQueryID(c *gin.Context, name string) (int64, error) {
	id, err := queryID(c, name)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" is required")
	}
	return *id, nil
}
