package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	"github.com/gov-collab/portal-api/internal/service"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
	"github.com/gov-collab/portal-api/pkg/response"
)

// DocumentHandler wires the document-level workflow endpoints.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// SubmitToSupervisor godoc
// @Summary Submit the document to the supervisor
// @Tags Documents
// @Accept json
// @Security BearerAuth
// @Param payload body dto.DocumentActionRequest true "Target document"
// @Success 204 "No Content"
// @Router /document/submit-to-supervisor [post]
func (h *DocumentHandler) SubmitToSupervisor(c *gin.Context) {
	h.action(c, h.service.SubmitToSupervisor)
}

// SubmitToChairman godoc
// @Summary Escalate the document to the chairman
// @Description Fails with 412 unless every required section has supervisor approval
// @Tags Documents
// @Accept json
// @Security BearerAuth
// @Param payload body dto.DocumentActionRequest true "Target document"
// @Success 204 "No Content"
// @Failure 412 {object} response.Envelope
// @Router /document/submit-to-chairman [post]
func (h *DocumentHandler) SubmitToChairman(c *gin.Context) {
	h.action(c, h.service.SubmitToChairman)
}

// Approve godoc
// @Summary Approve the document
// @Description Cascades chairman approval onto every required section
// @Tags Documents
// @Accept json
// @Security BearerAuth
// @Param payload body dto.DocumentActionRequest true "Target document"
// @Success 204 "No Content"
// @Router /document/approve [post]
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.action(c, h.service.Approve)
}

// Return godoc
// @Summary Return the document with a chairman comment
// @Tags Documents
// @Accept json
// @Security BearerAuth
// @Param payload body dto.ReturnDocumentRequest true "Return payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /document/return [post]
func (h *DocumentHandler) Return(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReturnDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid return payload"))
		return
	}
	if err := h.service.Return(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *DocumentHandler) action(c *gin.Context, fn func(ctx context.Context, claims *models.JWTClaims, req dto.DocumentActionRequest) error) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DocumentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}
	if err := fn(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
