package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	"github.com/gov-collab/portal-api/internal/service"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
	"github.com/gov-collab/portal-api/pkg/response"
)

// ContentHandler wires the per-section talking-points endpoints.
type ContentHandler struct {
	content  *service.ContentService
	document *service.DocumentService
}

// NewContentHandler creates a new handler.
func NewContentHandler(content *service.ContentService, document *service.DocumentService) *ContentHandler {
	return &ContentHandler{content: content, document: document}
}

// Get godoc
// @Summary Load one section for editing
// @Tags TalkingPoints
// @Produce json
// @Security BearerAuth
// @Param event_id query int true "Event ID"
// @Param country_id query int false "Country ID, defaults to the event's country"
// @Param section_id query int true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tp [get]
func (h *ContentHandler) Get(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	eventID, err := requireQueryID(c, "event_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	sectionID, err := requireQueryID(c, "section_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	countryID, err := queryID(c, "country_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.content.Get(c.Request.Context(), claims, eventID, countryID, sectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Save godoc
// @Summary Save a section body
// @Tags TalkingPoints
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SaveContentRequest true "Save payload"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tp/save [post]
func (h *ContentHandler) Save(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SaveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	if err := h.content.Save(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit a section to the supervisor
// @Tags TalkingPoints
// @Accept json
// @Security BearerAuth
// @Param payload body dto.SectionActionRequest true "Target section"
// @Success 204 "No Content"
// @Router /tp/submit [post]
func (h *ContentHandler) Submit(c *gin.Context) {
	claims, req, ok := h.bindSectionAction(c)
	if !ok {
		return
	}
	if err := h.content.Submit(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Return godoc
// @Summary Return a section with a comment
// @Tags TalkingPoints
// @Accept json
// @Security BearerAuth
// @Param payload body dto.ReturnSectionRequest true "Return payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /tp/return [post]
func (h *ContentHandler) Return(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReturnSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid return payload"))
		return
	}
	if err := h.content.Return(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApproveSection godoc
// @Summary Approve a section as supervisor
// @Tags TalkingPoints
// @Accept json
// @Security BearerAuth
// @Param payload body dto.SectionActionRequest true "Target section"
// @Success 204 "No Content"
// @Router /tp/approve-section [post]
func (h *ContentHandler) ApproveSection(c *gin.Context) {
	claims, req, ok := h.bindSectionAction(c)
	if !ok {
		return
	}
	if err := h.content.ApproveBySupervisor(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApproveSectionChairman godoc
// @Summary Approve a section as chairman
// @Tags TalkingPoints
// @Accept json
// @Security BearerAuth
// @Param payload body dto.SectionActionRequest true "Target section"
// @Success 204 "No Content"
// @Router /tp/approve-section-chairman [post]
func (h *ContentHandler) ApproveSectionChairman(c *gin.Context) {
	claims, req, ok := h.bindSectionAction(c)
	if !ok {
		return
	}
	if err := h.content.ApproveByChairman(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ApproveAllSections godoc
// @Summary Approve every required section at once
// @Tags TalkingPoints
// @Accept json
// @Security BearerAuth
// @Param payload body dto.DocumentActionRequest true "Target document"
// @Success 204 "No Content"
// @Router /tp/approve-all-sections [post]
func (h *ContentHandler) ApproveAllSections(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DocumentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approve-all payload"))
		return
	}
	if err := h.content.ApproveAll(c.Request.Context(), claims, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StatusGrid godoc
// @Summary Per-section status grid for one document
// @Tags TalkingPoints
// @Produce json
// @Security BearerAuth
// @Param event_id query int true "Event ID"
// @Param country_id query int false "Country ID"
// @Success 200 {object} response.Envelope
// @Router /tp/status-grid [get]
func (h *ContentHandler) StatusGrid(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	eventID, err := requireQueryID(c, "event_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	countryID, err := queryID(c, "country_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	grid, err := h.content.StatusGrid(c.Request.Context(), claims, eventID, countryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid)
}

// DocumentStatus godoc
// @Summary Aggregate document status
// @Tags TalkingPoints
// @Produce json
// @Security BearerAuth
// @Param event_id query int true "Event ID"
// @Param country_id query int false "Country ID"
// @Success 200 {object} response.Envelope
// @Router /tp/document-status [get]
func (h *ContentHandler) DocumentStatus(c *gin.Context) {
	eventID, err := requireQueryID(c, "event_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	countryID, err := queryID(c, "country_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.document.Status(c.Request.Context(), eventID, countryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

func (h *ContentHandler) bindSectionAction(c *gin.Context) (*models.JWTClaims, dto.SectionActionRequest, bool) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return nil, dto.SectionActionRequest{}, false
	}
	var req dto.SectionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return nil, dto.SectionActionRequest{}, false
	}
	return claims, req, true
}
