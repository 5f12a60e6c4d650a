package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/service"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
	"github.com/gov-collab/portal-api/pkg/response"
)

// AssignmentHandler wires the collaborator grant endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// ListSectionAssignments godoc
// @Summary List section assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /section-assignments [get]
func (h *AssignmentHandler) ListSectionAssignments(c *gin.Context) {
	rows, err := h.service.ListSectionAssignments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// CreateSectionAssignment godoc
// @Summary Grant a section to a collaborator
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSectionAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /section-assignments [post]
func (h *AssignmentHandler) CreateSectionAssignment(c *gin.Context) {
	var req dto.CreateSectionAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if err := h.service.GrantSection(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"userId": req.UserID, "sectionId": req.SectionID})
}

// DeleteSectionAssignment godoc
// @Summary Revoke a section assignment
// @Tags Assignments
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /section-assignments/{id} [delete]
func (h *AssignmentHandler) DeleteSectionAssignment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.RevokeSection(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetCountryAssignments godoc
// @Summary Country assignments of one user
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param user_id query int true "User ID"
// @Success 200 {object} response.Envelope
// @Router /country-assignments [get]
func (h *AssignmentHandler) GetCountryAssignments(c *gin.Context) {
	userID, err := requireQueryID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	ids, err := h.service.CountryIDsForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"userId": userID, "countryIds": ids})
}

// ReplaceCountryAssignments godoc
// @Summary Replace a collaborator's country set
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ReplaceCountryAssignmentsRequest true "Assignment payload"
// @Success 204 "No Content"
// @Failure 400 {object} response.Envelope
// @Router /country-assignments [put]
func (h *AssignmentHandler) ReplaceCountryAssignments(c *gin.Context) {
	var req dto.ReplaceCountryAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	if err := h.service.ReplaceCountries(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
