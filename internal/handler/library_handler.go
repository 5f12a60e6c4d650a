package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gov-collab/portal-api/internal/service"
	"github.com/gov-collab/portal-api/pkg/response"
)

// LibraryHandler wires the read-only archive endpoints.
type LibraryHandler struct {
	service    *service.LibraryService
	pdfEnabled bool
}

// NewLibraryHandler creates a new handler.
func NewLibraryHandler(svc *service.LibraryService, pdfEnabled bool) *LibraryHandler {
	return &LibraryHandler{service: svc, pdfEnabled: pdfEnabled}
}

// List godoc
// @Summary List approved documents
// @Tags Library
// @Produce json
// @Security BearerAuth
// @Param country_id query int false "Country ID"
// @Success 200 {object} response.Envelope
// @Router /library [get]
func (h *LibraryHandler) List(c *gin.Context) {
	countryID, err := queryID(c, "country_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.service.ListApproved(c.Request.Context(), countryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Document godoc
// @Summary Read one assembled document
// @Tags Library
// @Produce json
// @Security BearerAuth
// @Param event_id query int true "Event ID"
// @Param country_id query int false "Country ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /library/document [get]
func (h *LibraryHandler) Document(c *gin.Context) {
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
	doc, err := h.service.GetDocument(c.Request.Context(), eventID, countryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// DocumentPDF godoc
// @Summary Download one assembled document as PDF
// @Tags Library
// @Produce application/pdf
// @Security BearerAuth
// @Param event_id query int true "Event ID"
// @Param country_id query int false "Country ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /library/document/pdf [get]
func (h *LibraryHandler) DocumentPDF(c *gin.Context) {
	if !h.pdfEnabled {
		c.Status(http.StatusNotFound)
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
	out, err := h.service.ExportPDF(c.Request.Context(), eventID, countryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="talking-points-%d.pdf"`, eventID))
	c.Data(http.StatusOK, "application/pdf", out)
}
