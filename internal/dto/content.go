package dto

// SaveContentRequest writes one section body. Country defaults to the event's
// owning country when omitted.
type SaveContentRequest struct {
	EventID     int64  `json:"eventId" validate:"required"`
	CountryID   *int64 `json:"countryId,omitempty"`
	SectionID   int64  `json:"sectionId" validate:"required"`
	HTMLContent string `json:"htmlContent"`
}

// SectionActionRequest identifies the target of a workflow transition.
type SectionActionRequest struct {
	EventID   int64  `json:"eventId" validate:"required"`
	CountryID *int64 `json:"countryId,omitempty"`
	SectionID int64  `json:"sectionId" validate:"required"`
}

// ReturnSectionRequest sends a section back with a mandatory note.
type ReturnSectionRequest struct {
	EventID   int64  `json:"eventId" validate:"required"`
	CountryID *int64 `json:"countryId,omitempty"`
	SectionID int64  `json:"sectionId" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
}

// DocumentActionRequest identifies the target of a document transition.
type DocumentActionRequest struct {
	EventID   int64  `json:"eventId" validate:"required"`
	CountryID *int64 `json:"countryId,omitempty"`
}

// ReturnDocumentRequest sends the whole document back with a mandatory note.
type ReturnDocumentRequest struct {
	EventID   int64  `json:"eventId" validate:"required"`
	CountryID *int64 `json:"countryId,omitempty"`
	Comment   string `json:"comment" validate:"required"`
}
