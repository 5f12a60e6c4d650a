package dto

import "time"

// CreateEventRequest adds an event with its required-section set.
type CreateEventRequest struct {
	CountryID    int64      `json:"countryId" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Occasion     *string    `json:"occasion,omitempty"`
	DeadlineDate *time.Time `json:"deadlineDate,omitempty"`
	SectionIDs   []int64    `json:"sectionIds" validate:"required,min=1"`
}

// UpdateEventRequest edits an event and replaces its required-section set.
type UpdateEventRequest struct {
	CountryID    int64      `json:"countryId" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Occasion     *string    `json:"occasion,omitempty"`
	DeadlineDate *time.Time `json:"deadlineDate,omitempty"`
	SectionIDs   []int64    `json:"sectionIds" validate:"required,min=1"`
}
