package dto

import (
	"time"

	"github.com/gov-collab/portal-api/internal/models"
)

// LibraryEntry is one approved document in the per-country library listing.
type LibraryEntry struct {
	EventID      int64      `json:"event_id"`
	Title        string     `json:"title"`
	DeadlineDate *time.Time `json:"deadline_date,omitempty"`
	LastUpdated  time.Time  `json:"last_updated"`
}

// LibrarySection is one assembled section of a library document.
type LibrarySection struct {
	SectionID    int64                `json:"sectionId"`
	SectionLabel string               `json:"sectionLabel"`
	Status       models.SectionStatus `json:"status"`
	HTMLContent  string               `json:"htmlContent"`
}

// LibraryEventMeta describes the event heading of an assembled document.
type LibraryEventMeta struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	CountryName  string     `json:"countryName"`
	Occasion     string     `json:"occasion,omitempty"`
	DeadlineDate *time.Time `json:"deadlineDate,omitempty"`
}

// LibraryDocument is the full read-only assembly of one event's document.
type LibraryDocument struct {
	Event          LibraryEventMeta       `json:"event"`
	DocumentStatus *models.DocumentStatus `json:"documentStatus"`
	Sections       []LibrarySection       `json:"sections"`
}

// ContentView is the editor payload for a single talking-points section.
type ContentView struct {
	EventID       int64                `json:"eventId"`
	EventTitle    string               `json:"eventTitle"`
	CountryID     int64                `json:"countryId"`
	CountryName   string               `json:"countryName"`
	SectionID     int64                `json:"sectionId"`
	SectionLabel  string               `json:"sectionLabel"`
	HTMLContent   string               `json:"htmlContent"`
	Status        models.SectionStatus `json:"status"`
	StatusComment string               `json:"statusComment,omitempty"`
	LastUpdatedBy string               `json:"lastUpdatedBy,omitempty"`
	LastUpdatedAt *time.Time           `json:"lastUpdatedAt,omitempty"`
}
