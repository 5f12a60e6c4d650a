package dto

import (
	"time"

	"github.com/gov-collab/portal-api/internal/models"
)

// StatusGridRow is one required section's workflow state for dashboards.
type StatusGridRow struct {
	SectionID     int64                `db:"section_id" json:"sectionId"`
	SectionKey    string               `db:"section_key" json:"sectionKey"`
	SectionLabel  string               `db:"section_label" json:"sectionLabel"`
	Status        models.SectionStatus `db:"status" json:"status"`
	StatusComment string               `db:"status_comment" json:"statusComment,omitempty"`
	LastUpdatedAt *time.Time           `db:"last_updated_at" json:"lastUpdatedAt,omitempty"`
}

// StatusGrid is the full dashboard projection for one event document.
type StatusGrid struct {
	EventID   int64           `json:"eventId"`
	CountryID int64           `json:"countryId"`
	Sections  []StatusGridRow `json:"sections"`
}
