package models

import "time"

// SectionStatus is the per-section workflow state of a tp_content row.
type SectionStatus string

const (
	SectionDraft                SectionStatus = "draft"
	SectionSubmitted            SectionStatus = "submitted"
	SectionReturned             SectionStatus = "returned"
	SectionApprovedBySupervisor SectionStatus = "approved_by_supervisor"
	SectionApprovedByChairman   SectionStatus = "approved_by_chairman"
)

// ContentItem is one (event, country, section) talking-points record. Rows are
// created lazily on first access with status draft and an empty body; the
// absence of a row is never caller-visible.
type ContentItem struct {
	ID                  int64         `db:"id" json:"id"`
	EventID             int64         `db:"event_id" json:"event_id"`
	CountryID           int64         `db:"country_id" json:"country_id"`
	SectionID           int64         `db:"section_id" json:"section_id"`
	HTMLContent         string        `db:"html_content" json:"html_content"`
	Status              SectionStatus `db:"status" json:"status"`
	StatusComment       *string       `db:"status_comment" json:"status_comment,omitempty"`
	LastUpdatedByUserID *int64        `db:"last_updated_by_user_id" json:"last_updated_by_user_id,omitempty"`
	LastUpdatedAt       time.Time     `db:"last_updated_at" json:"last_updated_at"`
}
