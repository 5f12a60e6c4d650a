package models

import "time"

// DocStatus is the coarse, independently-transitioned document state. It is
// not derived from section statuses; only the document-approve cascade writes
// both machines.
type DocStatus string

const (
	DocInProgress            DocStatus = "in_progress"
	DocSubmittedToSupervisor DocStatus = "submitted_to_supervisor"
	DocSubmittedToChairman   DocStatus = "submitted_to_chairman"
	DocApproved              DocStatus = "approved"
	DocReturned              DocStatus = "returned"
)

// DocumentStatus is one (event, country) aggregate record, lazily created
// with status in_progress on first touch.
type DocumentStatus struct {
	ID              int64     `db:"id" json:"id"`
	EventID         int64     `db:"event_id" json:"event_id"`
	CountryID       int64     `db:"country_id" json:"country_id"`
	Status          DocStatus `db:"status" json:"status"`
	ChairmanComment *string   `db:"chairman_comment" json:"chairman_comment,omitempty"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
