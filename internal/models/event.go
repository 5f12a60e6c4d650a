package models

import "time"

// Event is one diplomatic occasion requiring a talking-points document.
type Event struct {
	ID              int64      `db:"id" json:"id"`
	CountryID       int64      `db:"country_id" json:"country_id"`
	CountryNameEN   string     `db:"country_name_en" json:"country_name_en"`
	Title           string     `db:"title" json:"title"`
	Occasion        *string    `db:"occasion" json:"occasion,omitempty"`
	DeadlineDate    *time.Time `db:"deadline_date" json:"deadline_date,omitempty"`
	CreatedByUserID *int64     `db:"created_by_user_id" json:"-"`
	Active          bool       `db:"is_active" json:"is_active"`
	EndedAt         *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	EndedByUserID   *int64     `db:"ended_by_user_id" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Ended reports the one-way terminal marker, distinct from Active.
func (e *Event) Ended() bool {
	return e != nil && e.EndedAt != nil
}

// RequiredSection joins an event with one section it must complete.
type RequiredSection struct {
	ID         int64  `db:"id" json:"id"`
	EventID    int64  `db:"event_id" json:"event_id"`
	SectionID  int64  `db:"section_id" json:"section_id"`
	SectionKey string `db:"section_key" json:"section_key"`
	Label      string `db:"label" json:"label"`
	OrderIndex int    `db:"order_index" json:"order_index"`
}

// EventDetail is an event plus its ordered required sections.
type EventDetail struct {
	Event
	RequiredSections []RequiredSection `json:"required_sections"`
}
