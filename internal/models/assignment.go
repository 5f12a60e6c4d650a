package models

import "time"

// SectionAssignment grants a collaborator authorship over one section.
type SectionAssignment struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	SectionID int64     `db:"section_id" json:"section_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SectionAssignmentDetail is the joined row shown on the admin screen.
type SectionAssignmentDetail struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"full_name"`
	SectionID    int64     `db:"section_id" json:"section_id"`
	SectionLabel string    `db:"section_label" json:"section_label"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CountryAssignment grants a collaborator authorship scope over one country.
type CountryAssignment struct {
	UserID    int64 `db:"user_id" json:"user_id"`
	CountryID int64 `db:"country_id" json:"country_id"`
}
