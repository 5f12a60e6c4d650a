package models

import "time"

// Section is a reusable topic of a talking-points document.
type Section struct {
	ID         int64     `db:"id" json:"id"`
	Key        string    `db:"key" json:"key"`
	Label      string    `db:"label" json:"label"`
	OrderIndex int       `db:"order_index" json:"order_index"`
	Active     bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Country is a reference entity scoping both events and collaborator
// assignments.
type Country struct {
	ID        int64     `db:"id" json:"id"`
	NameEN    string    `db:"name_en" json:"name_en"`
	Code      string    `db:"code" json:"code"`
	Active    bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
