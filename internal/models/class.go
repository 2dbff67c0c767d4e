package models

import "time"

// Class is a scheduled group of students belonging to exactly one campus.
type Class struct {
	ID        string    `db:"id" json:"id"`
	CampusID  string    `db:"campus_id" json:"campus_id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
