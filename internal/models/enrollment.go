package models

import "time"

// LegacyEnrollment mirrors the pre-migration enrollments table.
// The backfill runner reads it to infer which campus a person belongs to;
// steady-state code never touches it.
type LegacyEnrollment struct {
	ID       string    `db:"id"`
	PersonID string    `db:"person_id"`
	ClassID  string    `db:"class_id"`
	Status   string    `db:"status"`
	JoinedAt time.Time `db:"joined_at"`
}

// InferredCampus is a distinct (person, campus) pair derived from legacy
// enrollments via the class the person was enrolled in.
type InferredCampus struct {
	PersonID string `db:"person_id"`
	CampusID string `db:"campus_id"`
}
