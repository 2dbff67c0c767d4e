package models

import "time"

// PersonKind distinguishes the two populations sharing the assignment graph.
type PersonKind string

const (
	PersonKindTeacher PersonKind = "TEACHER"
	PersonKindStudent PersonKind = "STUDENT"
)

// Person is an identity record owned by the identity subsystem.
// The assignment core reads it but never writes it.
type Person struct {
	ID        string     `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Email     string     `db:"email" json:"email"`
	Kind      PersonKind `db:"kind" json:"kind"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
