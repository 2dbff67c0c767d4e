package models

import "time"

// AssignmentStatus is the lifecycle of a campus assignment.
// ACTIVE and INACTIVE flip back and forth; ARCHIVED is terminal.
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "ACTIVE"
	AssignmentStatusInactive AssignmentStatus = "INACTIVE"
	AssignmentStatusArchived AssignmentStatus = "ARCHIVED"
)

// Valid reports whether the status is one of the known values.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusActive, AssignmentStatusInactive, AssignmentStatusArchived:
		return true
	}
	return false
}

// CanTransitionTo enforces the status state machine.
func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	if !next.Valid() || s == AssignmentStatusArchived {
		return false
	}
	return s != next
}

// CampusAssignment links one person to one campus.
// At most one row per (person_id, campus_id); at most one ACTIVE row per
// person carries is_primary = true.
type CampusAssignment struct {
	ID        string           `db:"id" json:"id"`
	PersonID  string           `db:"person_id" json:"person_id"`
	CampusID  string           `db:"campus_id" json:"campus_id"`
	IsPrimary bool             `db:"is_primary" json:"is_primary"`
	Status    AssignmentStatus `db:"status" json:"status"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// CampusAssignmentDetail enriches a campus assignment with denormalized
// person and campus summaries plus its class assignments.
type CampusAssignmentDetail struct {
	CampusAssignment
	PersonName string                  `db:"person_name" json:"person_name"`
	CampusName string                  `db:"campus_name" json:"campus_name"`
	Classes    []ClassAssignmentDetail `db:"-" json:"classes,omitempty"`
}

// ClassAssignment hangs a class membership off a campus assignment.
// The class must belong to the same campus as the parent assignment.
type ClassAssignment struct {
	ID                 string           `db:"id" json:"id"`
	CampusAssignmentID string           `db:"campus_assignment_id" json:"campus_assignment_id"`
	ClassID            string           `db:"class_id" json:"class_id"`
	IsClassTeacher     bool             `db:"is_class_teacher" json:"is_class_teacher"`
	Status             AssignmentStatus `db:"status" json:"status"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
}

// ClassAssignmentDetail enriches a class assignment with class info and
// its subject assignments.
type ClassAssignmentDetail struct {
	ClassAssignment
	ClassName string                    `db:"class_name" json:"class_name"`
	Subjects  []SubjectAssignmentDetail `db:"-" json:"subjects,omitempty"`
}

// SubjectAssignment attaches a subject to a class assignment.
type SubjectAssignment struct {
	ID                string           `db:"id" json:"id"`
	ClassAssignmentID string           `db:"class_assignment_id" json:"class_assignment_id"`
	SubjectID         string           `db:"subject_id" json:"subject_id"`
	Status            AssignmentStatus `db:"status" json:"status"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// SubjectAssignmentDetail enriches a subject assignment with subject info.
type SubjectAssignmentDetail struct {
	SubjectAssignment
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}

// RosterEntry pairs a person with their assignment at one campus.
type RosterEntry struct {
	Person     Person                 `json:"person"`
	Assignment CampusAssignmentDetail `json:"assignment"`
}

// RosterRow is the flat join shape scanned from the roster query.
type RosterRow struct {
	CampusAssignment
	PersonName  string     `db:"person_name"`
	PersonEmail string     `db:"person_email"`
	PersonKind  PersonKind `db:"person_kind"`
	CampusName  string     `db:"campus_name"`
}
