package models

import "time"

// Campus is an organizational site. Read-only from the assignment core.
type Campus struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	City      string    `db:"city" json:"city"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PermissionScope is the capability granted at a campus.
type PermissionScope string

const (
	ScopeView   PermissionScope = "VIEW"
	ScopeManage PermissionScope = "MANAGE"
)

// CampusPermission grants a user a scope at one campus.
type CampusPermission struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	CampusID  string          `db:"campus_id" json:"campus_id"`
	Scope     PermissionScope `db:"scope" json:"scope"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
