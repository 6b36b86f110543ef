package models

import "time"

// User roles issued by the session endpoint.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// UserSession is the credential record returned by POST /sessions/login.
// The token is opaque to this client.
type UserSession struct {
	ID           int64      `json:"id,omitempty"`
	Username     string     `json:"username"`
	UserRole     string     `json:"userRole"`
	SessionToken string     `json:"sessionToken"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	Active       bool       `json:"active,omitempty"`
}
