package models

import "time"

// Student is an account record. Active is a pointer because the backend omits
// the flag for legacy rows; a missing flag means the account is active.
type Student struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	Active    *bool      `json:"active,omitempty"`
	Deleted   bool       `json:"deleted,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// IsActive treats a missing active flag as true.
func (s Student) IsActive() bool {
	return s.Active == nil || *s.Active
}
