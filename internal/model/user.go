package model

import "time"

// Roles a user can hold.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a row of the users table. Name fields may be empty on legacy
// records; the matcher treats them as such instead of rejecting the user.
type User struct {
	ID           int64     `json:"id"`
	LastName     string    `json:"last_name"`
	FirstName    string    `json:"first_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
