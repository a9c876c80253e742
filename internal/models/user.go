package models

import "time"

// User is a registered account; talents join challenges, admins manage them
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name for display
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
