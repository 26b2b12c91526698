// Package users manages staff accounts: creation, activation, password
// resets, and role assignment.
package users

import "time"

// User is a staff account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserWithRoles includes the role names assigned to an account.
type UserWithRoles struct {
	User
	Roles []string `json:"roles"`
}
