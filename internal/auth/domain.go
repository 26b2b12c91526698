// Package auth implements credential checks and bearer-token session
// endpoints. Tokens are opaque and stored in Redis via shared.SessionManager.
package auth

import "time"

// User is the authentication view of an account. PasswordHash is a bcrypt
// digest and never leaves the package.
type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
