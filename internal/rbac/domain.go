// Package rbac provides role and permission management plus the HTTP
// authorization middleware gating every protected route.
package rbac

import "time"

// Role groups a set of permissions.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is a named capability checked by the middleware.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleWithPermissions is the API representation of a role including its
// attached permission names.
type RoleWithPermissions struct {
	Role
	Permissions []Permission `json:"permissions"`
}
