package users

// CreateUserInput carries validated fields for account creation.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	FullName string `json:"full_name" validate:"required,max=128"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserInput carries account profile updates.
type UpdateUserInput struct {
	FullName string `json:"full_name" validate:"required,max=128"`
	IsActive *bool  `json:"is_active"`
}

// ResetPasswordInput carries an admin-initiated password reset.
type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8"`
}
