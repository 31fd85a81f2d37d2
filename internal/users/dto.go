package users

// RegisterRequest creates a credential account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SetPermissionsRequest replaces the user's permission set.
type SetPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}
