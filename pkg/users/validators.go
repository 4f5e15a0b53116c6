package users

// CreateUserPayload represents the request body for creating a user.
type CreateUserPayload struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Email        string  `json:"email" validate:"required,email"`
	ExternalPath *string `json:"external_path"`
}

// UpdateUserPayload represents the request body for updating a user.
type UpdateUserPayload struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email        *string `json:"email" validate:"omitempty,email"`
	ExternalPath *string `json:"external_path"`
	IsActive     *bool   `json:"is_active"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Limit  int `query:"limit" default:"50"`
	Offset int `query:"offset" default:"0"`
}
