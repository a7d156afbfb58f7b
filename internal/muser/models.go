package muser

type User struct {
	ID     string `json:"id" yaml:"id" validate:"required"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Avatar *string `json:"avatar"`
}

// DefaultUser is selected as current when the provider is built with WithDefaultUser.
var DefaultUser = User{
	ID:    "default-user",
	Name:  "Default User",
	Email: "user@example.com",
}
