package models

// User represents a shop account
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"` // bcrypt hash, never serialized
	RoleID   *int   `json:"roleId,omitempty"`
}

// UserInput is the body accepted when a user is created or fully replaced
type UserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   *int   `json:"roleId,omitempty"`
}

// Credentials is the body of signup and login requests
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token string        `json:"token"`
	ID    int           `json:"id"`
	Email string        `json:"email"`
	Roles *RoleResponse `json:"roles"`
}

// UserWithRelations is a user with its optionally included relations
type UserWithRelations struct {
	User
	Products []Product     `json:"products,omitempty"`
	Orders   []Order       `json:"orders,omitempty"`
	Roles    *RoleResponse `json:"roles,omitempty"`
}
