package models

import "slices"

// Identity is the caller resolved from a bearer token
type Identity struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	RoleID      *int     `json:"roleId,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions"`
}

// Roles returns every role name the identity holds: its role name and its permissions
func (i *Identity) Roles() []string {
	roles := make([]string, 0, len(i.Permissions)+1)
	if i.Role != "" {
		roles = append(roles, i.Role)
	}
	for _, p := range i.Permissions {
		if !slices.Contains(roles, p) {
			roles = append(roles, p)
		}
	}
	return roles
}

// HasRole reports whether the identity holds the role
func (i *Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles(), role)
}

// ProfileResponse is the public view of the authenticated caller
type ProfileResponse struct {
	ID    int      `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Profile returns the public view of the identity
func (i *Identity) Profile() *ProfileResponse {
	return &ProfileResponse{ID: i.ID, Email: i.Email, Roles: i.Roles()}
}
