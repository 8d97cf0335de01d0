package models

import (
	"encoding/json"
	"fmt"
)

// Role names as they appear in role permissions
const (
	RoleNameSuperAdmin = "superAdmin"
	RoleNameAdmin      = "admin"
	RoleNameUser       = "users"
)

// Seeded role IDs
const (
	RoleIDSuperAdmin = 1
	RoleIDAdmin      = 2
	RoleIDUser       = 3
)

// Role is a named permission bundle
type Role struct {
	ID            int    `json:"id"`
	NameAr        string `json:"name_ar"`
	NameEn        string `json:"name_en"`
	DescriptionAr string `json:"description_ar"`
	DescriptionEn string `json:"description_en"`
	Permissions   string `json:"permissions"` // JSON array of permission names
	MainRole      int    `json:"mainRole"`
	AdminRole     int    `json:"adminRole"`
}

// PermissionList deserializes the stored permissions
func (r *Role) PermissionList() ([]string, error) {
	if r.Permissions == "" {
		return []string{}, nil
	}
	var permissions []string
	if err := json.Unmarshal([]byte(r.Permissions), &permissions); err != nil {
		return nil, fmt.Errorf("invalid permissions of role %d: %w", r.ID, err)
	}
	if permissions == nil {
		permissions = []string{}
	}
	return permissions, nil
}

// Response converts the role into its API form with deserialized permissions
func (r *Role) Response() (*RoleResponse, error) {
	permissions, err := r.PermissionList()
	if err != nil {
		return nil, err
	}
	return &RoleResponse{
		ID:            r.ID,
		NameAr:        r.NameAr,
		NameEn:        r.NameEn,
		DescriptionAr: r.DescriptionAr,
		DescriptionEn: r.DescriptionEn,
		Permissions:   permissions,
		MainRole:      r.MainRole,
		AdminRole:     r.AdminRole,
	}, nil
}

// RoleResponse is a role with its permissions as a list
type RoleResponse struct {
	ID            int      `json:"id"`
	NameAr        string   `json:"name_ar"`
	NameEn        string   `json:"name_en"`
	DescriptionAr string   `json:"description_ar"`
	DescriptionEn string   `json:"description_en"`
	Permissions   []string `json:"permissions"`
	MainRole      int      `json:"mainRole"`
	AdminRole     int      `json:"adminRole"`
}

// RoleInput is the body accepted when a role is created or fully replaced
type RoleInput struct {
	NameAr        string   `json:"name_ar"`
	NameEn        string   `json:"name_en"`
	DescriptionAr string   `json:"description_ar"`
	DescriptionEn string   `json:"description_en"`
	Permissions   []string `json:"permissions"`
	MainRole      int      `json:"mainRole"`
	AdminRole     int      `json:"adminRole"`
}

// Role converts the input into a storable role
func (in *RoleInput) Role() (*Role, error) {
	permissions := in.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	raw, err := json.Marshal(permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize permissions: %w", err)
	}
	return &Role{
		NameAr:        in.NameAr,
		NameEn:        in.NameEn,
		DescriptionAr: in.DescriptionAr,
		DescriptionEn: in.DescriptionEn,
		Permissions:   string(raw),
		MainRole:      in.MainRole,
		AdminRole:     in.AdminRole,
	}, nil
}
