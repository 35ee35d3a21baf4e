package dto

import "github.com/ontimely/admin-portal/internal/domain"

// StaffCreateRequest payload.
type StaffCreateRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// StaffUpdateRequest payload; omitted fields are unchanged.
type StaffUpdateRequest struct {
	Name     *string      `json:"name"`
	Role     *domain.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
}
