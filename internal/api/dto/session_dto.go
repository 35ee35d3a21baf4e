package dto

import (
	"time"

	"github.com/ontimely/admin-portal/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffResponse is the public view of a staff member. The stored password never leaves the server.
type StaffResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	LastLogin *time.Time  `json:"last_login"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AuthStateResponse mirrors domain.AuthState. Error is null when no failure is recorded.
type AuthStateResponse struct {
	User            *StaffResponse `json:"user"`
	IsAuthenticated bool           `json:"is_authenticated"`
	IsLoading       bool           `json:"is_loading"`
	Error           *string        `json:"error"`
}

// NewStaffResponse maps a member, returning nil for nil.
func NewStaffResponse(m *domain.StaffMember) *StaffResponse {
	if m == nil {
		return nil
	}
	return &StaffResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      m.Role,
		IsActive:  m.IsActive,
		LastLogin: m.LastLogin,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// NewAuthStateResponse maps an AuthState.
func NewAuthStateResponse(state domain.AuthState) AuthStateResponse {
	resp := AuthStateResponse{
		User:            NewStaffResponse(state.User),
		IsAuthenticated: state.IsAuthenticated,
		IsLoading:       state.IsLoading,
	}
	if state.Error != "" {
		msg := state.Error
		resp.Error = &msg
	}
	return resp
}

// PasswordResetRequest payload for initiating reset.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload for confirming reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
