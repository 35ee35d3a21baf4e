package domain

// Credentials is the transient email/password pair supplied at login.
type Credentials struct {
	Email    string
	Password string
}

// SessionRecord is the persisted remembered-login slot.
type SessionRecord struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// AuthState is the externally observable authentication state.
// An empty Error means no failure is recorded.
type AuthState struct {
	User            *StaffMember
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}
