package domain

import "time"

// CrashReport is submitted by the desktop app when it terminates unexpectedly.
type CrashReport struct {
	ID           string
	AppVersion   string
	Platform     string
	OSVersion    string
	ErrorMessage string
	StackTrace   string
	UserEmail    string
	Resolved     bool
	ResolvedBy   *string
	CreatedAt    time.Time
	ResolvedAt   *time.Time
}
