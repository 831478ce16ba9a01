package models

import "time"

// SessionEvent is published on the events exchange whenever a session opens or closes.
type SessionEvent struct {
	EventID       string     `json:"event_id"`
	Action        string     `json:"action"`
	SessionID     string     `json:"session_id"`
	IdentityType  string     `json:"identity_type"`
	UserID        string     `json:"user_id,omitempty"`
	CompanyID     string     `json:"company_id"`
	LoginAt       time.Time  `json:"login_at"`
	LogoutAt      *time.Time `json:"logout_at,omitempty"`
	DurationHours float64    `json:"duration_hours"`
	Week          string     `json:"week,omitempty"`
	Day           string     `json:"day,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// Session event actions
const (
	ActionSessionStarted = "session_started"
	ActionSessionEnded   = "session_ended"
)
