package session

import (
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/uptime"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is one login/logout cycle of an identity. UserID is nil only for company identities.
type Session struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        *string            `json:"userId" bson:"user_id"`
	CompanyID     string             `json:"companyId" bson:"company_id"`
	LoginAt       time.Time          `json:"loginAt" bson:"login_at"`
	LogoutAt      *time.Time         `json:"logoutAt" bson:"logout_at"`
	DurationHours float64            `json:"durationHours" bson:"duration_hours"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}

// EndResult is what EndSession hands back. Uptime is nil for company identities.
type EndResult struct {
	Session *Session       `json:"session"`
	Uptime  *uptime.Uptime `json:"uptime"`
}

func (s *Session) IsOpen() bool {
	return s.LogoutAt == nil
}

// Close stamps the logout time and the elapsed hours. A session can only be closed once.
func (s *Session) Close(at time.Time) error {
	if !s.IsOpen() {
		return models.ErrSessionNotFound
	}
	if at.Before(s.LoginAt) {
		return models.ErrInvalidSessionTimes
	}

	s.LogoutAt = &at
	s.DurationHours = at.Sub(s.LoginAt).Hours()
	s.UpdatedAt = at
	return nil
}

// Closed converts a closed user session into aggregator input; ok is false for
// company sessions and for sessions that are still open.
func (s *Session) Closed() (closed uptime.ClosedSession, ok bool) {
	if s.UserID == nil || s.LogoutAt == nil {
		return uptime.ClosedSession{}, false
	}
	return uptime.ClosedSession{
		UserID:        *s.UserID,
		CompanyID:     s.CompanyID,
		LogoutAt:      *s.LogoutAt,
		DurationHours: s.DurationHours,
	}, true
}
