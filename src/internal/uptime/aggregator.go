package uptime

import (
	"context"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/calendar"

	"github.com/sirupsen/logrus"
)

const MaxDailyHours = 24.0

// Aggregator folds closed sessions into weekly uptime records. All of a session's hours go to
// the weekday and ISO week of its logout instant, even when the session crossed midnight or a
// week boundary; a day's bucket saturates at maxHours and the excess is dropped.
type Aggregator struct {
	repo     Repository
	location *time.Location
	maxHours float64
}

func NewAggregator(repo Repository, location *time.Location, maxHours float64) *Aggregator {
	if location == nil {
		location = time.UTC
	}
	if maxHours <= 0 || maxHours > MaxDailyHours {
		maxHours = MaxDailyHours
	}
	return &Aggregator{repo: repo, location: location, maxHours: maxHours}
}

// Bucket returns the week and weekday a logout instant is attributed to.
func (a *Aggregator) Bucket(logoutAt time.Time) (week, day string) {
	local := logoutAt.In(a.location)
	return calendar.ISOWeek(local), calendar.Weekday(local)
}

func (a *Aggregator) ApplyClosedSession(ctx context.Context, s ClosedSession) (*Uptime, error) {
	week, day := a.Bucket(s.LogoutAt)
	key := Key{UserID: s.UserID, CompanyID: s.CompanyID, Week: week}

	uptime, err := a.repo.AddHours(ctx, key, day, s.DurationHours, a.maxHours, s.LogoutAt)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    s.UserID,
		"company_id": s.CompanyID,
		"week":       week,
		"day":        day,
		"added":      s.DurationHours,
		"day_total":  uptime.DailyHours.Get(day),
	}).Info("Uptime updated")

	return uptime, nil
}
