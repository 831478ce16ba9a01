package uptime

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyHours holds one bucket per weekday, each within [0, 24].
type DailyHours struct {
	Mon float64 `json:"Mon" bson:"Mon"`
	Tue float64 `json:"Tue" bson:"Tue"`
	Wed float64 `json:"Wed" bson:"Wed"`
	Thu float64 `json:"Thu" bson:"Thu"`
	Fri float64 `json:"Fri" bson:"Fri"`
	Sat float64 `json:"Sat" bson:"Sat"`
	Sun float64 `json:"Sun" bson:"Sun"`
}

func (d *DailyHours) bucket(day string) *float64 {
	switch day {
	case "Mon":
		return &d.Mon
	case "Tue":
		return &d.Tue
	case "Wed":
		return &d.Wed
	case "Thu":
		return &d.Thu
	case "Fri":
		return &d.Fri
	case "Sat":
		return &d.Sat
	case "Sun":
		return &d.Sun
	}
	return nil
}

// Get returns the hours recorded for day, 0 for unknown days.
func (d DailyHours) Get(day string) float64 {
	if b := d.bucket(day); b != nil {
		return *b
	}
	return 0
}

// Set stores hours for day; unknown days are ignored.
func (d *DailyHours) Set(day string, hours float64) {
	if b := d.bucket(day); b != nil {
		*b = hours
	}
}

func (d DailyHours) Total() float64 {
	return d.Mon + d.Tue + d.Wed + d.Thu + d.Fri + d.Sat + d.Sun
}

type Uptime struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     string             `json:"userId" bson:"user_id"`
	CompanyID  string             `json:"companyId" bson:"company_id"`
	Week       string             `json:"week" bson:"week"`
	DailyHours DailyHours         `json:"dailyHours" bson:"daily_hours"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (u *Uptime) TotalHours() float64 {
	return u.DailyHours.Total()
}

func (u Uptime) MarshalJSON() ([]byte, error) {
	type plain Uptime
	return json.Marshal(struct {
		plain
		TotalHours float64 `json:"totalHours"`
	}{
		plain:      plain(u),
		TotalHours: u.DailyHours.Total(),
	})
}

// Key addresses the single uptime record of one identity for one ISO week.
type Key struct {
	UserID    string
	CompanyID string
	Week      string
}

// ClosedSession is the part of a finished session the aggregator needs.
type ClosedSession struct {
	UserID        string
	CompanyID     string
	LogoutAt      time.Time
	DurationHours float64
}
