package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemIsUTC(t *testing.T) {
	now := System().Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

func TestFakeClock(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, kolkata)

	c := NewFakeClock(start)
	assert.True(t, c.Now().Equal(start))
	assert.Equal(t, time.UTC, c.Now().Location())

	c.Advance(8 * time.Hour)
	assert.True(t, c.Now().Equal(start.Add(8*time.Hour)))

	later := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}
