package uptime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestApplyClosedSession_SingleWorkday(t *testing.T) {
	repo := newMemoryRepository()
	agg := NewAggregator(repo, time.UTC, MaxDailyHours)

	login := at(t, "2024-03-04T09:00:00Z")
	logout := at(t, "2024-03-04T17:00:00Z")

	uptime, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
		UserID:        "u1",
		CompanyID:     "c1",
		LogoutAt:      logout,
		DurationHours: logout.Sub(login).Hours(),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-W10", uptime.Week)
	assert.Equal(t, 8.0, uptime.DailyHours.Mon)
	assert.Equal(t, 8.0, uptime.TotalHours())
	for _, day := range []string{"Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		assert.Zero(t, uptime.DailyHours.Get(day), day)
	}
}

func TestApplyClosedSession_ClampsDayAt24(t *testing.T) {
	repo := newMemoryRepository()
	agg := NewAggregator(repo, time.UTC, MaxDailyHours)
	logout := at(t, "2024-03-04T22:00:00Z")

	for i := 0; i < 2; i++ {
		_, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
			UserID: "u1", CompanyID: "c1", LogoutAt: logout, DurationHours: 20,
		})
		require.NoError(t, err)
	}

	rec, ok := repo.get(Key{UserID: "u1", CompanyID: "c1", Week: "2024-W10"})
	require.True(t, ok)
	assert.Equal(t, 24.0, rec.DailyHours.Mon)
	assert.Zero(t, rec.DailyHours.Tue)
}

func TestApplyClosedSession_AttributesToLogoutDay(t *testing.T) {
	repo := newMemoryRepository()
	agg := NewAggregator(repo, time.UTC, MaxDailyHours)

	login := at(t, "2023-12-31T23:50:00Z")
	logout := at(t, "2024-01-01T00:10:00Z")

	uptime, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
		UserID: "u1", CompanyID: "c1", LogoutAt: logout, DurationHours: logout.Sub(login).Hours(),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-W01", uptime.Week)
	assert.InDelta(t, 1.0/3.0, uptime.DailyHours.Mon, 1e-9)
	assert.Zero(t, uptime.DailyHours.Sun)

	_, ok := repo.get(Key{UserID: "u1", CompanyID: "c1", Week: "2023-W52"})
	assert.False(t, ok)
}

func TestApplyClosedSession_LongSessionDumpsIntoOneDay(t *testing.T) {
	repo := newMemoryRepository()
	agg := NewAggregator(repo, time.UTC, MaxDailyHours)

	uptime, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
		UserID: "u1", CompanyID: "c1", LogoutAt: at(t, "2024-03-06T10:00:00Z"), DurationHours: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, 24.0, uptime.DailyHours.Wed)
	assert.Equal(t, 24.0, uptime.TotalHours())
}

func TestApplyClosedSession_UsesConfiguredLocation(t *testing.T) {
	repo := newMemoryRepository()
	kolkata := time.FixedZone("IST", 5*60*60+30*60)
	agg := NewAggregator(repo, kolkata, MaxDailyHours)

	// 20:00Z on Sunday is already Monday 01:30 in IST, and Monday opens ISO week 10.
	uptime, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
		UserID: "u1", CompanyID: "c1", LogoutAt: at(t, "2024-03-03T20:00:00Z"), DurationHours: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-W10", uptime.Week)
	assert.Equal(t, 2.0, uptime.DailyHours.Mon)
}

func TestApplyClosedSession_ClampingLawUnderConcurrency(t *testing.T) {
	repo := newMemoryRepository()
	agg := NewAggregator(repo, time.UTC, MaxDailyHours)
	logout := at(t, "2024-03-08T18:00:00Z")

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
				UserID: "u1", CompanyID: "c1", LogoutAt: logout, DurationHours: 1.5,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, ok := repo.get(Key{UserID: "u1", CompanyID: "c1", Week: "2024-W10"})
	require.True(t, ok)
	assert.Equal(t, 24.0, rec.DailyHours.Fri)
	for _, day := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		hours := rec.DailyHours.Get(day)
		assert.GreaterOrEqual(t, hours, 0.0)
		assert.LessOrEqual(t, hours, 24.0)
	}
}

func TestApplyClosedSession_PropagatesStorageError(t *testing.T) {
	repo := newMemoryRepository()
	repo.err = errors.New("connection reset")
	agg := NewAggregator(repo, time.UTC, MaxDailyHours)

	_, err := agg.ApplyClosedSession(context.Background(), ClosedSession{
		UserID: "u1", CompanyID: "c1", LogoutAt: at(t, "2024-03-04T17:00:00Z"), DurationHours: 1,
	})
	assert.EqualError(t, err, "connection reset")
}

func TestNewAggregator_NormalizesCap(t *testing.T) {
	agg := NewAggregator(newMemoryRepository(), nil, 36)
	assert.Equal(t, MaxDailyHours, agg.maxHours)
	assert.Equal(t, time.UTC, agg.location)

	agg = NewAggregator(newMemoryRepository(), time.UTC, 12)
	assert.Equal(t, 12.0, agg.maxHours)
}

func TestBucket(t *testing.T) {
	agg := NewAggregator(newMemoryRepository(), time.UTC, MaxDailyHours)

	week, day := agg.Bucket(at(t, "2024-12-31T10:00:00Z"))
	assert.Equal(t, "2025-W01", week)
	assert.Equal(t, "Tue", day)
}
