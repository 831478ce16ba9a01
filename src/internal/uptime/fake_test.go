package uptime

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// memoryRepository mirrors the Mongo adapter's semantics in memory.
type memoryRepository struct {
	mu      sync.Mutex
	records map[Key]*Uptime
	err     error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[Key]*Uptime{}}
}

func (m *memoryRepository) AddHours(_ context.Context, key Key, day string, hours, maxHours float64, at time.Time) (*Uptime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	rec, ok := m.records[key]
	if !ok {
		rec = &Uptime{UserID: key.UserID, CompanyID: key.CompanyID, Week: key.Week, CreatedAt: at}
		m.records[key] = rec
	}
	next := math.Max(0, math.Min(maxHours, rec.DailyHours.Get(day)+hours))
	rec.DailyHours.Set(day, next)
	rec.UpdatedAt = at

	copied := *rec
	return &copied, nil
}

func (m *memoryRepository) Find(_ context.Context, filter Filter, opts FindOptions) ([]*Uptime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	matched := make([]*Uptime, 0)
	for _, rec := range m.records {
		if matches(rec, filter) {
			copied := *rec
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if opts.Ascending {
			return matched[i].Week < matched[j].Week
		}
		return matched[i].Week > matched[j].Week
	})

	if opts.Skip >= len(matched) {
		return []*Uptime{}, nil
	}
	matched = matched[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}
	return matched, nil
}

func (m *memoryRepository) Count(_ context.Context, filter Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	var n int64
	for _, rec := range m.records {
		if matches(rec, filter) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) EnsureIndexes(context.Context) error { return nil }

func (m *memoryRepository) get(key Key) (*Uptime, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	return rec, ok
}

func matches(rec *Uptime, filter Filter) bool {
	if filter.UserID != "" && rec.UserID != filter.UserID {
		return false
	}
	if filter.CompanyID != "" && rec.CompanyID != filter.CompanyID {
		return false
	}
	if filter.Week != "" && rec.Week != filter.Week {
		return false
	}
	return true
}
