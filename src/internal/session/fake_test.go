package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/uptime"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryRepository struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*Session
	findErr  error
	// beforeFind runs outside the mutex at the start of every FindOpen.
	beforeFind func()
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sessions: map[primitive.ObjectID]*Session{}}
}

func (m *memoryRepository) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memoryRepository) FindOpen(_ context.Context, subjectID *string, scopeID string) (*Session, error) {
	if m.beforeFind != nil {
		m.beforeFind()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}

	var found *Session
	for _, s := range m.sessions {
		if !s.IsOpen() || s.CompanyID != scopeID || !sameSubject(s.UserID, subjectID) {
			continue
		}
		if found == nil || s.LoginAt.After(found.LoginAt) {
			found = s
		}
	}
	if found == nil {
		return nil, models.ErrSessionNotFound
	}
	copied := *found
	return &copied, nil
}

func (m *memoryRepository) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.sessions[s.ID]
	if !ok || !stored.IsOpen() {
		return models.ErrSessionNotFound
	}
	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *memoryRepository) EnsureIndexes(context.Context) error { return nil }

func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *memoryRepository) openCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.IsOpen() {
			n++
		}
	}
	return n
}

func sameSubject(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// memoryUptimes is a minimal uptime.Repository honouring the clamp.
type memoryUptimes struct {
	mu      sync.Mutex
	records map[uptime.Key]*uptime.Uptime
	addErr  error
}

func newMemoryUptimes() *memoryUptimes {
	return &memoryUptimes{records: map[uptime.Key]*uptime.Uptime{}}
}

func (m *memoryUptimes) AddHours(_ context.Context, key uptime.Key, day string, hours, maxHours float64, at time.Time) (*uptime.Uptime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return nil, m.addErr
	}
	rec, ok := m.records[key]
	if !ok {
		rec = &uptime.Uptime{UserID: key.UserID, CompanyID: key.CompanyID, Week: key.Week, CreatedAt: at}
		m.records[key] = rec
	}
	rec.DailyHours.Set(day, math.Max(0, math.Min(maxHours, rec.DailyHours.Get(day)+hours)))
	rec.UpdatedAt = at
	copied := *rec
	return &copied, nil
}

func (m *memoryUptimes) Find(context.Context, uptime.Filter, uptime.FindOptions) ([]*uptime.Uptime, error) {
	return nil, nil
}

func (m *memoryUptimes) Count(context.Context, uptime.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *memoryUptimes) EnsureIndexes(context.Context) error { return nil }

func (m *memoryUptimes) get(key uptime.Key) (*uptime.Uptime, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	return rec, ok
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*Session
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*Session{}}
}

func (f *fakeCache) CacheOpenSession(_ context.Context, key string, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	copied := *s
	f.entries[key] = &copied
	return nil
}

func (f *fakeCache) GetOpenSession(_ context.Context, key string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[key], nil
}

func (f *fakeCache) EvictOpenSession(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.entries, key)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.SessionEvent
	err    error
}

func (f *fakePublisher) PublishSessionEvent(_ context.Context, event *models.SessionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []*models.SessionEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.SessionEvent(nil), f.events...)
}
