package user

import (
	"context"
	"sync"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
)

type memoryRepository struct {
	mu    sync.Mutex
	users map[string]*User
	err   error
}

func newMemoryRepository(users ...*User) *memoryRepository {
	m := &memoryRepository{users: map[string]*User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryRepository) GetAllUsers(_ context.Context, req *GetAllUsersRequest) ([]*User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	users := make([]*User, 0)
	for _, u := range m.users {
		if u.CompanyCode == req.CompanyCode && (req.Role == "" || u.Role == req.Role) {
			users = append(users, u)
		}
	}
	return users, int64(len(users)), nil
}

func (m *memoryRepository) SetRole(_ context.Context, id, role string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	return nil
}

func (m *memoryRepository) GetUserStats(_ context.Context, companyCode string, monthStart time.Time) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	stats := &models.Stats{CompanyCode: companyCode}
	for _, u := range m.users {
		if u.CompanyCode != companyCode {
			continue
		}
		stats.Total++
		if u.IsApproved() {
			stats.Approved++
		} else {
			stats.Pending++
		}
		if u.IsAdmin() {
			stats.Admins++
		}
		if !u.CreatedAt.Before(monthStart) {
			stats.NewThisMonth++
		}
	}
	return stats, nil
}

func (m *memoryRepository) role(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Role
}
