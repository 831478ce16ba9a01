package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rishipandey14/HRMS-Backend/src/internal/clock"
	"github.com/rishipandey14/HRMS-Backend/src/internal/identity"
	"github.com/rishipandey14/HRMS-Backend/src/internal/metrics"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/uptime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Cache keeps the open session of an identity close at hand. A miss is (nil, nil).
type Cache interface {
	CacheOpenSession(ctx context.Context, key string, session *Session) error
	GetOpenSession(ctx context.Context, key string) (*Session, error)
	EvictOpenSession(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event *models.SessionEvent) error
}

type Service interface {
	StartSession(ctx context.Context, id identity.Identity) (*Session, error)
	EndSession(ctx context.Context, id identity.Identity) (*EndResult, error)
	GetActiveSession(ctx context.Context, id identity.Identity) (*Session, error)
}

// Options carries the optional collaborators of the service. Nil Cache, Publisher and Metrics
// disable the matching side effect; a nil Locker or Clock falls back to the in-process defaults.
type Options struct {
	Locker    Locker
	Cache     Cache
	Publisher EventPublisher
	Metrics   *metrics.Metrics
	Clock     clock.Clock
}

type sessionService struct {
	repo       Repository
	aggregator *uptime.Aggregator
	locker     Locker
	cache      Cache
	publisher  EventPublisher
	metrics    *metrics.Metrics
	clock      clock.Clock
}

func NewSessionService(repo Repository, aggregator *uptime.Aggregator, opts Options) Service {
	s := &sessionService{
		repo:       repo,
		aggregator: aggregator,
		locker:     opts.Locker,
		cache:      opts.Cache,
		publisher:  opts.Publisher,
		metrics:    opts.Metrics,
		clock:      opts.Clock,
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.clock == nil {
		s.clock = clock.System()
	}
	return s
}

func (s *sessionService) StartSession(ctx context.Context, id identity.Identity) (*Session, error) {
	unlock, err := s.locker.Lock(ctx, id.Key())
	if err != nil {
		s.metrics.SessionConflict("lock")
		return nil, err
	}
	defer unlock()

	existing, err := s.repo.FindOpen(ctx, identity.Subject(id), id.ScopeID())
	switch {
	case err == nil:
		logrus.WithFields(logrus.Fields{
			"identity":   id.Key(),
			"session_id": existing.ID.Hex(),
		}).Warn("Session already active")
		s.metrics.SessionConflict("already_active")
		return nil, fmt.Errorf("%w: %s", models.ErrSessionAlreadyActive, existing.ID.Hex())
	case !errors.Is(err, models.ErrSessionNotFound):
		return nil, err
	}

	now := s.clock.Now()
	session := &Session{
		UserID:    identity.Subject(id),
		CompanyID: id.ScopeID(),
		LoginAt:   now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"identity":   id.Key(),
		"session_id": session.ID.Hex(),
		"company_id": session.CompanyID,
	}).Info("Session started")

	s.metrics.SessionStarted(string(id.Kind()))
	s.cacheOpen(ctx, id, session)
	s.publish(ctx, id, models.ActionSessionStarted, session)

	return session, nil
}

func (s *sessionService) EndSession(ctx context.Context, id identity.Identity) (*EndResult, error) {
	unlock, err := s.locker.Lock(ctx, id.Key())
	if err != nil {
		s.metrics.SessionConflict("lock")
		return nil, err
	}
	defer unlock()

	session, err := s.repo.FindOpen(ctx, identity.Subject(id), id.ScopeID())
	if err != nil {
		return nil, err
	}

	if err := session.Close(s.clock.Now()); err != nil {
		logrus.WithError(err).WithField("session_id", session.ID.Hex()).Error("Cannot close session")
		return nil, err
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	s.evict(ctx, id)

	result := &EndResult{Session: session}
	if closed, ok := session.Closed(); ok {
		updated, err := s.aggregator.ApplyClosedSession(ctx, closed)
		if err != nil {
			logrus.WithError(err).WithField("session_id", session.ID.Hex()).Error("Session closed but uptime was not updated")
			return nil, err
		}
		result.Uptime = updated
		s.metrics.UptimeUpdated()
	}

	logrus.WithFields(logrus.Fields{
		"identity":       id.Key(),
		"session_id":     session.ID.Hex(),
		"duration_hours": session.DurationHours,
	}).Info("Session ended")

	s.metrics.SessionEnded(string(id.Kind()), session.DurationHours)
	s.publish(ctx, id, models.ActionSessionEnded, session)

	return result, nil
}

func (s *sessionService) GetActiveSession(ctx context.Context, id identity.Identity) (*Session, error) {
	if s.cache != nil {
		cached, err := s.cache.GetOpenSession(ctx, id.Key())
		if err == nil && cached != nil {
			logrus.WithField("identity", id.Key()).Debug("Open session served from cache")
			return cached, nil
		}
		if err != nil {
			s.metrics.SideEffectFailed(metrics.EffectCache)
		}
	}

	// the miss path re-caches, so it must not interleave with a close of the same identity
	unlock, err := s.locker.Lock(ctx, id.Key())
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := s.repo.FindOpen(ctx, identity.Subject(id), id.ScopeID())
	if err != nil {
		return nil, err
	}

	s.cacheOpen(ctx, id, session)
	return session, nil
}

func (s *sessionService) cacheOpen(ctx context.Context, id identity.Identity, session *Session) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheOpenSession(ctx, id.Key(), session); err != nil {
		logrus.WithError(err).WithField("identity", id.Key()).Warn("Failed to cache open session")
		s.metrics.SideEffectFailed(metrics.EffectCache)
	}
}

func (s *sessionService) evict(ctx context.Context, id identity.Identity) {
	if s.cache == nil {
		return
	}
	if err := s.cache.EvictOpenSession(ctx, id.Key()); err != nil {
		logrus.WithError(err).WithField("identity", id.Key()).Warn("Failed to evict open session")
		s.metrics.SideEffectFailed(metrics.EffectCache)
	}
}

func (s *sessionService) publish(ctx context.Context, id identity.Identity, action string, session *Session) {
	if s.publisher == nil {
		return
	}

	event := &models.SessionEvent{
		EventID:       uuid.NewString(),
		Action:        action,
		SessionID:     session.ID.Hex(),
		IdentityType:  string(id.Kind()),
		CompanyID:     session.CompanyID,
		LoginAt:       session.LoginAt,
		LogoutAt:      session.LogoutAt,
		DurationHours: session.DurationHours,
		Timestamp:     s.clock.Now(),
	}
	if session.UserID != nil {
		event.UserID = *session.UserID
	}
	if session.LogoutAt != nil {
		event.Week, event.Day = s.aggregator.Bucket(*session.LogoutAt)
	}

	if err := s.publisher.PublishSessionEvent(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"session_id": event.SessionID,
			"action":     action,
		}).Warn("Failed to publish session event")
		s.metrics.SideEffectFailed(metrics.EffectPublish)
	}
}
