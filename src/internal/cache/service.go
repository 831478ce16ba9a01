package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	openSessionKeyPattern = "session:open:%s" // session:open:<identity key>
	userStatsKeyPattern   = "%s:%s"           // <user stat key>:<company code>
)

type Service interface {
	session.Cache
	SaveUserStats(ctx context.Context, stats *models.Stats) error
	GetUserStats(ctx context.Context, companyCode string) (*models.Stats, error)
	InvalidateUserStats(ctx context.Context, companyCode string) error
}

type cacheService struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewCacheService(client *redis.Client, cfg *config.Configuration) Service {
	return &cacheService{
		client: client,
		cfg:    &cfg.Cache,
	}
}

func (c *cacheService) GetOpenSession(ctx context.Context, key string) (*session.Session, error) {
	redisKey := fmt.Sprintf(openSessionKeyPattern, key)
	logrus.WithField("key", redisKey).Debug("Getting open session from cache")

	data, err := c.client.Get(ctx, redisKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("key", redisKey).Debug("Session not found in cache")
			return nil, nil
		}
		logrus.WithError(err).WithField("key", redisKey).Error("Failed to get session from cache")
		return nil, models.ErrRedisGet
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		logrus.WithError(err).WithField("key", redisKey).Error("Failed to unmarshal session from cache")
		return nil, models.ErrRedisGet
	}

	logrus.WithField("key", redisKey).Debug("Session retrieved from cache successfully")
	return &s, nil
}

func (c *cacheService) CacheOpenSession(ctx context.Context, key string, s *session.Session) error {
	redisKey := fmt.Sprintf(openSessionKeyPattern, key)

	data, err := json.Marshal(s)
	if err != nil {
		logrus.WithError(err).WithField("session_id", s.ID.Hex()).Error("Failed to marshal session for cache")
		return models.ErrRedisSet
	}

	expiration := time.Duration(c.cfg.SessionExpirationMinutes) * time.Minute
	if err := c.client.Set(ctx, redisKey, data, expiration).Err(); err != nil {
		logrus.WithError(err).WithField("session_id", s.ID.Hex()).Error("Failed to cache session")
		return models.ErrRedisSet
	}

	logrus.WithField("session_id", s.ID.Hex()).Debug("Session cached successfully")
	return nil
}

func (c *cacheService) EvictOpenSession(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf(openSessionKeyPattern, key)

	if err := c.client.Del(ctx, redisKey).Err(); err != nil {
		logrus.WithError(err).WithField("key", redisKey).Error("Failed to evict session from cache")
		return models.ErrRedisDelete
	}
	return nil
}

func (c *cacheService) SaveUserStats(ctx context.Context, stats *models.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal user stats for cache")
		return models.ErrRedisSet
	}

	expiration := time.Duration(c.cfg.UserStatExpirationMinutes) * time.Minute
	err = c.client.Set(ctx, c.userStatsKey(stats.CompanyCode), data, expiration).Err()
	if err != nil {
		logrus.WithError(err).WithField("company_code", stats.CompanyCode).Error("Failed to cache stats")
		return models.ErrRedisSet
	}
	return nil
}

func (c *cacheService) GetUserStats(ctx context.Context, companyCode string) (*models.Stats, error) {
	data, err := c.client.Get(ctx, c.userStatsKey(companyCode)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logrus.WithField("company_code", companyCode).Debug("User stats not found in cache")
			return nil, nil
		}
		logrus.WithError(err).Error("Failed to get user stats from cache")
		return nil, models.ErrRedisGet
	}

	var stats models.Stats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		logrus.WithError(err).Error("Failed to unmarshal user stats from cache")
		return nil, models.ErrRedisGet
	}

	logrus.WithField("company_code", companyCode).Debug("User stats retrieved from cache successfully")
	return &stats, nil
}

func (c *cacheService) InvalidateUserStats(ctx context.Context, companyCode string) error {
	if err := c.client.Del(ctx, c.userStatsKey(companyCode)).Err(); err != nil {
		logrus.WithError(err).WithField("company_code", companyCode).Error("Failed to invalidate user stats")
		return models.ErrRedisDelete
	}
	return nil
}

func (c *cacheService) userStatsKey(companyCode string) string {
	return fmt.Sprintf(userStatsKeyPattern, c.cfg.UserStatKey, companyCode)
}
