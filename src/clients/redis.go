package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisClient(cfg *config.Redis) (*RedisClient, error) {
	log.WithField("url", cfg.Url).Info("Connecting to Redis...")

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.Db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Error("Failed to ping Redis")
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrRedisConnection, err)
	}

	log.WithField("db", cfg.Db).Info("Connected to Redis")

	return &RedisClient{Client: client}, nil
}

func (r *RedisClient) Close() error {
	if r.Client == nil {
		return nil
	}
	if err := r.Client.Close(); err != nil {
		log.WithError(err).Error("Failed to close Redis connection")
		return err
	}
	log.Info("Redis connection closed")
	return nil
}
