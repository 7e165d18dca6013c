package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/farecast/config"
	"github.com/Domenick1991/farecast/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	analysisTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, analysisTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		analysisTTL: analysisTTL,
	}
}

// GetAnalysis returns a cached analysis result, or nil on a miss.
// A miss is never an error.
func (c *RedisCache) GetAnalysis(ctx context.Context, key string) (*domain.AnalysisResult, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetAnalysis(ctx context.Context, key string, result *domain.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.analysisTTL).Err()
}

// AnalysisKey builds the cache key for one analysis request shape.
func AnalysisKey(origin, destination string, tripType domain.TripType, travelClass domain.TravelClass, durationRange domain.DurationRange, dateRange domain.DateRange) string {
	return fmt.Sprintf("cache:analysis:%s:%s:%s:%s:%d-%d:%s:%s",
		origin, destination, tripType, travelClass,
		durationRange.Min, durationRange.Max,
		dateRange.Start.Format("2006-01-02"), dateRange.End.Format("2006-01-02"))
}
