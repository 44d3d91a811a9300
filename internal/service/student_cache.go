package service

import (
	"assessment_results_backend/internal/util"
	"assessment_results_backend/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// notFoundMarker caches a registry miss so unknown PENs are not re-queried
// on every batch row.
const notFoundMarker = "-"

// CachedStudentAPI fronts the registry client with redis. Cache failures fall
// through to the registry.
type CachedStudentAPI struct {
	API   *StudentAPIClient
	Redis *redis.Client
	TTL   time.Duration
}

func NewCachedStudentAPI(api *StudentAPIClient, rdb *redis.Client, ttl time.Duration) *CachedStudentAPI {
	return &CachedStudentAPI{API: api, Redis: rdb, TTL: ttl}
}

func (c *CachedStudentAPI) ResolveStudentByPEN(ctx context.Context, pen string) (*StudentRecord, error) {
	var rec StudentRecord
	err := c.cached(ctx, "student:pen:"+pen, &rec, func() (interface{}, error) {
		return c.API.ResolveStudentByPEN(ctx, pen)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *CachedStudentAPI) ResolveMergeTarget(ctx context.Context, studentID string) (*StudentRecord, error) {
	var rec StudentRecord
	err := c.cached(ctx, "student:merge:"+studentID, &rec, func() (interface{}, error) {
		return c.API.ResolveMergeTarget(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *CachedStudentAPI) CurrentSchoolOfRecord(ctx context.Context, studentID string) (*SchoolOfRecord, error) {
	var school SchoolOfRecord
	err := c.cached(ctx, "student:school:"+studentID, &school, func() (interface{}, error) {
		return c.API.CurrentSchoolOfRecord(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (c *CachedStudentAPI) cached(ctx context.Context, key string, out interface{}, load func() (interface{}, error)) error {
	if c.Redis != nil {
		raw, err := c.Redis.Get(ctx, key).Result()
		switch {
		case err == nil && raw == notFoundMarker:
			return util.ErrPenNotFound
		case err == nil:
			if jsonErr := json.Unmarshal([]byte(raw), out); jsonErr == nil {
				return nil
			}
		case !errors.Is(err, redis.Nil):
			logger.Log.Warn("student cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err := load()
	if errors.Is(err, util.ErrPenNotFound) {
		c.store(ctx, key, notFoundMarker)
		return err
	}
	if err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store(ctx, key, string(payload))
	return json.Unmarshal(payload, out)
}

func (c *CachedStudentAPI) store(ctx context.Context, key, value string) {
	if c.Redis == nil {
		return
	}
	if err := c.Redis.Set(ctx, key, value, c.TTL).Err(); err != nil {
		logger.Log.Warn("student cache write failed", zap.String("key", key), zap.Error(err))
	}
}
