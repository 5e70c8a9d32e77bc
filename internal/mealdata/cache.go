package mealdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedSource decorates a Source with a Redis read-through cache. Meal,
// schedule and timetable data change at most daily, so cached entries are
// served until the TTL expires. Weather and water temperature are never
// cached. A cache failure falls through to the upstream source.
type CachedSource struct {
	next   Source
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// HealthCheck reports whether the cache backend is reachable.
func (c *CachedSource) HealthCheck(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *CachedSource) lookup(ctx context.Context, key string, out interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedSource) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

func dateKey(kind string, date time.Time) string {
	return fmt.Sprintf("hdmeal:%s:%s", kind, date.Format("2006-01-02"))
}

func (c *CachedSource) Meal(ctx context.Context, date time.Time) (*MealRecord, error) {
	key := dateKey("meal", date)
	var cached MealRecord
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	record, err := c.next.Meal(ctx, date)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, record)
	return record, nil
}

func (c *CachedSource) Schedule(ctx context.Context, date time.Time) (string, error) {
	key := dateKey("schedule", date)
	var cached string
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	schedule, err := c.next.Schedule(ctx, date)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, schedule)
	return schedule, nil
}

func (c *CachedSource) ScheduleRange(ctx context.Context, start, end time.Time) ([]ScheduleEntry, error) {
	key := fmt.Sprintf("hdmeal:schedule-range:%s:%s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	var cached []ScheduleEntry
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	entries, err := c.next.ScheduleRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, entries)
	return entries, nil
}

func (c *CachedSource) Timetable(ctx context.Context, grade, classNumber int, date time.Time) (string, error) {
	key := fmt.Sprintf("hdmeal:timetable:%d-%d:%s", grade, classNumber, date.Format("2006-01-02"))
	var cached string
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	timetable, err := c.next.Timetable(ctx, grade, classNumber, date)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, timetable)
	return timetable, nil
}

func (c *CachedSource) WaterTemperature(ctx context.Context) (string, error) {
	return c.next.WaterTemperature(ctx)
}

func (c *CachedSource) Weather(ctx context.Context, dayLabel string) (string, error) {
	return c.next.Weather(ctx, dayLabel)
}
