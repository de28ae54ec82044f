// Package cache keeps short-lived per-user state outside the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"extranet/internal/model"
)

// RecentUpload is one entry of a user's recent-uploads list.
type RecentUpload struct {
	DocumentID string         `json:"document_id"`
	Filename   string         `json:"filename"`
	Category   model.Category `json:"category"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// RecentUploads tracks the latest documents uploaded for each user.
type RecentUploads interface {
	Push(ctx context.Context, userID int64, e RecentUpload) error
	List(ctx context.Context, userID int64) ([]RecentUpload, error)
}

// RedisRecentUploads stores each user's list under recent_uploads:<id>,
// newest first, capped at limit entries and expiring after ttl of inactivity.
type RedisRecentUploads struct {
	rdb   redis.Cmdable
	limit int
	ttl   time.Duration
}

// NewRedisRecentUploads returns a Redis-backed RecentUploads.
func NewRedisRecentUploads(rdb redis.Cmdable, limit int, ttl time.Duration) *RedisRecentUploads {
	if limit < 1 {
		limit = 20
	}
	return &RedisRecentUploads{rdb: rdb, limit: limit, ttl: ttl}
}

var _ RecentUploads = (*RedisRecentUploads)(nil)

func recentKey(userID int64) string {
	return "recent_uploads:" + strconv.FormatInt(userID, 10)
}

func (r *RedisRecentUploads) Push(ctx context.Context, userID int64, e RecentUpload) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode recent upload: %w", err)
	}
	key := recentKey(userID)
	if err := r.rdb.LPush(ctx, key, string(b)).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	if err := r.rdb.LTrim(ctx, key, 0, int64(r.limit-1)).Err(); err != nil {
		return fmt.Errorf("ltrim %s: %w", key, err)
	}
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

// List returns the user's entries, newest first. Undecodable entries are skipped.
func (r *RedisRecentUploads) List(ctx context.Context, userID int64) ([]RecentUpload, error) {
	raw, err := r.rdb.LRange(ctx, recentKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	out := make([]RecentUpload, 0, len(raw))
	for _, s := range raw {
		var e RecentUpload
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) Push(context.Context, int64, RecentUpload) error { return nil }

func (Noop) List(context.Context, int64) ([]RecentUpload, error) {
	return []RecentUpload{}, nil
}
