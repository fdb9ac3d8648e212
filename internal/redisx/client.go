package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Seen reports whether service already finished event id.
func Seen(ctx context.Context, rdb redis.Cmdable, service, id string) (bool, error) {
	n, err := rdb.Exists(ctx, fmt.Sprintf(KeyDedup, service, id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSeen records that service finished event id. Call it only after the
// event's side effects succeeded.
func MarkSeen(ctx context.Context, rdb redis.Cmdable, service, id string) error {
	return rdb.Set(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Err()
}
