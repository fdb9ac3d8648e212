package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStalePage is returned by Put when path was revalidated after the
// page's version was read.
var ErrStalePage = errors.New("page revalidated while rendering")

type Page struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// PageCache keeps rendered responses per route path. Every query-string
// variant of a path lives in one hash so a path is revalidated with a
// single DEL. Each path also carries a version that revalidation bumps;
// a render is stored only if the version it started from is still current.
type PageCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewPageCache(rdb redis.UniversalClient, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = TTLPage
	}
	return &PageCache{rdb: rdb, ttl: ttl}
}

func (c *PageCache) Get(ctx context.Context, path, query string) (Page, bool, error) {
	raw, err := c.rdb.HGet(ctx, fmt.Sprintf(KeyPage, path), query).Bytes()
	if errors.Is(err, redis.Nil) {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, err
	}
	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return Page{}, false, fmt.Errorf("decode cached page %s: %w", path, err)
	}
	return p, true, nil
}

// Version returns the current revalidation count of path. Read it before
// rendering and hand it to Put.
func (c *PageCache) Version(ctx context.Context, path string) (int64, error) {
	v, err := c.rdb.Get(ctx, fmt.Sprintf(KeyPageVersion, path)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Put stores p unless path was revalidated since version was read, in
// which case it returns ErrStalePage.
func (c *PageCache) Put(ctx context.Context, path, query string, version int64, p Page) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(KeyPage, path)
	verKey := fmt.Sprintf(KeyPageVersion, path)

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return ErrStalePage
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, query, b)
			pipe.Expire(ctx, key, c.ttl)
			return nil
		})
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStalePage
	}
	return err
}

// RevalidatePath drops every cached rendering of path and bumps its
// version so renders already in flight are not stored.
func (c *PageCache) RevalidatePath(ctx context.Context, path string) error {
	verKey := fmt.Sprintf(KeyPageVersion, path)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, fmt.Sprintf(KeyPage, path))
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, TTLPageVersion)
		return nil
	})
	return err
}
