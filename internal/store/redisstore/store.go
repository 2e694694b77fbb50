// Package redisstore caches serialized history pages in front of the repo.
// Cache keys embed a per-room version counter; bumping the version on
// ingest invalidates every cached page for the room at once. Page 0 is
// never cached: it is the page live traffic lands on.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/myce/chatpager/internal/history"
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func versionKey(roomID string) string {
	return fmt.Sprintf("chatpager:room:%s:ver", roomID)
}

func (s *Store) roomVersion(ctx context.Context, roomID string) (int64, error) {
	v, err := s.rdb.Get(ctx, versionKey(roomID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func pageKey(roomID string, ver int64, page, size int) string {
	return fmt.Sprintf("chatpager:room:%s:v%d:page:%d:size:%d", roomID, ver, page, size)
}

// GetPage returns a cached page and whether it was found.
func (s *Store) GetPage(ctx context.Context, roomID string, page, size int) ([]history.Message, bool, error) {
	if page == 0 {
		return nil, false, nil
	}
	ver, err := s.roomVersion(ctx, roomID)
	if err != nil {
		return nil, false, err
	}
	b, err := s.rdb.Get(ctx, pageKey(roomID, ver, page, size)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var msgs []history.Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, false, err
	}
	return msgs, true, nil
}

func (s *Store) SetPage(ctx context.Context, roomID string, page, size int, msgs []history.Message) error {
	if page == 0 {
		return nil
	}
	ver, err := s.roomVersion(ctx, roomID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, pageKey(roomID, ver, page, size), b, s.ttl).Err()
}

// BumpRoom invalidates all cached pages for the room. Orphaned keys from
// the previous version expire via TTL.
func (s *Store) BumpRoom(ctx context.Context, roomID string) error {
	return s.rdb.Incr(ctx, versionKey(roomID)).Err()
}
