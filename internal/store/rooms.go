package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mossy-p/rendezvous/config"
	"github.com/mossy-p/rendezvous/internal/models"
)

// ErrNotFound is returned when no room exists for the given id or code.
var ErrNotFound = errors.New("room not found")

const metadataTTL = 24 * time.Hour

// Rooms stores room management metadata (id, code, creator) in Redis.
// It holds none of the live signaling state: the hub's room table is
// process-local and is rebuilt from scratch by clients rejoining after
// a restart.
type Rooms struct {
	rdb *redis.Client
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg config.RedisConfig) (*Rooms, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Rooms{rdb: rdb}, nil
}

func (s *Rooms) Close() error {
	return s.rdb.Close()
}

// Save writes the room metadata and its code-to-id mapping, both with
// a TTL so abandoned rooms age out on their own.
func (s *Rooms) Save(ctx context.Context, room models.RoomMetadata) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room metadata: %w", err)
	}
	if err := s.rdb.Set(ctx, roomKey(room.ID), data, metadataTTL).Err(); err != nil {
		return fmt.Errorf("store room metadata: %w", err)
	}
	if err := s.rdb.Set(ctx, codeKey(room.Code), room.ID, metadataTTL).Err(); err != nil {
		return fmt.Errorf("store room code: %w", err)
	}
	return nil
}

// Get fetches room metadata by id.
func (s *Rooms) Get(ctx context.Context, roomID string) (*models.RoomMetadata, error) {
	data, err := s.rdb.Get(ctx, roomKey(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch room metadata: %w", err)
	}
	var room models.RoomMetadata
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		return nil, fmt.Errorf("parse room metadata: %w", err)
	}
	return &room, nil
}

// ResolveCode maps a shareable room code to its room id.
func (s *Rooms) ResolveCode(ctx context.Context, code string) (string, error) {
	id, err := s.rdb.Get(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve room code: %w", err)
	}
	return id, nil
}

// Delete removes the metadata and code mapping for a room.
func (s *Rooms) Delete(ctx context.Context, roomID, code string) error {
	if err := s.rdb.Del(ctx, roomKey(roomID), codeKey(code)).Err(); err != nil {
		return fmt.Errorf("delete room metadata: %w", err)
	}
	return nil
}

func roomKey(id string) string   { return "room:" + id }
func codeKey(code string) string { return "code:" + code }
