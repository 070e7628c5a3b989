package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrRookie-AIR/PushupsbyArduino/internal/store"
	"github.com/MrRookie-AIR/PushupsbyArduino/types"
	"github.com/redis/go-redis/v9"
)

const (
	pendingKey = "pushup:pending"
	busyKey    = "pushup:busy"
)

type redisMarkerStore struct {
	client *redis.Client
}

// NewRedisMarkerStore keeps both markers as plain string keys. SETNX makes
// the pending write a check-and-set across processes.
func NewRedisMarkerStore(client *redis.Client) store.MarkerStore {
	return &redisMarkerStore{client: client}
}

func (s *redisMarkerStore) PendingExists(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, pendingKey).Result()
	if err != nil {
		return false, fmt.Errorf("check pending job: %w", err)
	}
	return n > 0, nil
}

func (s *redisMarkerStore) PutPending(ctx context.Context, job types.PendingJob) error {
	ok, err := s.client.SetNX(ctx, pendingKey, job.Encode(), 0).Result()
	if err != nil {
		return fmt.Errorf("write pending job: %w", err)
	}
	if !ok {
		return store.ErrSlotOccupied
	}
	return nil
}

func (s *redisMarkerStore) PeekPending(ctx context.Context) (*types.PendingJob, error) {
	return s.decodePending(s.client.Get(ctx, pendingKey).Result())
}

func (s *redisMarkerStore) TakePending(ctx context.Context) (*types.PendingJob, error) {
	return s.decodePending(s.client.GetDel(ctx, pendingKey).Result())
}

func (s *redisMarkerStore) GetBusy(ctx context.Context) (*types.BusyMarker, error) {
	raw, err := s.client.Get(ctx, busyKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read busy marker: %w", err)
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("read busy marker: malformed timestamp %q", raw)
	}
	return &types.BusyMarker{SetAt: time.Unix(unix, 0)}, nil
}

func (s *redisMarkerStore) SetBusy(ctx context.Context, at time.Time) error {
	if err := s.client.Set(ctx, busyKey, strconv.FormatInt(at.Unix(), 10), 0).Err(); err != nil {
		return fmt.Errorf("write busy marker: %w", err)
	}
	return nil
}

func (s *redisMarkerStore) ClearBusy(ctx context.Context) error {
	if err := s.client.Del(ctx, busyKey).Err(); err != nil {
		return fmt.Errorf("clear busy marker: %w", err)
	}
	return nil
}

func (s *redisMarkerStore) Close() error {
	return s.client.Close()
}

func (s *redisMarkerStore) decodePending(raw string, err error) (*types.PendingJob, error) {
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pending job: %w", err)
	}
	job, err := types.ParsePendingJob(raw)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
