// Package checkpoint persists migration progress in Redis so an interrupted
// run can resume where it stopped: a set of already-captured asset URLs and a
// cursor per entity type. All state for one run is keyed by the run ID and
// expires after the configured TTL.
package checkpoint

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/storemover/smi/pkg/config"
	"github.com/storemover/smi/pkg/errors"
)

// Store tracks capture and provisioning progress for migration runs.
type Store struct {
	client *redis.Client
	cfg    config.CheckpointConfig
}

// New creates a checkpoint store with the given configuration and verifies
// connectivity.
func New(ctx context.Context, cfg config.CheckpointConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.NewTemporary("failed to connect to checkpoint store", err)
	}

	return &Store{client: client, cfg: cfg}, nil
}

func (s *Store) capturedKey(runID string) string {
	return fmt.Sprintf("smi:run:%s:captured", runID)
}

func (s *Store) cursorKey(runID, entityType string) string {
	return fmt.Sprintf("smi:run:%s:cursor:%s", runID, entityType)
}

// MarkCaptured records that the asset at url has been captured for this run.
func (s *Store) MarkCaptured(ctx context.Context, runID, url string) error {
	key := s.capturedKey(runID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, url)
	pipe.Expire(ctx, key, s.cfg.RunTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewTemporary("failed to mark asset captured", err)
	}
	return nil
}

// IsCaptured reports whether the asset at url was already captured in this run.
func (s *Store) IsCaptured(ctx context.Context, runID, url string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.capturedKey(runID), url).Result()
	if err != nil {
		return false, errors.NewTemporary("failed to check captured asset", err)
	}
	return ok, nil
}

// CapturedCount returns how many assets have been captured in this run.
func (s *Store) CapturedCount(ctx context.Context, runID string) (int64, error) {
	n, err := s.client.SCard(ctx, s.capturedKey(runID)).Result()
	if err != nil {
		return 0, errors.NewTemporary("failed to count captured assets", err)
	}
	return n, nil
}

// SetCursor stores the pagination cursor for one entity type, e.g. the last
// fetched catalog page.
func (s *Store) SetCursor(ctx context.Context, runID, entityType, cursor string) error {
	key := s.cursorKey(runID, entityType)
	if err := s.client.Set(ctx, key, cursor, s.cfg.RunTTL).Err(); err != nil {
		return errors.NewTemporary("failed to set cursor", err)
	}
	return nil
}

// Cursor returns the stored cursor for one entity type. A run that has no
// cursor yet gets a NotFound error.
func (s *Store) Cursor(ctx context.Context, runID, entityType string) (string, error) {
	cursor, err := s.client.Get(ctx, s.cursorKey(runID, entityType)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", errors.NewNotFound("cursor", entityType)
		}
		return "", errors.NewTemporary("failed to get cursor", err)
	}
	return cursor, nil
}

// Clear removes all checkpoint state for a run, typically after it completes.
func (s *Store) Clear(ctx context.Context, runID string) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, fmt.Sprintf("smi:run:%s:*", runID), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.NewTemporary("failed to scan run keys", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return errors.NewTemporary("failed to clear run state", err)
	}
	return nil
}

// CheckHealth verifies store connectivity using the Redis PING command.
func (s *Store) CheckHealth(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.NewTemporary("checkpoint store health check failed", err)
	}
	return nil
}

// Close releases all resources associated with the store.
func (s *Store) Close() error {
	return s.client.Close()
}
