package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/redis/go-redis/v9"
)

const flowKeyPrefix = "submission:"

// FlowStore keeps submission flows in Redis so any instance can serve the
// next request of a seller. Flows expire after ttl of inactivity.
type FlowStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ submission.Store = (*FlowStore)(nil)

func NewFlowStore(client *redis.Client, ttl time.Duration) *FlowStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &FlowStore{client: client, ttl: ttl}
}

func (s *FlowStore) Save(ctx context.Context, f *submission.Flow) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode submission %s: %w", f.ID, err)
	}
	if err := s.client.Set(ctx, flowKeyPrefix+f.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set submission %s: %w", f.ID, err)
	}
	return nil
}

func (s *FlowStore) Get(ctx context.Context, id string) (*submission.Flow, error) {
	data, err := s.client.Get(ctx, flowKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get submission %s: %w", id, err)
	}
	var f submission.Flow
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", id, err)
	}
	return &f, nil
}

func (s *FlowStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, flowKeyPrefix+id).Err()
}
