package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/truthbounty/pkg/reputation"
)

// DefaultReputationPrefix es el prefijo de las claves de reputación.
const DefaultReputationPrefix = "truthbounty:reputation:"

// ReputationStore implementa reputation.StorageProvider sobre Redis.
type ReputationStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewReputationStore crea el store. ttl = 0 guarda sin expiración.
func NewReputationStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *ReputationStore {
	if prefix == "" {
		prefix = DefaultReputationPrefix
	}
	return &ReputationStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *ReputationStore) GetReputation(ctx context.Context, address string) (reputation.Reputation, error) {
	b, err := s.rdb.Get(ctx, s.prefix+address).Bytes()
	if errors.Is(err, redis.Nil) {
		return reputation.Reputation{}, reputation.ErrNotFound
	}
	if err != nil {
		return reputation.Reputation{}, fmt.Errorf("rediscache.GetReputation: %w", err)
	}

	var rep reputation.Reputation
	if err := json.Unmarshal(b, &rep); err != nil {
		return reputation.Reputation{}, fmt.Errorf("rediscache.GetReputation: unmarshal: %w", err)
	}
	return rep, nil
}

func (s *ReputationStore) SaveReputation(ctx context.Context, rep reputation.Reputation) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("rediscache.SaveReputation: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+rep.Address, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("rediscache.SaveReputation: %w", err)
	}
	return nil
}
