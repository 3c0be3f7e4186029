// Package rediscache comparte el leaderboard entre instancias: snapshot en Redis
// y lock distribuido para que solo una instancia refresque a la vez.
package rediscache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	DefaultSnapshotKey = "truthbounty:leaderboard:snapshot"
	DefaultLockKey     = "truthbounty:leaderboard:refresh-lock"
)

// releaseScript borra el lock solo si sigue siendo nuestro.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Config describe la conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Connect abre el cliente y verifica la conexión con PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("rediscache.Connect: ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Lock implementa ports.RefreshLock con SET NX PX y liberación por token.
type Lock struct {
	rdb redis.Cmdable
	key string
}

func NewLock(rdb redis.Cmdable, key string) *Lock {
	if key == "" {
		key = DefaultLockKey
	}
	return &Lock{rdb: rdb, key: key}
}

// TryAcquire intenta tomar el lock durante ttl. Si otra instancia lo tiene devuelve ok=false.
func (l *Lock) TryAcquire(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, fmt.Errorf("rediscache.TryAcquire: token: %w", err)
	}

	ok, err := l.rdb.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("rediscache.TryAcquire: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// El ctx del refresh puede estar cancelado; liberar con uno propio.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{l.key}, token).Err(); err != nil {
			slog.Warn("refresh lock release failed", "key", l.key, "err", err)
		}
	}
	return release, true, nil
}

// SnapshotStore implementa ports.SnapshotStore guardando el snapshot como JSON con TTL.
type SnapshotStore struct {
	rdb redis.Cmdable
	key string
	ttl time.Duration
}

// NewSnapshotStore crea el store. ttl = 0 guarda sin expiración.
func NewSnapshotStore(rdb redis.Cmdable, key string, ttl time.Duration) *SnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotStore{rdb: rdb, key: key, ttl: ttl}
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("rediscache.SaveSnapshot: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("rediscache.SaveSnapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, fmt.Errorf("rediscache.LoadSnapshot: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("rediscache.LoadSnapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("rediscache.LoadSnapshot: unmarshal: %w", err)
	}
	return snap, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
