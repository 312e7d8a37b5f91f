// Package persist provides cart.Storage backends.
package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"click-collect/internal/data/entity"
	"click-collect/internal/data/repository"

	"github.com/redis/go-redis/v9"
)

// Redis stores each record as a plain string key.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedis returns a Redis backed storage. A zero ttl keeps records forever.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	payload, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return payload, nil
}

func (r *Redis) Save(ctx context.Context, key string, payload []byte) error {
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Postgres stores records in the cart_records table.
type Postgres struct {
	repo repository.CartRecordRepository
	now  func() time.Time
}

func NewPostgres(repo repository.CartRecordRepository) *Postgres {
	return &Postgres{repo: repo, now: time.Now}
}

func (p *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	record, err := p.repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return record.Payload, nil
}

func (p *Postgres) Save(ctx context.Context, key string, payload []byte) error {
	return p.repo.Save(ctx, &entity.CartRecord{
		Name:      key,
		Payload:   payload,
		UpdatedAt: p.now(),
	})
}

// Memory keeps records in process. Used when no backend is configured and
// in tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), payload...), nil
}

func (m *Memory) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), payload...)
	return nil
}
