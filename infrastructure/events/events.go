package events

import (
	"context"
	"encoding/json"
	"fmt"

	"axiapac.com/backoffice/config"
	"github.com/redis/go-redis/v9"
)

// Publisher broadcasts domain events to live dashboards.
type Publisher interface {
	Publish(ctx context.Context, tenant string, topic string, payload any) error
	Close() error
}

// Channel returns the tenant-scoped channel for a topic, e.g.
// "backoffice:acme:attendance.marked".
func Channel(namespace, tenant, topic string) string {
	return fmt.Sprintf("%s:%s:%s", namespace, tenant, topic)
}

// RedisPublisher publishes JSON payloads with PUBLISH.
type RedisPublisher struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisPublisher(opts *redis.Options, namespace string) *RedisPublisher {
	return &RedisPublisher{rdb: redis.NewClient(opts), namespace: namespace}
}

// Connect returns a Redis publisher, or a no-op one when no address is set.
func Connect(cfg config.RedisConfig) Publisher {
	if cfg.Addr == "" {
		return Nop{}
	}
	return NewRedisPublisher(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}, cfg.Namespace)
}

func (p *RedisPublisher) Publish(ctx context.Context, tenant string, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	if err := p.rdb.Publish(ctx, Channel(p.namespace, tenant, topic), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
func (Nop) Close() error                                       { return nil }
