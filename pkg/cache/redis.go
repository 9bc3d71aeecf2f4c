// Package cache fornece o cache Redis de record-ids do Airtable: a chave
// natural de uma linha aponta para o record id correspondente na base,
// evitando uma listagem completa a cada upsert.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss indica que a chave não está no cache.
var ErrMiss = errors.New("cache: chave não encontrada")

// RecordIDCache abstrai o armazenamento do mapeamento chave natural -> record id.
// A implementação Noop permite rodar sem Redis.
type RecordIDCache interface {
	Get(ctx context.Context, table, key string) (string, error)
	Set(ctx context.Context, table, key, recordID string) error
	Delete(ctx context.Context, table, key string) error
}

// RedisCache implementa RecordIDCache sobre go-redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache conecta no endereço informado. TTL zero desabilita expiração.
func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
		}),
		ttl: ttl,
	}
}

func cacheKey(table, key string) string {
	return fmt.Sprintf("airtable:%s:%s", table, key)
}

func (c *RedisCache) Get(ctx context.Context, table, key string) (string, error) {
	val, err := c.client.Get(ctx, cacheKey(table, key)).Result()
	if err == redis.Nil {
		return "", ErrMiss
	} else if err != nil {
		return "", fmt.Errorf("cache get: %w", err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, table, key, recordID string) error {
	if err := c.client.Set(ctx, cacheKey(table, key), recordID, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, table, key string) error {
	if err := c.client.Del(ctx, cacheKey(table, key)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Ping verifica a conectividade na subida do serviço.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Noop é usado quando o Redis está desabilitado: todo Get é miss.
type Noop struct{}

func (Noop) Get(ctx context.Context, table, key string) (string, error) { return "", ErrMiss }
func (Noop) Set(ctx context.Context, table, key, recordID string) error { return nil }
func (Noop) Delete(ctx context.Context, table, key string) error        { return nil }
