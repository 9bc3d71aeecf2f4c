package airsync

import (
	"context"
	"errors"
)

// ErrNotFound indica que a chave natural não existe no Postgres.
var ErrNotFound = errors.New("airsync: registro não encontrado")

// Store é o lado Postgres do espelhamento. A implementação padrão é o
// sqlStore; testes usam o MemStore.
type Store[T any] interface {
	Upsert(ctx context.Context, entity *T) error
	Get(ctx context.Context, key string) (*T, error)
	List(ctx context.Context) ([]T, error)
	Delete(ctx context.Context, key string) error
}
