package airsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/opsbridge/opsbridge/airtable"
	"github.com/opsbridge/opsbridge/pkg/cache"
)

// Syncable é o contrato mínimo de uma entidade espelhável: a chave natural
// (estável e única) e a projeção dos campos para o Airtable.
type Syncable interface {
	NaturalKey() string
	AirtableFields() map[string]any
}

// AirtableAPI é o recorte do cliente Airtable usado pelo espelhamento
// (permite mocking nos testes).
type AirtableAPI interface {
	ListRecords(ctx context.Context, table string) ([]airtable.Record, error)
	CreateRecords(ctx context.Context, table string, fields []map[string]any) ([]airtable.Record, error)
	UpdateRecords(ctx context.Context, table string, records []airtable.Record) error
	DeleteRecords(ctx context.Context, table string, recordIDs []string) error
}

// TableConfig descreve o lado Airtable de uma tabela espelhada.
type TableConfig struct {
	// AirtableTable é o nome da tabela na base.
	AirtableTable string
	// KeyField é o campo do Airtable que guarda a chave natural.
	KeyField string
	// Filter é a expressão CEL opcional que decide o que espelhar.
	Filter string
}

// Table amarra o Store Postgres de T à tabela Airtable correspondente.
type Table[T Syncable] struct {
	store  Store[T]
	at     AirtableAPI
	cache  cache.RecordIDCache
	cfg    TableConfig
	filter *Filter
	logger zerolog.Logger
}

// NewTable valida a configuração e compila o filtro.
func NewTable[T Syncable](store Store[T], at AirtableAPI, rc cache.RecordIDCache, cfg TableConfig, logger zerolog.Logger) (*Table[T], error) {
	if cfg.AirtableTable == "" || cfg.KeyField == "" {
		return nil, fmt.Errorf("airsync: AirtableTable e KeyField são obrigatórios")
	}
	if rc == nil {
		rc = cache.Noop{}
	}

	filter, err := CompileFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}

	return &Table[T]{
		store:  store,
		at:     at,
		cache:  rc,
		cfg:    cfg,
		filter: filter,
		logger: logger.With().Str("airtable_table", cfg.AirtableTable).Logger(),
	}, nil
}

// Get busca a entidade pela chave natural.
func (t *Table[T]) Get(ctx context.Context, key string) (*T, error) {
	return t.store.Get(ctx, key)
}

// List lista todas as entidades do Postgres.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	return t.store.List(ctx)
}

// Upsert grava no Postgres e propaga para o Airtable. Uma falha no
// espelhamento NÃO desfaz a escrita no banco; ela volta como erro para o
// chamador decidir (normalmente apenas logar).
func (t *Table[T]) Upsert(ctx context.Context, entity *T) error {
	if err := t.store.Upsert(ctx, entity); err != nil {
		return err
	}

	matched, err := t.filter.Match(rowMap(entity))
	if err != nil {
		return fmt.Errorf("filtro de %s: %w", t.cfg.AirtableTable, err)
	}

	key := (*entity).NaturalKey()
	if !matched {
		// A linha deixou de ser elegível: remove o espelho se existir
		return t.removeMirror(ctx, key)
	}
	return t.mirror(ctx, key, (*entity).AirtableFields())
}

// Put grava apenas no Postgres. As cargas em lote usam Put e espelham tudo
// de uma vez no SyncAll.
func (t *Table[T]) Put(ctx context.Context, entity *T) error {
	return t.store.Upsert(ctx, entity)
}

// Delete remove do Postgres e do Airtable.
func (t *Table[T]) Delete(ctx context.Context, key string) error {
	if err := t.store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return t.removeMirror(ctx, key)
}

// mirror cria ou atualiza o record correspondente à chave.
func (t *Table[T]) mirror(ctx context.Context, key string, fields map[string]any) error {
	recordID, err := t.recordID(ctx, key)
	if err != nil {
		return err
	}

	if recordID == "" {
		created, err := t.at.CreateRecords(ctx, t.cfg.AirtableTable, []map[string]any{fields})
		if err != nil {
			return fmt.Errorf("criar record em %s: %w", t.cfg.AirtableTable, err)
		}
		if len(created) > 0 {
			_ = t.cache.Set(ctx, t.cfg.AirtableTable, key, created[0].ID)
		}
		return nil
	}

	err = t.at.UpdateRecords(ctx, t.cfg.AirtableTable, []airtable.Record{{ID: recordID, Fields: fields}})
	if err != nil {
		return fmt.Errorf("atualizar record %s em %s: %w", recordID, t.cfg.AirtableTable, err)
	}
	return nil
}

func (t *Table[T]) removeMirror(ctx context.Context, key string) error {
	recordID, err := t.recordID(ctx, key)
	if err != nil {
		return err
	}
	if recordID == "" {
		return nil
	}

	if err := t.at.DeleteRecords(ctx, t.cfg.AirtableTable, []string{recordID}); err != nil {
		return fmt.Errorf("remover record %s de %s: %w", recordID, t.cfg.AirtableTable, err)
	}
	_ = t.cache.Delete(ctx, t.cfg.AirtableTable, key)
	return nil
}

// recordID resolve a chave natural para o record id. Cache miss cai para uma
// listagem completa, que também repovoa o cache.
func (t *Table[T]) recordID(ctx context.Context, key string) (string, error) {
	id, err := t.cache.Get(ctx, t.cfg.AirtableTable, key)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		t.logger.Warn().Err(err).Msg("cache de record-ids indisponível, listando a tabela")
	}

	records, err := t.at.ListRecords(ctx, t.cfg.AirtableTable)
	if err != nil {
		return "", fmt.Errorf("listar %s para resolver record id: %w", t.cfg.AirtableTable, err)
	}

	found := ""
	for _, rec := range records {
		k := rec.StringField(t.cfg.KeyField)
		if k == "" {
			continue
		}
		_ = t.cache.Set(ctx, t.cfg.AirtableTable, k, rec.ID)
		if k == key {
			found = rec.ID
		}
	}
	return found, nil
}
