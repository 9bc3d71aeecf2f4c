package airsync

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/opsbridge/opsbridge/airtable"
)

// MemStore é um Store em memória para testes.
type MemStore[T Syncable] struct {
	mu   sync.Mutex
	rows map[string]T

	// UpsertErr, quando definido, é devolvido por Upsert.
	UpsertErr error
}

func NewMemStore[T Syncable]() *MemStore[T] {
	return &MemStore[T]{rows: make(map[string]T)}
}

func (m *MemStore[T]) Upsert(ctx context.Context, entity *T) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[(*entity).NaturalKey()] = *entity
	return nil
}

func (m *MemStore[T]) Get(ctx context.Context, key string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (m *MemStore[T]) List(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.rows))
	for k := range m.rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m.rows[k])
	}
	return out, nil
}

func (m *MemStore[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[key]; !ok {
		return ErrNotFound
	}
	delete(m.rows, key)
	return nil
}

// FakeAirtable implementa AirtableAPI em memória para testes.
type FakeAirtable struct {
	mu      sync.Mutex
	records map[string][]airtable.Record
	nextID  int

	// FailWrites faz toda escrita falhar.
	FailWrites bool
}

func NewFakeAirtable() *FakeAirtable {
	return &FakeAirtable{records: make(map[string][]airtable.Record)}
}

// Seed insere um record diretamente, devolvendo o id gerado.
func (f *FakeAirtable) Seed(table string, fields map[string]any) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("rec%03d", f.nextID)
	f.records[table] = append(f.records[table], airtable.Record{ID: id, Fields: fields})
	return id
}

func (f *FakeAirtable) ListRecords(ctx context.Context, table string) ([]airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]airtable.Record, len(f.records[table]))
	copy(out, f.records[table])
	return out, nil
}

func (f *FakeAirtable) CreateRecords(ctx context.Context, table string, fields []map[string]any) ([]airtable.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites {
		return nil, fmt.Errorf("airtable indisponível")
	}
	created := make([]airtable.Record, 0, len(fields))
	for _, fs := range fields {
		f.nextID++
		rec := airtable.Record{ID: fmt.Sprintf("rec%03d", f.nextID), Fields: fs}
		f.records[table] = append(f.records[table], rec)
		created = append(created, rec)
	}
	return created, nil
}

func (f *FakeAirtable) UpdateRecords(ctx context.Context, table string, records []airtable.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites {
		return fmt.Errorf("airtable indisponível")
	}
	for _, upd := range records {
		for i, rec := range f.records[table] {
			if rec.ID == upd.ID {
				f.records[table][i].Fields = upd.Fields
			}
		}
	}
	return nil
}

func (f *FakeAirtable) DeleteRecords(ctx context.Context, table string, recordIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites {
		return fmt.Errorf("airtable indisponível")
	}
	drop := make(map[string]bool, len(recordIDs))
	for _, id := range recordIDs {
		drop[id] = true
	}
	kept := f.records[table][:0]
	for _, rec := range f.records[table] {
		if !drop[rec.ID] {
			kept = append(kept, rec)
		}
	}
	f.records[table] = kept
	return nil
}
