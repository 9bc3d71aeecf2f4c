package airsync

import (
	"context"
	"fmt"

	"github.com/opsbridge/opsbridge/airtable"
)

// SyncStat resume uma rodada de sincronização completa.
type SyncStat struct {
	Created int
	Updated int
	Deleted int
	Skipped int
	Failed  int
}

func (s SyncStat) String() string {
	return fmt.Sprintf("created=%d updated=%d deleted=%d skipped=%d failed=%d",
		s.Created, s.Updated, s.Deleted, s.Skipped, s.Failed)
}

// Total é o número de linhas consideradas na rodada.
func (s SyncStat) Total() int {
	return s.Created + s.Updated + s.Deleted + s.Skipped + s.Failed
}

// SyncAll reconcilia o Airtable com o estado atual do Postgres: linhas
// elegíveis viram creates ou updates, records órfãos (sem linha
// correspondente ou filtrados) são removidos. Falhas afetam apenas o lote
// em questão; o restante da rodada segue.
func (t *Table[T]) SyncAll(ctx context.Context) (SyncStat, error) {
	var stat SyncStat

	rows, err := t.store.List(ctx)
	if err != nil {
		return stat, fmt.Errorf("listar linhas do banco: %w", err)
	}

	records, err := t.at.ListRecords(ctx, t.cfg.AirtableTable)
	if err != nil {
		return stat, fmt.Errorf("listar %s: %w", t.cfg.AirtableTable, err)
	}

	byKey := make(map[string]airtable.Record, len(records))
	for _, rec := range records {
		if k := rec.StringField(t.cfg.KeyField); k != "" {
			byKey[k] = rec
		}
	}

	var (
		creates     []map[string]any
		createKeys  []string
		updates     []airtable.Record
		filteredIDs []string
		orphanIDs   []string
		seen        = make(map[string]bool, len(rows))
	)

	for i := range rows {
		row := rows[i]
		key := row.NaturalKey()
		seen[key] = true

		matched, err := t.filter.Match(rowMap(&row))
		if err != nil {
			t.logger.Error().Err(err).Str("key", key).Msg("filtro falhou, linha ignorada")
			stat.Failed++
			continue
		}

		rec, exists := byKey[key]
		if !matched {
			stat.Skipped++
			if exists {
				filteredIDs = append(filteredIDs, rec.ID)
				_ = t.cache.Delete(ctx, t.cfg.AirtableTable, key)
			}
			continue
		}

		if exists {
			updates = append(updates, airtable.Record{ID: rec.ID, Fields: row.AirtableFields()})
		} else {
			creates = append(creates, row.AirtableFields())
			createKeys = append(createKeys, key)
		}
	}

	// Records sem linha correspondente no banco são órfãos
	for key, rec := range byKey {
		if !seen[key] {
			orphanIDs = append(orphanIDs, rec.ID)
			_ = t.cache.Delete(ctx, t.cfg.AirtableTable, key)
		}
	}

	t.applyCreates(ctx, creates, createKeys, &stat)
	t.applyUpdates(ctx, updates, &stat)
	t.applyDeletes(ctx, orphanIDs, &stat, &stat.Deleted)
	// Remoções por filtro já contaram como Skipped
	t.applyDeletes(ctx, filteredIDs, &stat, nil)

	t.logger.Info().
		Int("created", stat.Created).
		Int("updated", stat.Updated).
		Int("deleted", stat.Deleted).
		Int("skipped", stat.Skipped).
		Int("failed", stat.Failed).
		Msg("sincronização concluída")

	return stat, nil
}

func (t *Table[T]) applyCreates(ctx context.Context, fields []map[string]any, keys []string, stat *SyncStat) {
	for start := 0; start < len(fields); start += airtable.BatchSize {
		end := min(start+airtable.BatchSize, len(fields))

		created, err := t.at.CreateRecords(ctx, t.cfg.AirtableTable, fields[start:end])
		if err != nil {
			t.logger.Error().Err(err).Int("batch", end-start).Msg("lote de criação falhou")
			stat.Failed += end - start
			continue
		}
		stat.Created += end - start
		for i, rec := range created {
			if start+i < len(keys) {
				_ = t.cache.Set(ctx, t.cfg.AirtableTable, keys[start+i], rec.ID)
			}
		}
	}
}

func (t *Table[T]) applyUpdates(ctx context.Context, updates []airtable.Record, stat *SyncStat) {
	for start := 0; start < len(updates); start += airtable.BatchSize {
		end := min(start+airtable.BatchSize, len(updates))

		if err := t.at.UpdateRecords(ctx, t.cfg.AirtableTable, updates[start:end]); err != nil {
			t.logger.Error().Err(err).Int("batch", end-start).Msg("lote de atualização falhou")
			stat.Failed += end - start
			continue
		}
		stat.Updated += end - start
	}
}

func (t *Table[T]) applyDeletes(ctx context.Context, ids []string, stat *SyncStat, counter *int) {
	for start := 0; start < len(ids); start += airtable.BatchSize {
		end := min(start+airtable.BatchSize, len(ids))

		if err := t.at.DeleteRecords(ctx, t.cfg.AirtableTable, ids[start:end]); err != nil {
			t.logger.Error().Err(err).Int("batch", end-start).Msg("lote de remoção falhou")
			stat.Failed += end - start
			continue
		}
		if counter != nil {
			*counter += end - start
		}
	}
}
