package airsync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// sqlStore implementa Store[T] sobre database/sql (driver lib/pq).
type sqlStore[T any] struct {
	db        *sql.DB
	table     string
	keyColumn string
	cols      []string
}

// NewSQLStore monta o store para a tabela informada. keyColumn é a coluna
// de chave natural (única) usada no ON CONFLICT e nas buscas.
func NewSQLStore[T any](db *sql.DB, table, keyColumn string) (Store[T], error) {
	cols, err := columnsOf[T]()
	if err != nil {
		return nil, err
	}

	found := false
	for _, c := range cols {
		if c == keyColumn {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("airsync: coluna de chave %q não mapeada em %T", keyColumn, *new(T))
	}

	return &sqlStore[T]{db: db, table: table, keyColumn: keyColumn, cols: cols}, nil
}

func (s *sqlStore[T]) Upsert(ctx context.Context, entity *T) error {
	query := buildUpsert(s.table, s.keyColumn, s.cols)
	if _, err := s.db.ExecContext(ctx, query, valuesOf(entity)...); err != nil {
		return fmt.Errorf("upsert em %s: %w", s.table, err)
	}
	return nil
}

func (s *sqlStore[T]) Get(ctx context.Context, key string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		strings.Join(s.cols, ", "), s.table, s.keyColumn)

	dest := new(T)
	row := s.db.QueryRowContext(ctx, query, key)
	if err := row.Scan(scanTargets(dest)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("buscar %s em %s: %w", key, s.table, err)
	}
	return dest, nil
}

func (s *sqlStore[T]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(s.cols, ", "), s.table, s.keyColumn)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		dest := new(T)
		if err := rows.Scan(scanTargets(dest)...); err != nil {
			return nil, fmt.Errorf("scan de %s: %w", s.table, err)
		}
		out = append(out, *dest)
	}
	return out, rows.Err()
}

func (s *sqlStore[T]) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", s.table, s.keyColumn)
	res, err := s.db.ExecContext(ctx, query, key)
	if err != nil {
		return fmt.Errorf("remover %s de %s: %w", key, s.table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// buildUpsert gera o INSERT ... ON CONFLICT DO UPDATE da tabela. A coluna de
// chave fica fora do SET.
func buildUpsert(table, keyColumn string, cols []string) string {
	placeholders := make([]string, len(cols))
	var sets []string
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != keyColumn {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		keyColumn,
		strings.Join(sets, ", "),
	)
}
