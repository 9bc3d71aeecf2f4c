// Package airtable é o cliente REST da API de records do Airtable.
//
// O Airtable é o espelho secundário das entidades do Postgres; o airsync usa
// este pacote para manter as tabelas da base em dia. A API limita operações
// de escrita a lotes de 10 records e ~5 req/s por base, então os métodos em
// lote fazem o chunking internamente e o núcleo HTTP respeita Retry-After.
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

const (
	// DefaultBaseURL é o endpoint público da API de records.
	DefaultBaseURL = "https://api.airtable.com/v0"
	// BatchSize é o limite de records por operação de escrita.
	BatchSize = 10
	// pageSize é o máximo de records por página de listagem.
	pageSize = 100
)

// Client acessa uma única base do Airtable.
type Client struct {
	core   *httpapi.Client
	baseID string
}

// NewClient cria o cliente com token estático (personal access token).
func NewClient(token, baseID string, opts ...httpapi.Option) *Client {
	return &Client{
		core:   httpapi.New(DefaultBaseURL, httpapi.BearerToken(token), opts...),
		baseID: baseID,
	}
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL, token, baseID string, opts ...httpapi.Option) *Client {
	return &Client{
		core:   httpapi.New(baseURL, httpapi.BearerToken(token), opts...),
		baseID: baseID,
	}
}

func (c *Client) tablePath(table string) string {
	return fmt.Sprintf("/%s/%s", c.baseID, url.PathEscape(table))
}

// ListRecords percorre todas as páginas da tabela. O loop termina quando a
// resposta não traz offset ou repete o offset anterior.
func (c *Client) ListRecords(ctx context.Context, table string) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(pageSize))
		if offset != "" {
			q.Set("offset", offset)
		}

		var page recordPage
		if err := c.core.Do(ctx, http.MethodGet, c.tablePath(table), q, nil, &page); err != nil {
			return nil, fmt.Errorf("listar records de %q: %w", table, err)
		}
		all = append(all, page.Records...)

		if page.Offset == "" || page.Offset == offset {
			return all, nil
		}
		offset = page.Offset
	}
}

// GetRecord busca um record pelo id.
func (c *Client) GetRecord(ctx context.Context, table, recordID string) (*Record, error) {
	var rec Record
	if err := c.core.Do(ctx, http.MethodGet, c.tablePath(table)+"/"+recordID, nil, nil, &rec); err != nil {
		return nil, fmt.Errorf("buscar record %s de %q: %w", recordID, table, err)
	}
	return &rec, nil
}

// CreateRecords cria records em lotes de 10 e retorna os records criados
// (com ids preenchidos) na mesma ordem.
func (c *Client) CreateRecords(ctx context.Context, table string, fields []map[string]any) ([]Record, error) {
	var created []Record

	for start := 0; start < len(fields); start += BatchSize {
		end := start + BatchSize
		if end > len(fields) {
			end = len(fields)
		}

		req := writeRequest{}
		for _, f := range fields[start:end] {
			req.Records = append(req.Records, writeRecord{Fields: f})
		}

		var resp recordPage
		if err := c.core.Do(ctx, http.MethodPost, c.tablePath(table), nil, req, &resp); err != nil {
			return created, fmt.Errorf("criar records em %q: %w", table, err)
		}
		created = append(created, resp.Records...)
	}
	return created, nil
}

// UpdateRecords atualiza records existentes (PATCH parcial) em lotes de 10.
func (c *Client) UpdateRecords(ctx context.Context, table string, records []Record) error {
	for start := 0; start < len(records); start += BatchSize {
		end := start + BatchSize
		if end > len(records) {
			end = len(records)
		}

		req := writeRequest{}
		for _, r := range records[start:end] {
			req.Records = append(req.Records, writeRecord{ID: r.ID, Fields: r.Fields})
		}

		if err := c.core.Do(ctx, http.MethodPatch, c.tablePath(table), nil, req, nil); err != nil {
			return fmt.Errorf("atualizar records em %q: %w", table, err)
		}
	}
	return nil
}

// DeleteRecords remove records em lotes de 10.
func (c *Client) DeleteRecords(ctx context.Context, table string, recordIDs []string) error {
	for start := 0; start < len(recordIDs); start += BatchSize {
		end := start + BatchSize
		if end > len(recordIDs) {
			end = len(recordIDs)
		}

		q := url.Values{}
		for _, id := range recordIDs[start:end] {
			q.Add("records[]", id)
		}

		if err := c.core.Do(ctx, http.MethodDelete, c.tablePath(table), q, nil, nil); err != nil {
			return fmt.Errorf("remover records de %q: %w", table, err)
		}
	}
	return nil
}
