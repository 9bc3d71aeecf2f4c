// Package ramp é o cliente REST da API developer do Ramp (cartões
// corporativos). A autenticação é OAuth2 client_credentials com escopos e a
// paginação é por cursor (parâmetro "start", próximo valor em "page.next").
package ramp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

// DefaultBaseURL é o endpoint público.
const DefaultBaseURL = "https://api.ramp.com/developer/v1"

const pageSize = 100

// Client acessa o negócio associado ao token.
type Client struct {
	core *httpapi.Client
}

// NewClient cria o cliente com a fonte de tokens.
func NewClient(source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, source, opts...)
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL string, source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return &Client{core: httpapi.New(baseURL, httpapi.BearerSource{Source: source}, opts...)}
}

// ListUsers percorre todos os usuários do negócio.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var all []User
	cursor := ""

	for {
		var page struct {
			Data []User   `json:"data"`
			Page pageInfo `json:"page"`
		}
		if err := c.core.Do(ctx, http.MethodGet, "/users", cursorQuery(cursor), nil, &page); err != nil {
			return nil, fmt.Errorf("listar usuários ramp: %w", err)
		}
		all = append(all, page.Data...)

		next := page.Page.Cursor()
		if next == "" || next == cursor {
			return all, nil
		}
		cursor = next
	}
}

// ListTransactions percorre as transações liquidadas desde a data informada.
func (c *Client) ListTransactions(ctx context.Context, from time.Time) ([]Transaction, error) {
	var all []Transaction
	cursor := ""

	for {
		q := cursorQuery(cursor)
		if !from.IsZero() {
			q.Set("from_date", from.Format(time.RFC3339))
		}

		var page struct {
			Data []Transaction `json:"data"`
			Page pageInfo      `json:"page"`
		}
		if err := c.core.Do(ctx, http.MethodGet, "/transactions", q, nil, &page); err != nil {
			return nil, fmt.Errorf("listar transações ramp: %w", err)
		}
		all = append(all, page.Data...)

		next := page.Page.Cursor()
		if next == "" || next == cursor {
			return all, nil
		}
		cursor = next
	}
}

// ListCards percorre os cartões emitidos.
func (c *Client) ListCards(ctx context.Context) ([]Card, error) {
	var all []Card
	cursor := ""

	for {
		var page struct {
			Data []Card   `json:"data"`
			Page pageInfo `json:"page"`
		}
		if err := c.core.Do(ctx, http.MethodGet, "/cards", cursorQuery(cursor), nil, &page); err != nil {
			return nil, fmt.Errorf("listar cartões ramp: %w", err)
		}
		all = append(all, page.Data...)

		next := page.Page.Cursor()
		if next == "" || next == cursor {
			return all, nil
		}
		cursor = next
	}
}

func cursorQuery(cursor string) url.Values {
	q := url.Values{}
	q.Set("page_size", fmt.Sprint(pageSize))
	if cursor != "" {
		q.Set("start", cursor)
	}
	return q
}
