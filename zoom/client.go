// Package zoom é o cliente REST da API v2 do Zoom.
// A autenticação é OAuth2 server-to-server (grant account_credentials).
package zoom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

// DefaultBaseURL é o endpoint público v2.
const DefaultBaseURL = "https://api.zoom.us/v2"

const pageSize = 100

// Client acessa a conta Zoom associada ao token.
type Client struct {
	core *httpapi.Client
}

// NewClient cria o cliente com a fonte de tokens S2S.
func NewClient(source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, source, opts...)
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL string, source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return &Client{core: httpapi.New(baseURL, httpapi.BearerSource{Source: source}, opts...)}
}

// ListUsers percorre todas as páginas de usuários da conta.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var all []User

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(pageSize))
		q.Set("page_number", fmt.Sprint(page))

		var resp userPage
		if err := c.core.Do(ctx, http.MethodGet, "/users", q, nil, &resp); err != nil {
			return nil, fmt.Errorf("listar usuários (página %d): %w", page, err)
		}
		all = append(all, resp.Users...)

		if page >= resp.PageCount || len(resp.Users) == 0 {
			return all, nil
		}
	}
}

// GetUser busca um usuário por id ou e-mail.
func (c *Client) GetUser(ctx context.Context, idOrEmail string) (*User, error) {
	var out User
	if err := c.core.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(idOrEmail), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("buscar usuário %s: %w", idOrEmail, err)
	}
	return &out, nil
}

// CreateUser provisiona um usuário na conta (action "create").
func (c *Client) CreateUser(ctx context.Context, info UserInfo) (*User, error) {
	body := createUserRequest{Action: "create", UserInfo: info}
	var out User
	if err := c.core.Do(ctx, http.MethodPost, "/users", nil, body, &out); err != nil {
		return nil, fmt.Errorf("criar usuário %s: %w", info.Email, err)
	}
	return &out, nil
}

// UpdateUser aplica alterações parciais a um usuário.
func (c *Client) UpdateUser(ctx context.Context, userID string, patch map[string]any) error {
	if err := c.core.Do(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID), nil, patch, nil); err != nil {
		return fmt.Errorf("atualizar usuário %s: %w", userID, err)
	}
	return nil
}

// DeleteUser remove o usuário da conta.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if err := c.core.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil, nil); err != nil {
		return fmt.Errorf("remover usuário %s: %w", userID, err)
	}
	return nil
}

// ListRooms percorre as salas da conta (cursor next_page_token).
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	var all []Room
	token := ""

	for {
		q := url.Values{}
		q.Set("page_size", fmt.Sprint(pageSize))
		if token != "" {
			q.Set("next_page_token", token)
		}

		var resp roomPage
		if err := c.core.Do(ctx, http.MethodGet, "/rooms", q, nil, &resp); err != nil {
			return nil, fmt.Errorf("listar salas: %w", err)
		}
		all = append(all, resp.Rooms...)

		if resp.NextPageToken == "" || resp.NextPageToken == token {
			return all, nil
		}
		token = resp.NextPageToken
	}
}
