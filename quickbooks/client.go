// Package quickbooks é o cliente REST da API contábil do QuickBooks Online.
//
// A autenticação é OAuth2 refresh_token e toda rota carrega o realm id da
// empresa. Listagens usam o endpoint /query com a linguagem de consulta da
// API, paginada por STARTPOSITION/MAXRESULTS.
package quickbooks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

// DefaultBaseURL é o endpoint de produção.
const DefaultBaseURL = "https://quickbooks.api.intuit.com/v3"

const maxResults = 100

// Client acessa a empresa (realm) associada ao token.
type Client struct {
	core    *httpapi.Client
	realmID string
}

// NewClient cria o cliente para um realm.
func NewClient(source httpapi.TokenSource, realmID string, opts ...httpapi.Option) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, source, realmID, opts...)
}

// NewClientWithBaseURL aponta para outro endpoint (testes/sandbox).
func NewClientWithBaseURL(baseURL string, source httpapi.TokenSource, realmID string, opts ...httpapi.Option) *Client {
	return &Client{
		core:    httpapi.New(baseURL, httpapi.BearerSource{Source: source}, opts...),
		realmID: realmID,
	}
}

func (c *Client) companyPath(suffix string) string {
	return fmt.Sprintf("/company/%s%s", c.realmID, suffix)
}

// query executa uma consulta paginada e devolve cada página decodificada.
func (c *Client) query(ctx context.Context, entity string, out *queryResponse, start int) error {
	stmt := fmt.Sprintf("select * from %s startposition %d maxresults %d", entity, start, maxResults)

	q := url.Values{}
	q.Set("query", stmt)

	if err := c.core.Do(ctx, http.MethodGet, c.companyPath("/query"), q, nil, out); err != nil {
		return fmt.Errorf("query %s (posição %d): %w", entity, start, err)
	}
	return nil
}

// ListPurchases percorre todas as compras registradas.
func (c *Client) ListPurchases(ctx context.Context) ([]Purchase, error) {
	var all []Purchase

	for start := 1; ; start += maxResults {
		var resp queryResponse
		if err := c.query(ctx, "Purchase", &resp, start); err != nil {
			return nil, err
		}
		all = append(all, resp.QueryResponse.Purchase...)

		if len(resp.QueryResponse.Purchase) < maxResults {
			return all, nil
		}
	}
}

// ListItems percorre todos os itens do catálogo.
func (c *Client) ListItems(ctx context.Context) ([]Item, error) {
	var all []Item

	for start := 1; ; start += maxResults {
		var resp queryResponse
		if err := c.query(ctx, "Item", &resp, start); err != nil {
			return nil, err
		}
		all = append(all, resp.QueryResponse.Item...)

		if len(resp.QueryResponse.Item) < maxResults {
			return all, nil
		}
	}
}

// ListAttachables percorre os anexos (recibos, notas) do realm.
func (c *Client) ListAttachables(ctx context.Context) ([]Attachable, error) {
	var all []Attachable

	for start := 1; ; start += maxResults {
		var resp queryResponse
		if err := c.query(ctx, "Attachable", &resp, start); err != nil {
			return nil, err
		}
		all = append(all, resp.QueryResponse.Attachable...)

		if len(resp.QueryResponse.Attachable) < maxResults {
			return all, nil
		}
	}
}

// GetPurchase busca uma compra pelo id.
func (c *Client) GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	var resp struct {
		Purchase Purchase `json:"Purchase"`
	}
	if err := c.core.Do(ctx, http.MethodGet, c.companyPath("/purchase/"+id), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar compra %s: %w", id, err)
	}
	return &resp.Purchase, nil
}

// GetCompanyInfo busca os dados cadastrais do realm.
func (c *Client) GetCompanyInfo(ctx context.Context) (*CompanyInfo, error) {
	var resp struct {
		CompanyInfo CompanyInfo `json:"CompanyInfo"`
	}
	path := c.companyPath("/companyinfo/" + c.realmID)
	if err := c.core.Do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("buscar company info: %w", err)
	}
	return &resp.CompanyInfo, nil
}
