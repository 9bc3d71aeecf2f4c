// Package gusto é o cliente REST da API do Gusto (folha de pagamento).
// A autenticação é OAuth2 refresh_token; o token vem de um TokenSource
// renovado em background pelo pkg/auth.
package gusto

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

// DefaultBaseURL é o endpoint público v1.
const DefaultBaseURL = "https://api.gusto.com/v1"

const perPage = 100

// Client acessa a empresa associada ao token.
type Client struct {
	core *httpapi.Client
}

// NewClient cria o cliente com a fonte de tokens OAuth2.
func NewClient(source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, source, opts...)
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL string, source httpapi.TokenSource, opts ...httpapi.Option) *Client {
	return &Client{core: httpapi.New(baseURL, httpapi.BearerSource{Source: source}, opts...)}
}

// GetCompany busca os dados da empresa.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*Company, error) {
	var out Company
	if err := c.core.Do(ctx, http.MethodGet, "/companies/"+companyID, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("buscar empresa %s: %w", companyID, err)
	}
	return &out, nil
}

// ListEmployees percorre todas as páginas de funcionários da empresa.
func (c *Client) ListEmployees(ctx context.Context, companyID string) ([]Employee, error) {
	var all []Employee

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("per", fmt.Sprint(perPage))

		var batch []Employee
		path := fmt.Sprintf("/companies/%s/employees", companyID)
		if err := c.core.Do(ctx, http.MethodGet, path, q, nil, &batch); err != nil {
			return nil, fmt.Errorf("listar funcionários (página %d): %w", page, err)
		}
		all = append(all, batch...)

		if len(batch) < perPage {
			return all, nil
		}
	}
}

// GetEmployee busca um funcionário pelo id.
func (c *Client) GetEmployee(ctx context.Context, employeeID string) (*Employee, error) {
	var out Employee
	if err := c.core.Do(ctx, http.MethodGet, "/employees/"+employeeID, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("buscar funcionário %s: %w", employeeID, err)
	}
	return &out, nil
}

// ListTerminations lista os desligamentos de um funcionário.
func (c *Client) ListTerminations(ctx context.Context, employeeID string) ([]Termination, error) {
	var out []Termination
	path := fmt.Sprintf("/employees/%s/terminations", employeeID)
	if err := c.core.Do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("listar desligamentos de %s: %w", employeeID, err)
	}
	return out, nil
}
