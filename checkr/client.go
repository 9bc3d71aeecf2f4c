// Package checkr é o cliente REST da API do Checkr (background checks).
// A autenticação é basic auth com a API key como usuário e senha vazia.
package checkr

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

// DefaultBaseURL é o endpoint público v1.
const DefaultBaseURL = "https://api.checkr.com/v1"

const perPage = 100

// Client acessa a conta Checkr associada à API key.
type Client struct {
	core *httpapi.Client
}

// NewClient cria o cliente com a API key da conta.
func NewClient(apiKey string, opts ...httpapi.Option) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, apiKey, opts...)
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL, apiKey string, opts ...httpapi.Option) *Client {
	return &Client{core: httpapi.New(baseURL, httpapi.BasicAuth{Username: apiKey}, opts...)}
}

// CreateCandidate registra um candidato para screening.
func (c *Client) CreateCandidate(ctx context.Context, req CandidateRequest) (*Candidate, error) {
	var out Candidate
	if err := c.core.Do(ctx, http.MethodPost, "/candidates", nil, req, &out); err != nil {
		return nil, fmt.Errorf("criar candidato: %w", err)
	}
	return &out, nil
}

// GetCandidate busca um candidato pelo id.
func (c *Client) GetCandidate(ctx context.Context, id string) (*Candidate, error) {
	var out Candidate
	if err := c.core.Do(ctx, http.MethodGet, "/candidates/"+id, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("buscar candidato %s: %w", id, err)
	}
	return &out, nil
}

// ListCandidates percorre todas as páginas de candidatos.
func (c *Client) ListCandidates(ctx context.Context) ([]Candidate, error) {
	var all []Candidate

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("per_page", fmt.Sprint(perPage))

		var resp candidatePage
		if err := c.core.Do(ctx, http.MethodGet, "/candidates", q, nil, &resp); err != nil {
			return nil, fmt.Errorf("listar candidatos (página %d): %w", page, err)
		}
		all = append(all, resp.Data...)

		if len(resp.Data) == 0 || len(all) >= resp.Count {
			return all, nil
		}
	}
}

// CreateInvitation dispara o convite de screening para um candidato.
func (c *Client) CreateInvitation(ctx context.Context, candidateID, pkg string) (*Invitation, error) {
	body := map[string]string{
		"candidate_id": candidateID,
		"package":      pkg,
	}
	var out Invitation
	if err := c.core.Do(ctx, http.MethodPost, "/invitations", nil, body, &out); err != nil {
		return nil, fmt.Errorf("criar convite para %s: %w", candidateID, err)
	}
	return &out, nil
}

// CreateReport solicita um report para um candidato já registrado.
func (c *Client) CreateReport(ctx context.Context, candidateID, pkg string) (*Report, error) {
	body := map[string]string{
		"candidate_id": candidateID,
		"package":      pkg,
	}
	var out Report
	if err := c.core.Do(ctx, http.MethodPost, "/reports", nil, body, &out); err != nil {
		return nil, fmt.Errorf("criar report para %s: %w", candidateID, err)
	}
	return &out, nil
}

// GetReport busca um report pelo id.
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	var out Report
	if err := c.core.Do(ctx, http.MethodGet, "/reports/"+id, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("buscar report %s: %w", id, err)
	}
	return &out, nil
}
