// Package mailchimp é o cliente REST da API v3 do MailChimp.
//
// A API key embute o datacenter no sufixo ("-us6"), que determina o host.
// Membros de lista são endereçados pelo MD5 do e-mail em minúsculas, o que
// torna o upsert idempotente.
package mailchimp

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/opsbridge/opsbridge/internal/httpapi"
)

const pageCount = 100

// Client acessa a conta MailChimp associada à API key.
type Client struct {
	core *httpapi.Client
}

// NewClient monta a base URL a partir do datacenter da API key.
func NewClient(apiKey string, opts ...httpapi.Option) (*Client, error) {
	idx := strings.LastIndex(apiKey, "-")
	if idx < 0 || idx == len(apiKey)-1 {
		return nil, fmt.Errorf("api key do mailchimp sem sufixo de datacenter")
	}
	dc := apiKey[idx+1:]
	baseURL := fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc)
	return NewClientWithBaseURL(baseURL, apiKey, opts...), nil
}

// NewClientWithBaseURL aponta para outro endpoint (testes).
func NewClientWithBaseURL(baseURL, apiKey string, opts ...httpapi.Option) *Client {
	// O usuário do basic auth é ignorado pela API
	return &Client{core: httpapi.New(baseURL, httpapi.BasicAuth{Username: "opsbridge", Password: apiKey}, opts...)}
}

// SubscriberHash calcula o identificador de membro: MD5 do e-mail minúsculo.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// ListMembers percorre todos os membros de uma lista (offset/count).
func (c *Client) ListMembers(ctx context.Context, listID string) ([]Member, error) {
	var all []Member

	for offset := 0; ; offset += pageCount {
		q := url.Values{}
		q.Set("offset", fmt.Sprint(offset))
		q.Set("count", fmt.Sprint(pageCount))

		var page memberPage
		path := fmt.Sprintf("/lists/%s/members", listID)
		if err := c.core.Do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
			return nil, fmt.Errorf("listar membros (offset %d): %w", offset, err)
		}
		all = append(all, page.Members...)

		if len(page.Members) == 0 || len(all) >= page.TotalItems {
			return all, nil
		}
	}
}

// GetMember busca um membro pelo e-mail.
func (c *Client) GetMember(ctx context.Context, listID, email string) (*Member, error) {
	var out Member
	path := fmt.Sprintf("/lists/%s/members/%s", listID, SubscriberHash(email))
	if err := c.core.Do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("buscar membro %s: %w", email, err)
	}
	return &out, nil
}

// UpsertMember cria ou atualiza um membro (PUT no hash do e-mail).
func (c *Client) UpsertMember(ctx context.Context, listID string, req MemberRequest) (*Member, error) {
	var out Member
	path := fmt.Sprintf("/lists/%s/members/%s", listID, SubscriberHash(req.EmailAddress))
	if err := c.core.Do(ctx, http.MethodPut, path, nil, req, &out); err != nil {
		return nil, fmt.Errorf("upsert do membro %s: %w", req.EmailAddress, err)
	}
	return &out, nil
}

// UnsubscribeMember marca o membro como descadastrado.
func (c *Client) UnsubscribeMember(ctx context.Context, listID, email string) error {
	req := MemberRequest{EmailAddress: email, Status: "unsubscribed"}
	if _, err := c.UpsertMember(ctx, listID, req); err != nil {
		return fmt.Errorf("descadastrar %s: %w", email, err)
	}
	return nil
}
