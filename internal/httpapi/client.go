// Package httpapi contém o núcleo compartilhado dos clientes REST: montagem
// de requisição, injeção de credenciais, decode de JSON e tratamento de
// rate limit (429).
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxRetryAfter = 30 * time.Second

// Credentials injeta autenticação em uma requisição prestes a ser enviada.
type Credentials interface {
	Apply(req *http.Request) error
}

// BearerToken é uma credencial estática (token fixo, ex: Airtable).
type BearerToken string

func (t BearerToken) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+string(t))
	return nil
}

// BasicAuth cobre provedores que usam a API key como usuário (Checkr, MailChimp).
type BasicAuth struct {
	Username string
	Password string
}

func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// TokenSource é satisfeita pelo auth.Manager; o token é buscado a cada
// requisição porque ele é renovado em background.
type TokenSource interface {
	Get() (string, error)
}

// BearerSource injeta um bearer token dinâmico vindo de um TokenSource.
type BearerSource struct {
	Source TokenSource
}

func (s BearerSource) Apply(req *http.Request) error {
	token, err := s.Source.Get()
	if err != nil {
		return fmt.Errorf("obter token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// Client é o núcleo HTTP reutilizado por todos os pacotes de provedor.
// Seguro para uso concorrente.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
	logger  zerolog.Logger
}

// Option customiza a construção do Client.
type Option func(*Client)

// WithHTTPClient substitui o *http.Client (usado nos testes com httptest).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger associa um logger de componente.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New cria o núcleo apontando para a base URL do provedor.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL retorna a base configurada (útil em testes).
func (c *Client) BaseURL() string { return c.baseURL }

// Do monta, autentica e executa uma chamada JSON. body e out podem ser nil.
// Em caso de 429 a chamada é repetida uma única vez respeitando Retry-After;
// demais erros HTTP viram *APIError sem retry.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp)
		drain(resp)
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Dur("wait", wait).
			Msg("rate limited, aguardando para repetir")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		resp, err = c.do(ctx, method, path, query, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode da resposta %s %s: %w", method, path, err)
	}
	return nil
}

// DoForm executa uma chamada com corpo application/x-www-form-urlencoded.
func (c *Client) DoForm(ctx context.Context, method, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if err := c.creds.Apply(req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode do corpo %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("criar request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.creds != nil {
		if err := c.creds.Apply(req); err != nil {
			return nil, err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return time.Second
	}
	wait := time.Duration(secs) * time.Second
	if wait > maxRetryAfter {
		wait = maxRetryAfter
	}
	return wait
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
