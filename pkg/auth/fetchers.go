package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// OAuthConfig descreve o endpoint de token de um provedor.
type OAuthConfig struct {
	TokenURL     string `yaml:"token_url" json:"token_url"`
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	Scope        string `yaml:"scope" json:"scope"`
}

// tokenResponse mapeia a resposta padrão da RFC 6749 (OAuth2)
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // Tempo em segundos
	TokenType    string `json:"token_type"`
}

// NewClientCredentialsFetcher cria a função de busca para o grant
// client_credentials (Ramp, TripActions).
func NewClientCredentialsFetcher(cfg OAuthConfig) TokenFetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		data := url.Values{}
		data.Set("grant_type", "client_credentials")
		data.Set("client_id", cfg.ClientID)
		data.Set("client_secret", cfg.ClientSecret)
		if cfg.Scope != "" {
			data.Set("scope", cfg.Scope)
		}

		resp, err := postTokenForm(ctx, cfg.TokenURL, data, "")
		if err != nil {
			return "", 0, err
		}
		return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
	}
}

// NewRefreshTokenFetcher cria a função de busca para o grant refresh_token
// (Gusto, QuickBooks). Provedores que rotacionam o refresh token na resposta
// têm o novo valor guardado sob o mesmo mutex para a próxima renovação.
func NewRefreshTokenFetcher(cfg OAuthConfig, refreshToken string) TokenFetcher {
	var mu sync.Mutex
	current := refreshToken

	return func(ctx context.Context) (string, time.Duration, error) {
		mu.Lock()
		defer mu.Unlock()

		data := url.Values{}
		data.Set("grant_type", "refresh_token")
		data.Set("refresh_token", current)
		data.Set("client_id", cfg.ClientID)
		data.Set("client_secret", cfg.ClientSecret)

		resp, err := postTokenForm(ctx, cfg.TokenURL, data, "")
		if err != nil {
			return "", 0, err
		}
		if resp.RefreshToken != "" {
			current = resp.RefreshToken
		}
		return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
	}
}

// NewAccountCredentialsFetcher cria a função de busca para o grant
// account_credentials server-to-server do Zoom. A autenticação do endpoint é
// basic auth com client id/secret e o account id vai no form.
func NewAccountCredentialsFetcher(cfg OAuthConfig, accountID string) TokenFetcher {
	return func(ctx context.Context) (string, time.Duration, error) {
		data := url.Values{}
		data.Set("grant_type", "account_credentials")
		data.Set("account_id", accountID)

		basic := cfg.ClientID + ":" + cfg.ClientSecret
		resp, err := postTokenForm(ctx, cfg.TokenURL, data, basic)
		if err != nil {
			return "", 0, err
		}
		return resp.AccessToken, time.Duration(resp.ExpiresIn) * time.Second, nil
	}
}

func postTokenForm(ctx context.Context, tokenURL string, data url.Values, basicAuth string) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if basicAuth != "" {
		parts := strings.SplitN(basicAuth, ":", 2)
		req.SetBasicAuth(parts[0], parts[1])
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro de conexão oauth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("oauth provider retornou erro: %d", resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("erro decode json token: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("access_token veio vazio")
	}
	return &tokenResp, nil
}
