// Package auth gerencia o ciclo de vida de tokens OAuth2 dos provedores.
//
// O Manager mantém o access token atual de forma thread-safe e o renova em
// background quando 80% do TTL se esgota. Os fetchers cobrem os três grants
// usados pelos provedores integrados: client_credentials (Ramp, TripActions),
// refresh_token (Gusto, QuickBooks) e account_credentials (Zoom S2S).
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TokenFetcher define a função que sabe como buscar um novo token.
type TokenFetcher func(ctx context.Context) (string, time.Duration, error)

// Manager gerencia o ciclo de vida do token de forma thread-safe.
type Manager struct {
	token       string
	mu          sync.RWMutex
	fetcher     TokenFetcher
	stopChan    chan struct{}
	initialized bool
}

// NewManager cria um gerenciador genérico.
func NewManager(fetcher TokenFetcher) *Manager {
	return &Manager{
		fetcher:  fetcher,
		stopChan: make(chan struct{}),
	}
}

// Start faz a busca inicial síncrona e inicia o loop de renovação.
func (m *Manager) Start(ctx context.Context) error {
	token, ttl, err := m.fetcher(ctx)
	if err != nil {
		return fmt.Errorf("falha inicial ao obter token: %w", err)
	}

	m.setToken(token)

	go m.refreshLoop(ctx, ttl)
	return nil
}

// Get retorna o token atual de forma segura.
func (m *Manager) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return "", fmt.Errorf("auth manager não inicializado")
	}
	return m.token, nil
}

// Stop encerra o processo de renovação.
func (m *Manager) Stop() {
	close(m.stopChan)
}

// setToken também marca o manager como inicializado, sob o mesmo lock que
// o Get lê.
func (m *Manager) setToken(t string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = t
	m.initialized = true
}

func (m *Manager) refreshLoop(ctx context.Context, initialTTL time.Duration) {
	waitDuration := calculateWait(initialTTL)
	timer := time.NewTimer(waitDuration)

	for {
		select {
		case <-m.stopChan:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			token, newTTL, err := m.fetcher(ctx)
			if err == nil {
				m.setToken(token)
				waitDuration = calculateWait(newTTL)
			} else {
				// Fallback curto em caso de erro
				waitDuration = 10 * time.Second
			}
			timer.Reset(waitDuration)
		}
	}
}

func calculateWait(ttl time.Duration) time.Duration {
	// Renova quando passar 80% do tempo de vida (margem de segurança)
	if ttl == 0 {
		return 5 * time.Minute // Fallback se a API não retornar expires_in
	}
	return time.Duration(float64(ttl) * 0.8)
}
