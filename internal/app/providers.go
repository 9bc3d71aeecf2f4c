package app

import (
	"context"
	"fmt"

	"github.com/opsbridge/opsbridge/checkr"
	"github.com/opsbridge/opsbridge/cio"
	"github.com/opsbridge/opsbridge/gusto"
	"github.com/opsbridge/opsbridge/mailchimp"
	"github.com/opsbridge/opsbridge/pkg/auth"
	"github.com/opsbridge/opsbridge/pkg/secrets"
	"github.com/opsbridge/opsbridge/quickbooks"
	"github.com/opsbridge/opsbridge/ramp"
	"github.com/opsbridge/opsbridge/zoom"
)

// Endpoints de token de cada provedor OAuth.
const (
	gustoTokenURL      = "https://api.gusto.com/oauth/token"
	quickbooksTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	rampTokenURL       = "https://api.ramp.com/developer/v1/token"
	zoomTokenURL       = "https://zoom.us/oauth/token"
)

// Formatos dos segredos JSON por provedor.

type gustoSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	CompanyID    string `json:"company_id"`
}

type quickbooksSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	RealmID      string `json:"realm_id"`
}

type rampSecret struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type zoomSecret struct {
	AccountID    string `json:"account_id"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type mailchimpSecret struct {
	APIKey string `json:"api_key"`
	ListID string `json:"list_id"`
}

// connectProviders cria os clientes exigidos pelos jobs configurados. Cada
// provedor OAuth ganha um manager renovando o token em background.
func (a *App) connectProviders(ctx context.Context, store *secrets.Store) (cio.Providers, error) {
	var providers cio.Providers

	needed := map[string]bool{}
	for _, jc := range a.Config.Sync.Jobs {
		needed[jc.Name] = true
	}

	if needed[cio.JobEmployees] {
		var secret gustoSecret
		if err := store.Provider(ctx, "gusto", &secret); err != nil {
			return providers, fmt.Errorf("segredo do gusto: %w", err)
		}
		manager, err := a.startManager(ctx, auth.NewRefreshTokenFetcher(auth.OAuthConfig{
			TokenURL:     gustoTokenURL,
			ClientID:     secret.ClientID,
			ClientSecret: secret.ClientSecret,
		}, secret.RefreshToken))
		if err != nil {
			return providers, fmt.Errorf("token do gusto: %w", err)
		}
		providers.Gusto = gusto.NewClient(manager)
		providers.GustoCompanyID = secret.CompanyID
	}

	if needed[cio.JobApplicants] {
		apiKey, err := store.Raw(ctx, "checkr")
		if err != nil {
			return providers, fmt.Errorf("segredo do checkr: %w", err)
		}
		providers.Checkr = checkr.NewClient(apiKey)
	}

	if needed[cio.JobSubscribers] {
		var secret mailchimpSecret
		if err := store.Provider(ctx, "mailchimp", &secret); err != nil {
			return providers, fmt.Errorf("segredo do mailchimp: %w", err)
		}
		client, err := mailchimp.NewClient(secret.APIKey)
		if err != nil {
			return providers, err
		}
		providers.Mailchimp = client
		providers.MailchimpListID = secret.ListID
	}

	if needed[cio.JobExpenses] {
		var rs rampSecret
		if err := store.Provider(ctx, "ramp", &rs); err != nil {
			return providers, fmt.Errorf("segredo do ramp: %w", err)
		}
		rampManager, err := a.startManager(ctx, auth.NewClientCredentialsFetcher(auth.OAuthConfig{
			TokenURL:     rampTokenURL,
			ClientID:     rs.ClientID,
			ClientSecret: rs.ClientSecret,
			Scope:        "transactions:read users:read cards:read",
		}))
		if err != nil {
			return providers, fmt.Errorf("token do ramp: %w", err)
		}
		providers.Ramp = ramp.NewClient(rampManager)

		var qs quickbooksSecret
		if err := store.Provider(ctx, "quickbooks", &qs); err != nil {
			return providers, fmt.Errorf("segredo do quickbooks: %w", err)
		}
		qbManager, err := a.startManager(ctx, auth.NewRefreshTokenFetcher(auth.OAuthConfig{
			TokenURL:     quickbooksTokenURL,
			ClientID:     qs.ClientID,
			ClientSecret: qs.ClientSecret,
		}, qs.RefreshToken))
		if err != nil {
			return providers, fmt.Errorf("token do quickbooks: %w", err)
		}
		providers.QuickBooks = quickbooks.NewClient(qbManager, qs.RealmID)
	}

	if needed[cio.JobZoomUsers] {
		var secret zoomSecret
		if err := store.Provider(ctx, "zoom", &secret); err != nil {
			return providers, fmt.Errorf("segredo do zoom: %w", err)
		}
		manager, err := a.startManager(ctx, auth.NewAccountCredentialsFetcher(auth.OAuthConfig{
			TokenURL:     zoomTokenURL,
			ClientID:     secret.ClientID,
			ClientSecret: secret.ClientSecret,
		}, secret.AccountID))
		if err != nil {
			return providers, fmt.Errorf("token do zoom: %w", err)
		}
		providers.Zoom = zoom.NewClient(manager)
	}

	return providers, nil
}

func (a *App) startManager(ctx context.Context, fetcher auth.TokenFetcher) (*auth.Manager, error) {
	manager := auth.NewManager(fetcher)
	if err := manager.Start(ctx); err != nil {
		return nil, err
	}
	a.managers = append(a.managers, manager)
	return manager, nil
}
