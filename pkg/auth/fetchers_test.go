package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCredentialsFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "cid", r.PostForm.Get("client_id"))
		assert.Equal(t, "transactions:read", r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer srv.Close()

	fetcher := NewClientCredentialsFetcher(OAuthConfig{
		TokenURL:     srv.URL,
		ClientID:     "cid",
		ClientSecret: "sec",
		Scope:        "transactions:read",
	})

	token, ttl, err := fetcher(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-1", token)
	assert.Equal(t, time.Hour, ttl)
}

func TestRefreshTokenFetcher_RotatesRefreshToken(t *testing.T) {
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		call++
		switch call {
		case 1:
			assert.Equal(t, "rt-0", r.PostForm.Get("refresh_token"))
			w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":300}`))
		default:
			// A segunda renovação deve usar o refresh token rotacionado
			assert.Equal(t, "rt-1", r.PostForm.Get("refresh_token"))
			w.Write([]byte(`{"access_token":"at-2","expires_in":300}`))
		}
	}))
	defer srv.Close()

	fetcher := NewRefreshTokenFetcher(OAuthConfig{TokenURL: srv.URL, ClientID: "c", ClientSecret: "s"}, "rt-0")

	token, _, err := fetcher(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-1", token)

	token, _, err = fetcher(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "at-2", token)
}

func TestAccountCredentialsFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "zoom-cid", user)
		assert.Equal(t, "zoom-sec", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "account_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "acc-1", r.PostForm.Get("account_id"))

		w.Write([]byte(`{"access_token":"zat","expires_in":3599}`))
	}))
	defer srv.Close()

	fetcher := NewAccountCredentialsFetcher(OAuthConfig{
		TokenURL:     srv.URL,
		ClientID:     "zoom-cid",
		ClientSecret: "zoom-sec",
	}, "acc-1")

	token, _, err := fetcher(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zat", token)
}

func TestFetcher_ErrorResponses(t *testing.T) {
	t.Run("status >= 400", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, _, err := NewClientCredentialsFetcher(OAuthConfig{TokenURL: srv.URL})(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("access_token vazio", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"expires_in":600}`))
		}))
		defer srv.Close()

		_, _, err := NewClientCredentialsFetcher(OAuthConfig{TokenURL: srv.URL})(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vazio")
	})
}
