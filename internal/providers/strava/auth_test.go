package strava

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_AccessToken(t *testing.T) {
	fake := newFakeStrava(t, 0)
	cfg := fake.config()
	refresher := NewRefresher(cfg, fake.Client())

	token, err := refresher.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-refresh_token", token)

	requests := fake.tokens()
	require.Len(t, requests, 1)
	form := requests[0]
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "12345", form.Get("client_id"))
	assert.Equal(t, "client-secret", form.Get("client_secret"))
	assert.Equal(t, "refresh-token", form.Get("refresh_token"))

	assert.Equal(t, "refresh-token", cfg.RefreshToken, "configured refresh token is never rotated")
}

func TestRefresher_NoCaching(t *testing.T) {
	fake := newFakeStrava(t, 0)
	refresher := NewRefresher(fake.config(), fake.Client())

	for range 3 {
		_, err := refresher.AccessToken(context.Background())
		require.NoError(t, err)
	}

	assert.Len(t, fake.tokens(), 3)
}

func TestRefresher_MissingCredentials(t *testing.T) {
	tests := []struct {
		name      string
		clear     func(c *testingCredentials)
		wantField string
	}{
		{name: "client id", clear: func(c *testingCredentials) { c.id = "" }, wantField: "STRAVA_CLIENT_ID"},
		{name: "client secret", clear: func(c *testingCredentials) { c.secret = "" }, wantField: "STRAVA_CLIENT_SECRET"},
		{name: "refresh token", clear: func(c *testingCredentials) { c.refresh = "" }, wantField: "STRAVA_REFRESH_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeStrava(t, 0)
			cfg := fake.config()
			creds := testingCredentials{id: cfg.ClientID, secret: cfg.ClientSecret, refresh: cfg.RefreshToken}
			tt.clear(&creds)
			cfg.ClientID, cfg.ClientSecret, cfg.RefreshToken = creds.id, creds.secret, creds.refresh

			_, err := NewRefresher(cfg, fake.Client()).AccessToken(context.Background())

			var cfgErr *core.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Empty(t, fake.tokens(), "no network call before the credential check")
		})
	}
}

type testingCredentials struct {
	id, secret, refresh string
}

func TestRefresher_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"message":"Authorization Error","errors":[{"resource":"RefreshToken","code":"invalid"}]}`,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Authorization Error",
		},
		{
			name:       "rate limited",
			status:     http.StatusTooManyRequests,
			body:       `{"message":"Rate Limit Exceeded"}`,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "HTTP 429",
		},
		{
			name:    "missing access token",
			status:  http.StatusOK,
			body:    `{"token_type":"Bearer"}`,
			wantMsg: "access_token",
		},
		{
			name:    "unparsable body",
			status:  http.StatusOK,
			body:    `{not json`,
			wantMsg: "strava token endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeStrava(t, 0)
			fake.tokenStatus = tt.status
			fake.tokenBody = tt.body

			_, err := NewRefresher(fake.config(), fake.Client()).AccessToken(context.Background())

			var upstream *core.UpstreamError
			require.True(t, errors.As(err, &upstream), "got %v", err)
			assert.Equal(t, tt.wantStatus, upstream.StatusCode)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
