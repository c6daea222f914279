package authorizer

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/providers/strava"
)

type fakeStrava struct {
	mu sync.Mutex

	exchangeErr error
	verifyErr   error
	verifyCount int

	codes   []string
	tokens  []string
	configs []config.StravaConfig
}

func (f *fakeStrava) AuthCodeURL(cfg *config.StravaConfig, state string) string {
	q := url.Values{}
	q.Set("client_id", cfg.ClientID)
	q.Set("state", state)
	return "https://strava.test/oauth/authorize?" + q.Encode()
}

func (f *fakeStrava) Exchange(_ context.Context, cfg *config.StravaConfig, code string) (*strava.Grant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	f.configs = append(f.configs, *cfg)
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &strava.Grant{
		AccessToken:  "access-token",
		RefreshToken: "new-refresh-token",
		ExpiresAt:    time.Now().Add(6 * time.Hour),
	}, nil
}

func (f *fakeStrava) Verify(_ context.Context, _ *config.StravaConfig, accessToken string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, accessToken)
	return f.verifyCount, f.verifyErr
}

var errNoBrowser = errors.New("no display")

type recordingOpener struct {
	urls []string
	err  error
}

func (r *recordingOpener) open(u string) error {
	r.urls = append(r.urls, u)
	return r.err
}

func testConfig() *config.StravaConfig {
	return &config.StravaConfig{
		ClientID:     "12345",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost",
		Scopes:       "read_all,activity:read_all,profile:read_all",
	}
}
