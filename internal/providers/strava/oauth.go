package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/core"
	"golang.org/x/oauth2"
)

// ActivityReadAllScope is needed to list private activities.
const ActivityReadAllScope = "activity:read_all"

// Authorizer drives the one-time authorization code flow that mints the
// initial refresh token.
type Authorizer struct {
	cfg    *config.StravaConfig
	client *http.Client
}

func NewAuthorizer(cfg *config.StravaConfig, client *http.Client) *Authorizer {
	return &Authorizer{cfg: cfg, client: client}
}

// Grant is the token set returned by the code exchange.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Authorization is what the consent screen hands back through the redirect.
type Authorization struct {
	Code  string
	Scope string
}

// NewState returns a random token for the state parameter.
func NewState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// AuthCodeURL builds the consent URL. approval_prompt=force makes Strava show
// the scope selection again even for an already authorized app.
func (a *Authorizer) AuthCodeURL(state string) string {
	return oauthConfig(a.cfg).AuthCodeURL(state,
		oauth2.SetAuthURLParam("approval_prompt", "force"),
		oauth2.SetAuthURLParam("scope", strings.Join(a.cfg.GetScopes(), ",")),
	)
}

func (a *Authorizer) Exchange(ctx context.Context, code string) (_ *Grant, err error) {
	if a.cfg.ClientID == "" {
		return nil, &core.ConfigurationError{Field: "STRAVA_CLIENT_ID", Reason: "is not set"}
	}
	if a.cfg.ClientSecret == "" {
		return nil, &core.ConfigurationError{Field: "STRAVA_CLIENT_SECRET", Reason: "is not set"}
	}

	ctx, span := startSpan(ctx, "strava.exchange_code")
	defer func() { endSpan(span, err) }()

	ctx, cancel := withRequestTimeout(ctx, a.cfg)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)

	tok, err := oauthConfig(a.cfg).Exchange(ctx, code)
	if err != nil {
		return nil, tokenError(err)
	}
	if tok.RefreshToken == "" {
		return nil, &core.UpstreamError{Endpoint: tokenEndpoint, Err: errors.New("response missing refresh_token")}
	}

	return &Grant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// ParseRedirect extracts the authorization code from the URL the browser was
// redirected to. A non-empty state must match the one echoed back.
func ParseRedirect(raw, state string) (*Authorization, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("redirect URL is empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL: %w", err)
	}

	q := u.Query()
	if denied := q.Get("error"); denied != "" {
		return nil, fmt.Errorf("authorization was not granted: %s", denied)
	}
	if state != "" && q.Has("state") && q.Get("state") != state {
		return nil, errors.New("state mismatch, start the authorization again")
	}

	code := q.Get("code")
	if code == "" {
		return nil, errors.New("no 'code' found in URL, make sure you copied the complete redirect URL")
	}

	return &Authorization{Code: code, Scope: q.Get("scope")}, nil
}

// HasScope reports whether a comma separated scope list contains scope.
func HasScope(granted, scope string) bool {
	for _, s := range strings.Split(granted, ",") {
		if strings.TrimSpace(s) == scope {
			return true
		}
	}
	return false
}
