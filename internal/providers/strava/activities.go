package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sandevgo/stravamcp/internal/config"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/sandevgo/stravamcp/pkg/log"
	"go.opentelemetry.io/otel/attribute"
)

var _ core.ActivityFetcher = (*Fetcher)(nil)

type Fetcher struct {
	cfg    *config.StravaConfig
	client *http.Client
}

func NewFetcher(cfg *config.StravaConfig, client *http.Client) *Fetcher {
	return &Fetcher{cfg: cfg, client: client}
}

type pageCursor struct {
	Page    int
	PerPage int
}

// policy describes one of the three fetch shapes as parameters of a single
// loop.
type policy struct {
	perPage int
	// paged allows requests past the first page.
	paged bool
	// limit truncates the result; zero keeps everything.
	limit int
}

func newPolicy(req core.FetchRequest) policy {
	switch {
	case req.All:
		return policy{perPage: core.MaxPageSize, paged: true}
	case req.Count > core.MaxPageSize:
		return policy{perPage: core.MaxPageSize, paged: true, limit: req.Count}
	default:
		return policy{perPage: req.Count}
	}
}

// Fetch returns the athlete's activities, most recent first. Any failed page
// discards everything fetched so far.
func (f *Fetcher) Fetch(ctx context.Context, accessToken string, req core.FetchRequest) (_ *core.FetchResult, err error) {
	logger := log.FromCtx(ctx)

	ctx, span := startSpan(ctx, "strava.list_activities",
		attribute.Int("strava.request.count", req.Count),
		attribute.Bool("strava.request.all", req.All),
	)
	defer func() { endSpan(span, err) }()

	result := &core.FetchResult{Activities: []core.Activity{}}
	if !req.All {
		result.Requested = req.Count
		// per_page=0 would get Strava's default page of 30
		if req.Count <= 0 {
			return result, nil
		}
	}

	pol := newPolicy(req)
	activities := make([]core.Activity, 0, min(pol.limit, 4*core.MaxPageSize))

	for page, err := range f.pages(ctx, accessToken, pol.perPage) {
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		if pol.limit > 0 {
			if remaining := pol.limit - len(activities); len(page) >= remaining {
				activities = append(activities, page[:remaining]...)
				break
			}
		}

		activities = append(activities, page...)
		if !pol.paged || len(page) < pol.perPage {
			break
		}
	}

	result.Activities = activities
	span.SetAttributes(attribute.Int("strava.response.count", len(activities)))
	if !req.All && len(activities) < req.Count {
		result.Warning = &core.PartialResultWarning{Fetched: len(activities), Requested: req.Count}
	}

	logger.Debug().
		Int("fetched", len(activities)).
		Bool("all", req.All).
		Int("requested", req.Count).
		Msg("activities fetched")

	return result, nil
}

// pages lazily requests page 1, 2, ... until the consumer stops or a request
// fails.
func (f *Fetcher) pages(ctx context.Context, accessToken string, perPage int) iter.Seq2[[]core.Activity, error] {
	return func(yield func([]core.Activity, error) bool) {
		for cursor := (pageCursor{Page: 1, PerPage: perPage}); ; cursor.Page++ {
			page, err := f.fetchPage(ctx, accessToken, cursor)
			if !yield(page, err) || err != nil {
				return
			}
		}
	}
}

func (f *Fetcher) fetchPage(ctx context.Context, accessToken string, cursor pageCursor) (_ []core.Activity, err error) {
	ctx, span := startSpan(ctx, "strava.activities_page",
		attribute.Int("strava.page", cursor.Page),
		attribute.Int("strava.per_page", cursor.PerPage),
	)
	defer func() { endSpan(span, err) }()

	ctx, cancel := withRequestTimeout(ctx, f.cfg)
	defer cancel()

	u, err := url.Parse(f.cfg.GetActivitiesURL())
	if err != nil {
		return nil, &core.ConfigurationError{Field: "STRAVA_API_URL", Reason: "is not a valid URL"}
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(cursor.Page))
	q.Set("per_page", strconv.Itoa(cursor.PerPage))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", core.AppUserAgent)

	log.FromCtx(ctx).Debug().
		Int("page", cursor.Page).
		Int("per_page", cursor.PerPage).
		Msg("requesting activities page")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &core.UpstreamError{Endpoint: activitiesEndpoint, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.UpstreamError{
			Endpoint:   activitiesEndpoint,
			StatusCode: resp.StatusCode,
			Body:       readExcerpt(resp.Body),
		}
	}

	var page []core.Activity
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &core.UpstreamError{
			Endpoint: activitiesEndpoint,
			Err:      fmt.Errorf("decode page %d: %w", cursor.Page, err),
		}
	}

	return page, nil
}
