package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sandevgo/stravamcp/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name        string
		available   int
		req         core.FetchRequest
		wantLen     int
		wantPages   []pageRequest
		wantWarning *core.PartialResultWarning
	}{
		{
			name:      "small count is one page",
			available: 400,
			req:       core.FetchRequest{Count: 5},
			wantLen:   5,
			wantPages: []pageRequest{{Page: 1, PerPage: 5}},
		},
		{
			name:      "small count at the page maximum",
			available: 400,
			req:       core.FetchRequest{Count: 200},
			wantLen:   200,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}},
		},
		{
			name:        "small count with fewer available",
			available:   3,
			req:         core.FetchRequest{Count: 10},
			wantLen:     3,
			wantPages:   []pageRequest{{Page: 1, PerPage: 10}},
			wantWarning: &core.PartialResultWarning{Fetched: 3, Requested: 10},
		},
		{
			name:      "large count truncates the second page",
			available: 400,
			req:       core.FetchRequest{Count: 250},
			wantLen:   250,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}, {Page: 2, PerPage: 200}},
		},
		{
			name:      "large count consumed exactly by full pages",
			available: 1000,
			req:       core.FetchRequest{Count: 400},
			wantLen:   400,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}, {Page: 2, PerPage: 200}},
		},
		{
			name:        "large count with fewer available stops on short page",
			available:   300,
			req:         core.FetchRequest{Count: 500},
			wantLen:     300,
			wantPages:   []pageRequest{{Page: 1, PerPage: 200}, {Page: 2, PerPage: 200}},
			wantWarning: &core.PartialResultWarning{Fetched: 300, Requested: 500},
		},
		{
			name:        "large count stops on empty page",
			available:   400,
			req:         core.FetchRequest{Count: 600},
			wantLen:     400,
			wantPages:   []pageRequest{{Page: 1, PerPage: 200}, {Page: 2, PerPage: 200}, {Page: 3, PerPage: 200}},
			wantWarning: &core.PartialResultWarning{Fetched: 400, Requested: 600},
		},
		{
			name:      "all with exactly one full page",
			available: 200,
			req:       core.FetchRequest{All: true},
			wantLen:   200,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}, {Page: 2, PerPage: 200}},
		},
		{
			name:      "all stops on short page",
			available: 450,
			req:       core.FetchRequest{All: true},
			wantLen:   450,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}, {Page: 2, PerPage: 200}, {Page: 3, PerPage: 200}},
		},
		{
			name:      "all takes precedence over count",
			available: 50,
			req:       core.FetchRequest{All: true, Count: 5},
			wantLen:   50,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}},
		},
		{
			name:      "all with no activities",
			available: 0,
			req:       core.FetchRequest{All: true},
			wantLen:   0,
			wantPages: []pageRequest{{Page: 1, PerPage: 200}},
		},
		{
			name:      "zero count issues no request",
			available: 10,
			req:       core.FetchRequest{Count: 0},
			wantLen:   0,
			wantPages: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeStrava(t, tt.available)
			fetcher := NewFetcher(fake.config(), fake.Client())

			result, err := fetcher.Fetch(context.Background(), "access-token", tt.req)
			require.NoError(t, err)

			assert.Len(t, result.Activities, tt.wantLen)
			assert.Equal(t, tt.wantWarning, result.Warning)

			var gotPages []pageRequest
			for _, p := range fake.pages() {
				assert.Equal(t, "Bearer access-token", p.Auth)
				gotPages = append(gotPages, pageRequest{Page: p.Page, PerPage: p.PerPage})
			}
			if diff := cmp.Diff(tt.wantPages, gotPages); diff != "" {
				t.Errorf("page requests mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetcher_PreservesProviderOrder(t *testing.T) {
	fake := newFakeStrava(t, 400)
	fetcher := NewFetcher(fake.config(), fake.Client())

	result, err := fetcher.Fetch(context.Background(), "token", core.FetchRequest{Count: 250})
	require.NoError(t, err)
	require.Len(t, result.Activities, 250)

	// page 2 truncation keeps the first 50 items of that page
	for i, raw := range result.Activities {
		assert.Equal(t, 400-i, activityID(t, raw))
	}
}

func TestFetcher_SmallCountReturnsPageAsIs(t *testing.T) {
	fake := newFakeStrava(t, 100)
	fake.ignorePerPage = true
	fetcher := NewFetcher(fake.config(), fake.Client())

	result, err := fetcher.Fetch(context.Background(), "token", core.FetchRequest{Count: 5})
	require.NoError(t, err)

	assert.Len(t, result.Activities, 30)
	assert.Nil(t, result.Warning)
}

func TestFetcher_IsIdempotent(t *testing.T) {
	fake := newFakeStrava(t, 321)
	fetcher := NewFetcher(fake.config(), fake.Client())
	req := core.FetchRequest{All: true}

	first, err := fetcher.Fetch(context.Background(), "token", req)
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), "token", req)
	require.NoError(t, err)

	assert.Equal(t, first.Activities, second.Activities)
}

func TestFetcher_PageFailureDiscardsResults(t *testing.T) {
	fake := newFakeStrava(t, 1000)
	fake.pageStatus[2] = http.StatusTooManyRequests
	fetcher := NewFetcher(fake.config(), fake.Client())

	result, err := fetcher.Fetch(context.Background(), "token", core.FetchRequest{Count: 500})

	require.Error(t, err)
	assert.Nil(t, result)

	var upstream *core.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "Rate Limit Exceeded")
	assert.Len(t, fake.pages(), 2, "no page after the failed one")
}

func TestFetcher_UnparsableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()
	fetcher := NewFetcher(testConfig(server.URL), server.Client())

	_, err := fetcher.Fetch(context.Background(), "token", core.FetchRequest{Count: 5})

	var upstream *core.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "decode page 1")
}

func TestFetcher_TimeoutIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()
	cfg := testConfig(server.URL)
	cfg.RequestTimeout = 50 * time.Millisecond
	fetcher := NewFetcher(cfg, server.Client())

	_, err := fetcher.Fetch(context.Background(), "token", core.FetchRequest{Count: 5})

	var upstream *core.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		name string
		req  core.FetchRequest
		want policy
	}{
		{name: "all", req: core.FetchRequest{All: true, Count: 3}, want: policy{perPage: 200, paged: true}},
		{name: "large", req: core.FetchRequest{Count: 201}, want: policy{perPage: 200, paged: true, limit: 201}},
		{name: "small", req: core.FetchRequest{Count: 200}, want: policy{perPage: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newPolicy(tt.req))
		})
	}
}
