package strava

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/stravamcp/internal/config"
)

type pageRequest struct {
	Page    int
	PerPage int
	Auth    string
}

// fakeStrava serves a token endpoint and an activities listing over a fixed
// number of activities.
type fakeStrava struct {
	*httptest.Server

	total         int
	tokenStatus   int
	tokenBody     string
	pageStatus    map[int]int
	ignorePerPage bool

	mu            sync.Mutex
	tokenRequests []url.Values
	pageRequests  []pageRequest
}

func newFakeStrava(t *testing.T, total int) *fakeStrava {
	t.Helper()

	f := &fakeStrava{total: total, pageStatus: map[int]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", f.handleToken)
	mux.HandleFunc("GET /api/v3/athlete/activities", f.handleActivities)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeStrava) config() *config.StravaConfig {
	return testConfig(f.URL)
}

func testConfig(baseURL string) *config.StravaConfig {
	return &config.StravaConfig{
		ClientID:       "12345",
		ClientSecret:   "client-secret",
		RefreshToken:   "refresh-token",
		RedirectURI:    "http://localhost",
		Scopes:         "read_all,activity:read_all,profile:read_all",
		AuthURL:        baseURL + "/oauth/authorize",
		TokenURL:       baseURL + "/oauth/token",
		APIURL:         baseURL + "/api/v3",
		RequestTimeout: 5 * time.Second,
	}
}

func (f *fakeStrava) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.tokenRequests = append(f.tokenRequests, r.PostForm)
	status, body := f.tokenStatus, f.tokenBody
	f.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
		return
	}
	if body != "" {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"token_type":    "Bearer",
		"access_token":  "access-" + r.PostForm.Get("grant_type"),
		"refresh_token": "refresh-token-2",
		"expires_at":    time.Now().Add(6 * time.Hour).Unix(),
		"expires_in":    21600,
	})
}

func (f *fakeStrava) handleActivities(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	f.mu.Lock()
	f.pageRequests = append(f.pageRequests, pageRequest{Page: page, PerPage: perPage, Auth: r.Header.Get("Authorization")})
	status := f.pageStatus[page]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"message":"Rate Limit Exceeded"}`)
		return
	}

	if f.ignorePerPage {
		perPage = 30
	}

	items := make([]map[string]any, 0, perPage)
	for i := (page - 1) * perPage; i < page*perPage && i < f.total; i++ {
		// most recent first: the highest id comes back on page 1
		id := f.total - i
		items = append(items, map[string]any{"id": id, "name": fmt.Sprintf("Run %d", id)})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

func (f *fakeStrava) pages() []pageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pageRequest(nil), f.pageRequests...)
}

func (f *fakeStrava) tokens() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.tokenRequests...)
}

func activityID(t *testing.T, raw json.RawMessage) int {
	t.Helper()
	var a struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	return a.ID
}
