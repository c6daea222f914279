package strava

import (
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	tokenEndpoint      = "token endpoint"
	activitiesEndpoint = "activities endpoint"

	maxBodyExcerpt = 512
)

// NewHTTPClient returns the client shared by the refresher and the fetcher.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyExcerpt {
		cut := maxBodyExcerpt
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}

func readExcerpt(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxBodyExcerpt+1))
	return excerpt(body)
}
