// Package giantbomb fetches game data from the GiantBomb API.
package giantbomb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ReleaseYear is the release year random games are drawn from.
const ReleaseYear = 2021

// maxOffset bounds the random pick within the result list.
const maxOffset = 99

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("giantbomb: api key not configured")
	// ErrNoResults is returned when the API returns an empty result list.
	ErrNoResults = errors.New("giantbomb: no games returned")
)

// Game is the subset of a GiantBomb game record the API uses.
type Game struct {
	Name string `json:"name"`
	Deck string `json:"deck"`
}

type gamesResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Results    []Game `json:"results"`
}

// Client calls the GiantBomb games endpoint. Requests are rate limited.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	intn    func(n int) int
}

// NewClient creates a Client allowing perMinute requests per minute.
func NewClient(baseURL, apiKey string, perMinute int) *Client {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		intn:    rand.Intn,
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool { return c.apiKey != "" }

// RandomGame returns a game picked at random from those released in
// ReleaseYear.
func (c *Client) RandomGame(ctx context.Context) (Game, error) {
	if !c.Configured() {
		return Game{}, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Game{}, fmt.Errorf("giantbomb: rate limit wait: %w", err)
	}

	offset := c.intn(maxOffset)
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	q.Set("filter", "expected_release_year:"+strconv.Itoa(ReleaseYear))
	q.Set("limit", strconv.Itoa(offset+1))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/games/?"+q.Encode(), nil)
	if err != nil {
		return Game{}, fmt.Errorf("giantbomb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Game{}, fmt.Errorf("giantbomb: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Game{}, fmt.Errorf("giantbomb: unexpected status %d", resp.StatusCode)
	}

	var body gamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Game{}, fmt.Errorf("giantbomb: decode response: %w", err)
	}
	// status_code 1 is OK in GiantBomb responses.
	if body.StatusCode != 0 && body.StatusCode != 1 {
		return Game{}, fmt.Errorf("giantbomb: api error %d: %s", body.StatusCode, body.Error)
	}
	if len(body.Results) == 0 {
		return Game{}, ErrNoResults
	}
	if offset >= len(body.Results) {
		offset = len(body.Results) - 1
	}
	return body.Results[offset], nil
}
