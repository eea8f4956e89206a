// Package search provides the web search collaborator.
//
// Three providers are supported: Serper (Google results), Tavily and
// the Steam storefront search. Provider selection is configuration, not
// routing logic. Failures never escape as errors: a missing credential
// or transport failure becomes a single error entry in the result list,
// which downstream formatting renders distinctly.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Provider identifiers.
const (
	ProviderSerper = "serper"
	ProviderTavily = "tavily"
	ProviderSteam  = "steam"
)

// Default endpoint URLs, overridable for tests.
const (
	defaultSerperURL = "https://google.serper.dev/search"
	defaultTavilyURL = "https://api.tavily.com/search"
	defaultSteamURL  = "https://store.steampowered.com/api/storesearch/"
)

// requestTimeout bounds every outbound search request.
const requestTimeout = 10 * time.Second

// Result is one search hit. A non-empty Err marks an error entry; the
// other fields are then empty.
type Result struct {
	Title   string
	Link    string
	Snippet string
	Source  string
	Err     string
}

// Config holds Client construction parameters.
type Config struct {
	SerperAPIKey string
	TavilyAPIKey string
	Provider     string // initial provider; empty defaults to serper
	Logger       *slog.Logger
}

// Client performs web searches against the selected provider.
//
// The endpoint URL fields are exported for tests that point the client
// at an httptest server.
type Client struct {
	SerperURL string
	TavilyURL string
	SteamURL  string

	serperKey string
	tavilyKey string
	provider  string
	http      *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewClient creates a search client.
func NewClient(cfg Config) *Client {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderSerper
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		SerperURL: defaultSerperURL,
		TavilyURL: defaultTavilyURL,
		SteamURL:  defaultSteamURL,
		serperKey: cfg.SerperAPIKey,
		tavilyKey: cfg.TavilyAPIKey,
		provider:  provider,
		http:      &http.Client{Timeout: requestTimeout},
		// Storefront and search APIs both dislike bursts; one request
		// per 200ms with a small burst is well under every quota.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		logger:  logger,
	}
}

// SetProvider switches the active provider.
func (c *Client) SetProvider(provider string) error {
	switch provider {
	case ProviderSerper, ProviderTavily, ProviderSteam:
		c.provider = provider
		return nil
	default:
		return fmt.Errorf("unknown search provider %q", provider)
	}
}

// Provider returns the active provider name.
func (c *Client) Provider() string {
	return c.provider
}

// Search runs query against the active provider and returns up to count
// results. Never returns an error: failures surface as error entries.
func (c *Client) Search(ctx context.Context, query string, count int) []Result {
	if count <= 0 {
		count = 5
	}
	switch c.provider {
	case ProviderSteam:
		return c.searchSteam(ctx, query, count)
	case ProviderTavily:
		return c.searchTavily(ctx, query, count)
	default:
		return c.searchSerper(ctx, query, count)
	}
}

func (c *Client) searchSerper(ctx context.Context, query string, count int) []Result {
	if c.serperKey == "" {
		return []Result{{Err: "Serper API key not configured"}}
	}

	payload, err := json.Marshal(map[string]any{"q": query, "num": count})
	if err != nil {
		return []Result{{Err: fmt.Sprintf("Search failed: %v", err)}}
	}

	body, err := c.post(ctx, c.SerperURL, payload, map[string]string{"X-API-KEY": c.serperKey})
	if err != nil {
		c.logger.Warn("serper search failed", "query", query, "error", err)
		return []Result{{Err: fmt.Sprintf("Search failed: %v", err)}}
	}

	var resp struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return []Result{{Err: fmt.Sprintf("Search failed: %v", err)}}
	}

	results := make([]Result, 0, len(resp.Organic))
	for _, r := range resp.Organic {
		results = append(results, Result{
			Title:   r.Title,
			Link:    r.Link,
			Snippet: r.Snippet,
			Source:  ProviderSerper,
		})
	}
	return results
}

func (c *Client) searchTavily(ctx context.Context, query string, count int) []Result {
	if c.tavilyKey == "" {
		return []Result{{Err: "Tavily API key not configured"}}
	}

	payload, err := json.Marshal(map[string]any{
		"api_key":      c.tavilyKey,
		"query":        query,
		"max_results":  count,
		"search_depth": "basic",
	})
	if err != nil {
		return []Result{{Err: fmt.Sprintf("Search failed: %v", err)}}
	}

	body, err := c.post(ctx, c.TavilyURL, payload, nil)
	if err != nil {
		c.logger.Warn("tavily search failed", "query", query, "error", err)
		return []Result{{Err: fmt.Sprintf("Search failed: %v", err)}}
	}

	var resp struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return []Result{{Err: fmt.Sprintf("Search failed: %v", err)}}
	}

	results := make([]Result, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, Result{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: r.Content,
			Source:  ProviderTavily,
		})
	}
	return results
}

func (c *Client) searchSteam(ctx context.Context, query string, count int) []Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return []Result{{Err: fmt.Sprintf("Steam search failed: %v", err)}}
	}

	q := url.Values{"term": {query}, "l": {"english"}, "cc": {"us"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SteamURL+"?"+q.Encode(), nil)
	if err != nil {
		return []Result{{Err: fmt.Sprintf("Steam search failed: %v", err)}}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("steam search failed", "query", query, "error", err)
		return []Result{{Err: fmt.Sprintf("Steam search failed: %v", err)}}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return []Result{{Err: fmt.Sprintf("Steam search failed: unexpected status %d", resp.StatusCode)}}
	}

	var payload struct {
		Items []struct {
			ID    int    `json:"id"`
			Name  string `json:"name"`
			Price struct {
				FinalFormatted string `json:"final_formatted"`
			} `json:"price"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return []Result{{Err: fmt.Sprintf("Steam search failed: %v", err)}}
	}

	items := payload.Items
	if len(items) > count {
		items = items[:count]
	}
	results := make([]Result, 0, len(items))
	for _, g := range items {
		price := g.Price.FinalFormatted
		if price == "" {
			price = "N/A"
		}
		results = append(results, Result{
			Title:   g.Name,
			Link:    fmt.Sprintf("https://store.steampowered.com/app/%d", g.ID),
			Snippet: "Price: " + price,
			Source:  ProviderSteam,
		})
	}
	return results
}

// post sends a JSON POST and returns the response body.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
