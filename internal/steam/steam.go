// Package steam provides the game-store collaborator: title search,
// details fetch and card formatting against the Steam storefront API.
//
// Lookup failures are structured errors (ErrNotFound,
// ErrMalformedPayload, wrapped transport errors); rendering them to
// user-facing text is the router's job.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound indicates the title has no match in the store.
	ErrNotFound = errors.New("game not found in the steam store")

	// ErrMalformedPayload indicates the store responded but the details
	// envelope was absent or structurally unexpected.
	ErrMalformedPayload = errors.New("malformed app details payload")
)

// Default endpoint URLs, overridable for tests.
const (
	defaultSearchURL   = "https://store.steampowered.com/api/storesearch/"
	defaultDetailsURL  = "https://store.steampowered.com/api/appdetails"
	defaultFeaturedURL = "https://store.steampowered.com/api/featuredcategories/"
)

// requestTimeout bounds every outbound store request.
const requestTimeout = 10 * time.Second

// AppDetails is the subset of the store details payload the assistant
// renders.
type AppDetails struct {
	Name        string
	Price       string
	ReleaseDate string
	Genres      []string
	Description string
}

// TopGame is one entry from the storefront top-sellers list.
type TopGame struct {
	Name  string
	AppID int
}

// Client talks to the Steam storefront API.
//
// The endpoint URL fields are exported for tests that point the client
// at an httptest server.
type Client struct {
	SearchURL   string
	DetailsURL  string
	FeaturedURL string

	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a store client. A nil logger falls back to
// slog.Default().
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		SearchURL:   defaultSearchURL,
		DetailsURL:  defaultDetailsURL,
		FeaturedURL: defaultFeaturedURL,
		http:        &http.Client{Timeout: requestTimeout},
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		logger:      logger,
	}
}

// SearchGame resolves a title to a store app ID. Returns ErrNotFound
// when no item matches.
func (c *Client) SearchGame(ctx context.Context, name string) (int, error) {
	q := url.Values{"term": {name}, "l": {"english"}, "cc": {"us"}}
	var payload struct {
		Total int `json:"total"`
		Items []struct {
			ID int `json:"id"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, c.SearchURL+"?"+q.Encode(), &payload); err != nil {
		return 0, fmt.Errorf("steam search %q: %w", name, err)
	}

	if payload.Total == 0 || len(payload.Items) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return payload.Items[0].ID, nil
}

// appEnvelope mirrors the appdetails response: the payload is keyed by
// app ID with a success flag per entry.
type appEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Name          string `json:"name"`
		PriceOverview struct {
			FinalFormatted string `json:"final_formatted"`
		} `json:"price_overview"`
		Genres []struct {
			Description string `json:"description"`
		} `json:"genres"`
		ReleaseDate struct {
			Date string `json:"date"`
		} `json:"release_date"`
		ShortDescription string `json:"short_description"`
	} `json:"data"`
}

// Details fetches structured details for an app ID. Returns
// ErrMalformedPayload when the keyed envelope is missing or the store
// flags the entry unsuccessful.
func (c *Client) Details(ctx context.Context, appID int) (*AppDetails, error) {
	endpoint := fmt.Sprintf("%s?appids=%d&cc=us&l=english", c.DetailsURL, appID)
	var payload map[string]appEnvelope
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("steam details %d: %w", appID, err)
	}

	env, ok := payload[strconv.Itoa(appID)]
	if !ok || !env.Success {
		return nil, fmt.Errorf("%w: app %d", ErrMalformedPayload, appID)
	}

	d := &AppDetails{
		Name:        env.Data.Name,
		Price:       env.Data.PriceOverview.FinalFormatted,
		ReleaseDate: env.Data.ReleaseDate.Date,
		Description: env.Data.ShortDescription,
	}
	if d.Name == "" {
		d.Name = "Unknown Game"
	}
	if d.Price == "" {
		d.Price = "N/A"
	}
	if d.ReleaseDate == "" {
		d.ReleaseDate = "N/A"
	}
	for _, g := range env.Data.Genres {
		d.Genres = append(d.Genres, g.Description)
	}
	return d, nil
}

// FormatInfo renders the fixed multi-field game card.
func FormatInfo(appID int, d *AppDetails) string {
	storeURL := fmt.Sprintf("https://store.steampowered.com/app/%d/", appID)
	return fmt.Sprintf(
		"🎮 **%s**\n"+
			"💰 ราคา: %s\n"+
			"🗓️ วันที่วางจำหน่าย: %s\n"+
			"🏷️ แนวเกม: %s\n"+
			"📝 คำอธิบาย: %s\n"+
			"🔗 [ดูบน Steam](%s)",
		d.Name, d.Price, d.ReleaseDate, strings.Join(d.Genres, ", "), d.Description, storeURL,
	)
}

// GameCard resolves a title and returns its formatted card: search,
// details fetch, format. The distinct error classes pass through for
// the caller to render.
func (c *Client) GameCard(ctx context.Context, name string) (string, error) {
	appID, err := c.SearchGame(ctx, name)
	if err != nil {
		return "", err
	}

	details, err := c.Details(ctx, appID)
	if err != nil {
		return "", err
	}

	return FormatInfo(appID, details), nil
}

// TopSellers fetches up to count entries from the storefront
// top-sellers list.
func (c *Client) TopSellers(ctx context.Context, count int) ([]TopGame, error) {
	if count <= 0 {
		count = 10
	}
	var payload struct {
		TopSellers struct {
			Items []struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"items"`
		} `json:"top_sellers"`
	}
	if err := c.getJSON(ctx, c.FeaturedURL, &payload); err != nil {
		return nil, fmt.Errorf("steam top sellers: %w", err)
	}

	items := payload.TopSellers.Items
	if len(items) > count {
		items = items[:count]
	}
	games := make([]TopGame, 0, len(items))
	for _, g := range items {
		games = append(games, TopGame{Name: g.Name, AppID: g.ID})
	}
	return games, nil
}

// getJSON performs a rate-limited GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
