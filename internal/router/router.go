// Package router classifies an in-domain message and decides which data
// source backs the reply: none, a game-store lookup or a web search.
//
// Classification is substring matching over fixed keyword lists,
// evaluated in strict priority order; first match wins. The vocabulary
// and priority live entirely behind this package so they can change
// without touching the session controller.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prachya/gamesage/internal/search"
	"github.com/prachya/gamesage/internal/steam"
)

// Mode identifies the downstream handling strategy for a turn.
type Mode int

const (
	// ModeDirect sends the payload to the language model (or passes it
	// through when no model is configured).
	ModeDirect Mode = iota

	// ModeStore means the payload is already a final answer built from
	// store data; no model pass is needed.
	ModeStore

	// ModeSearch means the payload embeds web search results and still
	// needs a model pass to summarize.
	ModeSearch
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeStore:
		return "store"
	case ModeSearch:
		return "search"
	default:
		return "direct"
	}
}

// Decision is the router's output for one message.
type Decision struct {
	Mode           Mode
	Payload        string
	UsedEnrichment bool
}

// GameStore is the store collaborator contract the router consumes.
type GameStore interface {
	// GameCard resolves a title and returns its formatted card.
	// Failure classes: steam.ErrNotFound, steam.ErrMalformedPayload,
	// anything else is a fetch failure.
	GameCard(ctx context.Context, name string) (string, error)
}

// WebSearcher is the search collaborator contract the router consumes.
type WebSearcher interface {
	Search(ctx context.Context, query string, count int) []search.Result
}

// gameTitles are the known title keywords. Multi-word titles included;
// the first entry found as a substring binds the game name.
var gameTitles = []string{
	"gta", "fortnite", "valorant", "call of duty", "cod", "pubg",
	"elden ring", "cyberpunk", "palworld", "counter strike", "cs2",
	"roblox", "minecraft", "overwatch", "apex", "dota", "league of legends",
	"lol", "genshin", "starfield", "battlefield", "red dead", "hollow knight",
}

// priceWords trigger the store rule when a title is bound.
var priceWords = []string{
	"ราคา", "price", "ลดราคา", "sale", "discount", "cost", "ซื้อ",
	"steam", "download", "โหลด",
}

// generalWords trigger the general-info rule when a title is bound.
var generalWords = []string{
	"คืออะไร", "รู้จัก", "แนว", "เกี่ยวกับ", "review", "รีวิว",
	"สนุกไหม", "ดีไหม", "what is", "tell me about",
}

// trendWords trigger the web search rule; no bound title required.
var trendWords = []string{
	"top games", "เกมมาแรง", "ยอดนิยม", "popular", "trending",
	"best selling", "most played", "update", "news", "ออกใหม่",
	"เปิดตัว", "เกมใหม่",
}

// User-facing store lookup failure messages, one per failure class.
const (
	msgTitleNotFound  = "❌ ไม่พบเกมนี้ใน Steam Store."
	msgDetailsInvalid = "❌ ไม่พบข้อมูลเกมใน Steam Store."
	msgFetchFailed    = "⚠️ ไม่สามารถดึงข้อมูลเกมจาก Steam ได้."
)

// Config holds Router construction parameters.
type Config struct {
	Store       GameStore
	Searcher    WebSearcher
	ResultCount int // search results per query; <=0 defaults to 5
	Logger      *slog.Logger
}

// validate checks required collaborators.
func (cfg Config) validate() error {
	if cfg.Store == nil {
		return errors.New("game store is required")
	}
	if cfg.Searcher == nil {
		return errors.New("web searcher is required")
	}
	return nil
}

// Router is the stateless intent classifier.
type Router struct {
	store       GameStore
	searcher    WebSearcher
	resultCount int
	logger      *slog.Logger
}

// New creates a Router.
func New(cfg Config) (*Router, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("router config: %w", err)
	}
	if cfg.ResultCount <= 0 {
		cfg.ResultCount = 5
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Router{
		store:       cfg.Store,
		searcher:    cfg.Searcher,
		resultCount: cfg.ResultCount,
		logger:      cfg.Logger,
	}, nil
}

// Route classifies text and produces the decision for this turn.
// When hasModel is false the router degrades to a direct pass-through:
// no enrichment can be summarized without an inference collaborator.
func (r *Router) Route(ctx context.Context, text string, hasModel bool) Decision {
	if !hasModel {
		return Decision{Mode: ModeDirect, Payload: text}
	}

	lower := strings.ToLower(text)

	var gameName string
	for _, title := range gameTitles {
		if strings.Contains(lower, title) {
			gameName = title
			break
		}
	}

	switch {
	case gameName != "" && containsAny(lower, priceWords):
		return r.routeStore(ctx, text, gameName)

	case gameName != "" && containsAny(lower, generalWords):
		payload := fmt.Sprintf(
			"ผู้ใช้ถามเกี่ยวกับเกม: %s\n\n"+
				"ให้ตอบโดยไม่ต้องใช้ Steam API "+
				"อธิบายว่าเกมนี้คือเกมอะไร แนวไหน และเนื้อหาคร่าว ๆ เป็นภาษาไทย อ่านเข้าใจง่าย",
			text,
		)
		r.logger.Debug("routed general-info question", "game", gameName)
		return Decision{Mode: ModeDirect, Payload: payload}

	case containsAny(lower, trendWords):
		return r.routeSearch(ctx, text)

	default:
		return Decision{Mode: ModeDirect, Payload: text}
	}
}

// routeStore builds the final answer from a store lookup.
func (r *Router) routeStore(ctx context.Context, text, gameName string) Decision {
	card, err := r.store.GameCard(ctx, gameName)
	if err != nil {
		card = r.lookupFailureMessage(gameName, err)
	}

	// Literal reference behavior: an unavailable price is relabeled as
	// free. Likely a mislabel when price data is merely missing, kept
	// as-is. Newlines become markdown paragraph breaks.
	card = strings.ReplaceAll(card, "ราคา: N/A", "ราคา: Free")
	card = strings.ReplaceAll(card, "\n", "  \n")

	payload := fmt.Sprintf(
		"ผู้ใช้ถามเกี่ยวกับราคาเกม: %s\n\nข้อมูลล่าสุดจาก Steam API:\n%s",
		text, card,
	)
	r.logger.Debug("routed store lookup", "game", gameName)
	return Decision{Mode: ModeStore, Payload: payload, UsedEnrichment: true}
}

// lookupFailureMessage maps a structured store error to its distinct
// user-facing message. This is the boundary where errors become text.
func (r *Router) lookupFailureMessage(gameName string, err error) string {
	switch {
	case errors.Is(err, steam.ErrNotFound):
		r.logger.Info("game not found in store", "game", gameName)
		return msgTitleNotFound
	case errors.Is(err, steam.ErrMalformedPayload):
		r.logger.Warn("malformed store details payload", "game", gameName, "error", err)
		return msgDetailsInvalid
	default:
		r.logger.Warn("store details fetch failed", "game", gameName, "error", err)
		return msgFetchFailed
	}
}

// routeSearch wraps web search results in a summarize instruction.
func (r *Router) routeSearch(ctx context.Context, text string) Decision {
	results := r.searcher.Search(ctx, text, r.resultCount)
	payload := fmt.Sprintf(
		"User Query: %s\n\n"+
			"I searched the web and found:\n%s\n"+
			"สรุปข้อมูลนี้เป็นภาษาไทยให้อ่านเข้าใจง่าย เหมือนข่าวเกม",
		text, search.Format(results),
	)
	r.logger.Debug("routed web search", "results", len(results))
	return Decision{Mode: ModeSearch, Payload: payload, UsedEnrichment: true}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
