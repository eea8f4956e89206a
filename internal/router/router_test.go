package router

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prachya/gamesage/internal/log"
	"github.com/prachya/gamesage/internal/search"
	"github.com/prachya/gamesage/internal/steam"
)

// fakeStore records GameCard calls and returns a scripted card or error.
type fakeStore struct {
	card  string
	err   error
	calls []string
}

func (f *fakeStore) GameCard(ctx context.Context, name string) (string, error) {
	f.calls = append(f.calls, name)
	return f.card, f.err
}

// fakeSearcher records queries and returns scripted results.
type fakeSearcher struct {
	results []search.Result
	calls   []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, count int) []search.Result {
	f.calls = append(f.calls, query)
	return f.results
}

func newTestRouter(t *testing.T, store *fakeStore, searcher *fakeSearcher) *Router {
	t.Helper()
	r, err := New(Config{Store: store, Searcher: searcher, Logger: log.NewNop()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestNew_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Searcher: &fakeSearcher{}}); err == nil {
		t.Error("New() without store: error = nil, want error")
	}
	if _, err := New(Config{Store: &fakeStore{}}); err == nil {
		t.Error("New() without searcher: error = nil, want error")
	}
}

func TestRouter_Route_NoModelPassesThrough(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	searcher := &fakeSearcher{}
	r := newTestRouter(t, store, searcher)

	// Text that would otherwise hit the store rule.
	dec := r.Route(context.Background(), "GTA ราคาเท่าไหร่", false)

	if dec.Mode != ModeDirect || dec.Payload != "GTA ราคาเท่าไหร่" || dec.UsedEnrichment {
		t.Errorf("Route() = %+v, want direct pass-through", dec)
	}
	if len(store.calls) != 0 || len(searcher.calls) != 0 {
		t.Error("collaborators must not be called without a model client")
	}
}

func TestRouter_Route_StoreRule(t *testing.T) {
	t.Parallel()

	store := &fakeStore{card: "🎮 **Grand Theft Auto V**\n💰 ราคา: $29.99\n🔗 link"}
	searcher := &fakeSearcher{}
	r := newTestRouter(t, store, searcher)

	dec := r.Route(context.Background(), "GTA ราคาเท่าไหร่", true)

	if dec.Mode != ModeStore {
		t.Fatalf("Mode = %v, want store", dec.Mode)
	}
	if !dec.UsedEnrichment {
		t.Error("UsedEnrichment = false, want true")
	}
	if !strings.Contains(dec.Payload, "ราคา: $29.99") {
		t.Errorf("payload missing price field:\n%s", dec.Payload)
	}
	if len(store.calls) != 1 || store.calls[0] != "gta" {
		t.Errorf("store calls = %v, want bound title %q", store.calls, "gta")
	}
	if len(searcher.calls) != 0 {
		t.Error("searcher must not be called on the store rule")
	}
	// Newlines rewritten to markdown paragraph breaks.
	if !strings.Contains(dec.Payload, "  \n") {
		t.Errorf("payload newlines not rewritten:\n%q", dec.Payload)
	}
}

func TestRouter_Route_StorePriceRewrite(t *testing.T) {
	t.Parallel()

	store := &fakeStore{card: "🎮 **Dota 2**\n💰 ราคา: N/A"}
	r := newTestRouter(t, store, &fakeSearcher{})

	dec := r.Route(context.Background(), "dota ราคาเท่าไหร่", true)

	if strings.Contains(dec.Payload, "ราคา: N/A") {
		t.Errorf("payload still carries N/A price:\n%s", dec.Payload)
	}
	if !strings.Contains(dec.Payload, "ราคา: Free") {
		t.Errorf("payload missing rewritten price:\n%s", dec.Payload)
	}
}

func TestRouter_Route_StoreFailureMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"title not found", steam.ErrNotFound, "❌ ไม่พบเกมนี้ใน Steam Store."},
		{"malformed details", steam.ErrMalformedPayload, "❌ ไม่พบข้อมูลเกมใน Steam Store."},
		{"fetch failed", fmt.Errorf("steam details 42: unexpected status 502"), "⚠️ ไม่สามารถดึงข้อมูลเกมจาก Steam ได้."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeStore{err: fmt.Errorf("wrapped: %w", tt.err)}
			r := newTestRouter(t, store, &fakeSearcher{})

			dec := r.Route(context.Background(), "GTA ราคาเท่าไหร่", true)

			if dec.Mode != ModeStore || !dec.UsedEnrichment {
				t.Errorf("Route() = %+v, want store mode with enrichment", dec)
			}
			if !strings.Contains(dec.Payload, tt.want) {
				t.Errorf("payload missing %q:\n%s", tt.want, dec.Payload)
			}
		})
	}
}

func TestRouter_Route_GeneralInfoRule(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	searcher := &fakeSearcher{}
	r := newTestRouter(t, store, searcher)

	dec := r.Route(context.Background(), "เกม GTA คืออะไร", true)

	if dec.Mode != ModeDirect {
		t.Fatalf("Mode = %v, want direct", dec.Mode)
	}
	if dec.UsedEnrichment {
		t.Error("UsedEnrichment = true, want false for general-info rule")
	}
	if !strings.Contains(dec.Payload, "ให้ตอบโดยไม่ต้องใช้ Steam API") {
		t.Errorf("payload missing describe instruction:\n%s", dec.Payload)
	}
	if len(store.calls) != 0 || len(searcher.calls) != 0 {
		t.Error("general-info rule must not call any collaborator")
	}
}

func TestRouter_Route_TrendRule(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Top 10", Snippet: "ranking", Link: "https://a"},
		{Title: "Charts", Snippet: "data", Link: "https://b"},
	}}
	r := newTestRouter(t, &fakeStore{}, searcher)

	dec := r.Route(context.Background(), "top games เดือนนี้", true)

	if dec.Mode != ModeSearch {
		t.Fatalf("Mode = %v, want search", dec.Mode)
	}
	if !dec.UsedEnrichment {
		t.Error("UsedEnrichment = false, want true")
	}
	if !strings.Contains(dec.Payload, "1. **Top 10**") || !strings.Contains(dec.Payload, "2. **Charts**") {
		t.Errorf("payload missing numbered results block:\n%s", dec.Payload)
	}
	if !strings.Contains(dec.Payload, "สรุปข้อมูลนี้เป็นภาษาไทย") {
		t.Errorf("payload missing summarize instruction:\n%s", dec.Payload)
	}
	if len(searcher.calls) != 1 || searcher.calls[0] != "top games เดือนนี้" {
		t.Errorf("searcher calls = %v, want raw text query", searcher.calls)
	}
}

func TestRouter_Route_TrendRuleRendersErrorEntries(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: []search.Result{{Err: "Serper API key not configured"}}}
	r := newTestRouter(t, &fakeStore{}, searcher)

	dec := r.Route(context.Background(), "เกมใหม่ออกอะไรบ้าง news", true)

	if dec.Mode != ModeSearch {
		t.Fatalf("Mode = %v, want search", dec.Mode)
	}
	if !strings.Contains(dec.Payload, "❌ Serper API key not configured") {
		t.Errorf("payload missing collaborator-unavailable entry:\n%s", dec.Payload)
	}
}

func TestRouter_Route_PriorityOrder(t *testing.T) {
	t.Parallel()

	// Text matching store, general and trend rules at once: the store
	// rule must win.
	store := &fakeStore{card: "card"}
	searcher := &fakeSearcher{}
	r := newTestRouter(t, store, searcher)

	dec := r.Route(context.Background(), "gta ราคา รีวิว trending", true)

	if dec.Mode != ModeStore {
		t.Errorf("Mode = %v, want store rule to win", dec.Mode)
	}
	if len(searcher.calls) != 0 {
		t.Error("no fallthrough: searcher must not be called once the store rule matches")
	}
}

func TestRouter_Route_TrendWithoutTitle(t *testing.T) {
	t.Parallel()

	// Trend rule is independent of a bound title, but a bound title
	// without price/general words still falls through to trend.
	searcher := &fakeSearcher{}
	r := newTestRouter(t, &fakeStore{}, searcher)

	dec := r.Route(context.Background(), "fortnite update", true)

	if dec.Mode != ModeSearch {
		t.Errorf("Mode = %v, want search (title bound but only trend word matched)", dec.Mode)
	}
}

func TestRouter_Route_Fallback(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	searcher := &fakeSearcher{}
	r := newTestRouter(t, store, searcher)

	text := "ช่วยแนะนำเกมแนว survival หน่อย"
	dec := r.Route(context.Background(), text, true)

	if dec.Mode != ModeDirect || dec.Payload != text || dec.UsedEnrichment {
		t.Errorf("Route() = %+v, want untouched direct fallback", dec)
	}
	if len(store.calls) != 0 || len(searcher.calls) != 0 {
		t.Error("fallback must not call any collaborator")
	}
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode Mode
		want string
	}{
		{ModeDirect, "direct"},
		{ModeStore, "store"},
		{ModeSearch, "search"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
