// Package gate decides whether a message is about video games at all.
//
// The classifier is deliberately simple: a case-insensitive substring
// match against a fixed vocabulary of domain hints. Substring semantics
// are kept as-is ("ios" matches inside unrelated words), trading
// precision for recall.
package gate

import "strings"

// DefaultVocabulary holds the built-in domain hint tokens: platform
// names, genre abbreviations, well-known titles and generic game words
// (Thai and English).
var DefaultVocabulary = []string{
	// Generic
	"game", "games", "gamer", "gaming", "เกม", "เล่น",
	// Platforms and storefronts
	"steam", "epic games", "playstation", "ps4", "ps5", "xbox",
	"nintendo", "switch", "pc", "ios", "android", "console",
	// Genres
	"rpg", "fps", "moba", "mmo", "mmorpg", "battle royale",
	"roguelike", "esport", "e-sport", "speedrun",
	// Well-known titles
	"gta", "fortnite", "valorant", "call of duty", "cod", "pubg",
	"elden ring", "cyberpunk", "palworld", "counter strike", "cs2",
	"roblox", "minecraft", "overwatch", "apex", "dota",
	"league of legends", "genshin", "starfield", "battlefield",
	"red dead", "hollow knight", "zelda", "mario", "pokemon",
}

// Gate is the in/out-of-domain classifier.
type Gate struct {
	vocabulary []string
}

// New creates a Gate with the given hint vocabulary.
// A nil or empty vocabulary falls back to DefaultVocabulary.
func New(vocabulary []string) *Gate {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	return &Gate{vocabulary: vocabulary}
}

// InDomain reports whether text contains at least one domain hint.
// Pure function: no side effects, no failure modes.
func (g *Gate) InDomain(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range g.vocabulary {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
