// Package memory persists the running conversation as a single JSON
// file: an indented UTF-8 array of messages, rewritten wholesale on
// every mutation so a reader always sees a complete snapshot.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Role constants define valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one conversation turn. Messages are immutable once
// appended; ordering is append order.
type Message struct {
	Role           string `json:"role"`
	Content        string `json:"content"`
	UsedEnrichment bool   `json:"used_enrichment,omitempty"`
}

// Store persists a conversation to a single JSON file.
//
// Store performs no locking: the session controller is the sole writer.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store backed by the file at path.
// A nil logger falls back to slog.Default().
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted conversation.
// A missing file or malformed JSON yields an empty conversation, not an
// error; malformed content is logged for diagnostics.
func (s *Store) Load() ([]Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading chat memory %s: %w", s.path, err)
	}

	var msgs []Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		s.logger.Warn("chat memory is malformed, starting empty", "path", s.path, "error", err)
		return nil, nil
	}
	return msgs, nil
}

// Save writes the whole conversation, replacing any previous content.
func (s *Store) Save(msgs []Message) error {
	if msgs == nil {
		msgs = []Message{}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating memory directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding chat memory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing chat memory %s: %w", s.path, err)
	}

	s.logger.Debug("saved chat memory", "path", s.path, "messages", len(msgs))
	return nil
}

// Clear removes the backing file. Clearing an absent file is not an
// error (idempotent).
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing chat memory %s: %w", s.path, err)
	}
	return nil
}
