package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prachya/gamesage/internal/log"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "chat_memory.json"), log.NewNop())
}

func TestStore_Load_MissingFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	msgs, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Load() = %d messages, want 0", len(msgs))
	}
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	want := []Message{
		{Role: RoleUser, Content: "GTA ราคาเท่าไหร่"},
		{Role: RoleAssistant, Content: "🎮 **Grand Theft Auto V**", UsedEnrichment: true},
		{Role: RoleUser, Content: "ขอบคุณครับ"},
		{Role: RoleAssistant, Content: "ยินดีครับ"},
	}

	if err := s.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("Load() = %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStore_Load_KnownLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat_memory.json")
	raw := `[{"role":"user","content":"hi"}]`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, log.NewNop())
	msgs, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("Load() = %d messages, want 1", len(msgs))
	}
	want := Message{Role: RoleUser, Content: "hi"}
	if msgs[0] != want {
		t.Errorf("Load()[0] = %+v, want %+v", msgs[0], want)
	}
}

func TestStore_Load_MalformedJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chat_memory.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, log.NewNop())
	msgs, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for malformed content", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Load() = %d messages, want 0", len(msgs))
	}
}

func TestStore_Save_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "chat_memory.json")
	s := NewStore(path, log.NewNop())

	if err := s.Save([]Message{{Role: RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("stat after Save: %v", err)
	}
}

func TestStore_Save_NilWritesEmptyArray(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Save(nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("persisted content = %q, want %q", data, "[]")
	}
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Save([]Message{{Role: RoleUser, Content: "hi"}}); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("file still exists after Clear: %v", err)
	}

	// Idempotent: clearing again is not an error.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v, want nil", err)
	}

	msgs, err := s.Load()
	if err != nil {
		t.Fatalf("Load() after Clear error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("Load() after Clear = %d messages, want 0", len(msgs))
	}
}
