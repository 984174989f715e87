package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	return NewManager(NewFileStore(dir)), dir
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)

	sess, err := m.Create(KindRun, "do the thing", "/tmp/ws")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session needs an ID")
	}
	if sess.Status != StatusRunning {
		t.Errorf("expected running status, got %q", sess.Status)
	}

	loaded, err := m.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Kind != KindRun || loaded.Prompt != "do the thing" || loaded.Workspace != "/tmp/ws" {
		t.Errorf("roundtrip lost fields: %+v", loaded)
	}
}

func TestUniqueIDs(t *testing.T) {
	m, _ := newTestManager(t)

	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := m.Create(KindRun, "", "")
		if err != nil {
			t.Fatal(err)
		}
		if ids[sess.ID] {
			t.Fatalf("duplicate session ID: %s", sess.ID)
		}
		ids[sess.ID] = true
	}
}

func TestEventLogRoundtrip(t *testing.T) {
	m, _ := newTestManager(t)
	sess, err := m.Create(KindChat, "", "/tmp/ws")
	if err != nil {
		t.Fatal(err)
	}

	events := []Event{
		{Type: EventUser, Content: "hello"},
		{Type: EventToolCall, Tool: "write_file", Args: map[string]interface{}{"path": "a.txt"}},
		{Type: EventToolResult, Tool: "write_file", Content: "Wrote 2 bytes to a.txt", DurationMs: 3},
		{Type: EventAssistant, Content: "done"},
	}
	for _, e := range events {
		if err := m.AddEvent(sess.ID, e); err != nil {
			t.Fatalf("AddEvent failed: %v", err)
		}
	}

	loaded, err := m.Get(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(loaded.Events))
	}
	for i, want := range []string{EventUser, EventToolCall, EventToolResult, EventAssistant} {
		if loaded.Events[i].Type != want {
			t.Errorf("event %d: expected type %q, got %q", i, want, loaded.Events[i].Type)
		}
		if loaded.Events[i].Timestamp.IsZero() {
			t.Errorf("event %d: timestamp not stamped", i)
		}
	}
}

func TestCompleteAndFail(t *testing.T) {
	m, _ := newTestManager(t)

	sess, _ := m.Create(KindRun, "p", "")
	if err := m.Complete(sess.ID, "final answer"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	loaded, _ := m.Get(sess.ID)
	if loaded.Status != StatusComplete || loaded.Result != "final answer" {
		t.Errorf("unexpected completed session: %+v", loaded)
	}

	sess2, _ := m.Create(KindRun, "p", "")
	if err := m.Fail(sess2.ID, "provider unavailable"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	loaded2, _ := m.Get(sess2.ID)
	if loaded2.Status != StatusFailed || loaded2.Error != "provider unavailable" {
		t.Errorf("unexpected failed session: %+v", loaded2)
	}
}

func TestGetMissingSession(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Get("nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	m, dir := newTestManager(t)
	sess, err := m.Create(KindEval, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddEvent(sess.ID, Event{Type: EventUser, Content: "x"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, sess.ID+".json")); err != nil {
		t.Errorf("session file missing: %v", err)
	}
}
