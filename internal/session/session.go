// Package session records agent runs as audit artifacts. Conversation
// state is never restored from these files; they exist for inspection
// after the fact.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status constants for sessions.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Kind constants describing what produced the session.
const (
	KindChat = "chat"
	KindRun  = "run"
	KindEval = "eval"
)

// Event types for the session log
const (
	EventUser       = "user"        // User/prompt message to LLM
	EventAssistant  = "assistant"   // LLM response
	EventToolCall   = "tool_call"   // Tool invocation
	EventToolResult = "tool_result" // Tool result (fed back to LLM)
	EventClear      = "clear"       // Conversation reset to preamble
)

// Session represents one recorded agent run.
type Session struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt,omitempty"`
	Workspace string    `json:"workspace,omitempty"`
	Status    string    `json:"status"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event represents a single entry in the session log, in chronological
// order.
type Event struct {
	Type       string                 `json:"type"`
	Content    string                 `json:"content,omitempty"`
	Tool       string                 `json:"tool,omitempty"`
	Args       map[string]interface{} `json:"args,omitempty"`
	Error      string                 `json:"error,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// Store is the interface for session persistence.
type Store interface {
	Save(sess *Session) error
	Load(id string) (*Session, error)
}

// Manager manages session lifecycle over a Store.
type Manager struct {
	store Store
	mu    sync.Mutex
}

// NewManager creates a new session manager.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Create creates a new running session.
func (m *Manager) Create(kind, prompt, workspace string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		Prompt:    prompt,
		Workspace: workspace,
		Status:    StatusRunning,
		Events:    []Event{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.Save(sess); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return sess, nil
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	return m.store.Load(id)
}

// Complete marks a session as complete.
func (m *Manager) Complete(id string, result string) error {
	return m.finish(id, StatusComplete, result, "")
}

// Fail marks a session as failed.
func (m *Manager) Fail(id string, errMsg string) error {
	return m.finish(id, StatusFailed, "", errMsg)
}

func (m *Manager) finish(id, status, result, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Load(id)
	if err != nil {
		return err
	}

	sess.Status = status
	sess.Result = result
	sess.Error = errMsg
	sess.UpdatedAt = time.Now()

	return m.store.Save(sess)
}

// AddEvent appends an event to the session's chronological log.
func (m *Manager) AddEvent(id string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Load(id)
	if err != nil {
		return err
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	sess.Events = append(sess.Events, event)
	sess.UpdatedAt = time.Now()

	return m.store.Save(sess)
}

// --- FileStore ---

// FileStore stores sessions as JSON files, one per session.
type FileStore struct {
	dir string
}

// NewFileStore creates a new file store.
func NewFileStore(dir string) *FileStore {
	os.MkdirAll(dir, 0o755)
	return &FileStore{dir: dir}
}

// Save saves a session with an atomic temp-write plus rename.
func (s *FileStore) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	filename := filepath.Join(s.dir, sess.ID+".json")
	tmpFile := filename + ".tmp"

	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// Load loads a session from its JSON file.
func (s *FileStore) Load(id string) (*Session, error) {
	filename := filepath.Join(s.dir, id+".json")

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}
