package widget

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// NudgeStore remembers whether the first-visit hint was already dismissed.
type NudgeStore interface {
	Seen() (bool, error)
	MarkSeen() error
}

type nudgeState struct {
	HasSeenChatNudge bool `json:"hasSeenChatNudge"`
}

// FileNudgeStore keeps the flag in a small JSON file.
type FileNudgeStore struct {
	path string
	mu   sync.Mutex
}

// NewFileNudgeStore stores the flag at path; the directory is created on first write.
func NewFileNudgeStore(path string) *FileNudgeStore {
	return &FileNudgeStore{path: path}
}

// Seen reports false when the file does not exist yet.
func (s *FileNudgeStore) Seen() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading nudge flag: %w", err)
	}

	var state nudgeState
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, fmt.Errorf("decoding nudge flag: %w", err)
	}
	return state.HasSeenChatNudge, nil
}

// MarkSeen persists the flag.
func (s *FileNudgeStore) MarkSeen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating nudge dir: %w", err)
	}
	raw, err := json.Marshal(nudgeState{HasSeenChatNudge: true})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing nudge flag: %w", err)
	}
	return nil
}

// MemoryNudgeStore is a NudgeStore that forgets on exit.
type MemoryNudgeStore struct {
	mu   sync.Mutex
	seen bool
}

func (s *MemoryNudgeStore) Seen() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen, nil
}

func (s *MemoryNudgeStore) MarkSeen() error {
	s.mu.Lock()
	s.seen = true
	s.mu.Unlock()
	return nil
}
