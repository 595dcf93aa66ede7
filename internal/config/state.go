package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const stateFileName = "tui_state.json"

// State stores small user-facing UI state for restoring the last screen on
// relaunch. It lives inside the deck directory so it is naturally scoped per
// deck, and it is intentionally best effort: callers tolerate missing or
// invalid data.
type State struct {
	Version int `json:"version"`

	SelectedFragmentID string `json:"selectedFragmentId,omitempty"`
	Kind               string `json:"kind,omitempty"`
	Sort               string `json:"sort,omitempty"`
	ShowPreview        bool   `json:"showPreview,omitempty"`
}

func statePath(dataDir string) (string, error) {
	if strings.TrimSpace(dataDir) == "" {
		return "", errNoDir
	}
	return filepath.Join(dataDir, stateFileName), nil
}

func LoadState(dataDir string) State {
	path, err := statePath(dataDir)
	if err != nil {
		return State{Version: 1}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return State{Version: 1}
	}
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{Version: 1}
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return s
}

func SaveState(dataDir string, s State) error {
	path, err := statePath(dataDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	s.Version = 1
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
