// Package config holds user settings (YAML, user-edited) and small
// best-effort TUI state persisted per deck.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"inkdeck/internal/model"
)

const (
	dataDirName      = ".inkdeck"
	settingsFileName = "settings.yaml"
)

type Settings struct {
	// Sort is the default sort mode for new sessions.
	Sort string `yaml:"sort,omitempty"`

	// Appearance selects the TUI palette ("default", "mono").
	Appearance string `yaml:"appearance,omitempty"`

	// DataDir overrides deck discovery.
	DataDir string `yaml:"dataDir,omitempty"`
}

func (s Settings) SortMode() model.SortMode {
	m := model.SortMode(strings.TrimSpace(s.Sort))
	if !m.Valid() {
		return model.SortManual
	}
	return m
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "inkdeck"), nil
}

func settingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// LoadSettings is best effort: a missing or unreadable file yields defaults.
func LoadSettings() Settings {
	path, err := settingsPath()
	if err != nil {
		return Settings{}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}
	}
	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}
	}
	return s
}

func SaveSettings(s Settings) error {
	path, err := settingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// DiscoverDataDir walks upward from start looking for a .inkdeck directory.
func DiscoverDataDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dataDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDataDir resolves the deck directory: explicit override first, then
// upward discovery, then a fresh .inkdeck under the working directory.
func DefaultDataDir(override string) (string, error) {
	if o := strings.TrimSpace(override); o != "" {
		return o, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDataDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dataDirName), nil
}

var errNoDir = errors.New("empty data dir")
