// Package config loads provider settings for the agent runtime.
//
// Settings merge in a fixed order: built-in defaults, then the user file
// (~/.squire/settings.json), then the project file (.squire/settings.json),
// then environment variables. Loading happens once at startup; the resulting
// value is passed explicitly into client constructors and never re-read.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ostglass/squire"
)

// Provider identifiers accepted in settings.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Environment variables that override file settings. API keys for hosted
// providers are not configured here; their SDKs read the standard variables
// (OPENAI_API_KEY, ANTHROPIC_API_KEY) themselves.
const (
	EnvProvider = "SQUIRE_PROVIDER"
	EnvBaseURL  = "SQUIRE_BASE_URL"
	EnvModel    = "SQUIRE_MODEL"
)

const (
	settingsDir  = ".squire"
	settingsFile = "settings.json"
)

// Settings holds the resolved provider configuration.
type Settings struct {
	Provider string `json:"provider,omitempty"`
	BaseURL  string `json:"base,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Default returns settings with every field at its built-in default.
func Default() *Settings {
	return &Settings{
		Provider: ProviderOllama,
		BaseURL:  squire.DefaultBaseURL,
		Model:    squire.DefaultModel,
	}
}

// DefaultPaths returns the settings files consulted by Load, in merge order.
func DefaultPaths(projectDir string) []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, settingsDir, settingsFile))
	}
	if projectDir != "" {
		paths = append(paths, filepath.Join(projectDir, settingsDir, settingsFile))
	}
	return paths
}

// Load resolves settings for the given project directory. A missing settings
// file is fine; a malformed one is an error, since silently ignoring a file
// the user wrote hides misconfiguration. A .env file in the working directory
// is applied first when present.
func Load(projectDir string) (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{}
	for _, path := range DefaultPaths(projectDir) {
		if err := s.mergeFile(path); err != nil {
			return nil, err
		}
	}
	s.mergeEnv()
	s.applyDefaults()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate reports whether the provider is one this build knows how to talk
// to.
func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic:
		return nil
	default:
		return fmt.Errorf("config: unknown provider %q", s.Provider)
	}
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings %s: %w", path, err)
	}

	var in Settings
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}
	s.merge(in)
	return nil
}

func (s *Settings) merge(in Settings) {
	if in.Provider != "" {
		s.Provider = in.Provider
	}
	if in.BaseURL != "" {
		s.BaseURL = in.BaseURL
	}
	if in.Model != "" {
		s.Model = in.Model
	}
}

func (s *Settings) mergeEnv() {
	if v := os.Getenv(EnvProvider); v != "" {
		s.Provider = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		s.Model = v
	}
}

func (s *Settings) applyDefaults() {
	if s.Provider == "" {
		s.Provider = ProviderOllama
	}
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")

	// Hosted providers carry their own endpoint and model defaults; an
	// empty BaseURL or Model there means "use the SDK default", so only
	// the local provider is filled in here.
	if s.Provider == ProviderOllama {
		if s.BaseURL == "" {
			s.BaseURL = squire.DefaultBaseURL
		}
		if s.Model == "" {
			s.Model = squire.DefaultModel
		}
	}
}
