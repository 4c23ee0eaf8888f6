// Package config provides the configuration structure for the anuvad client.
package config

import (
	"fmt"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"

	"github.com/anuvadml/anuvad/internal/catalog"
)

// Defaults applied after loading.
const (
	defaultBaseURL        = "http://localhost:8000"
	defaultTimeoutSeconds = 10
	defaultEngine         = "exec"
	defaultSubjectPrefix  = "anuvad"
)

// BackendConfig holds the translation service endpoint settings.
type BackendConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SpeechConfig holds the playback settings. Engine selects "exec" (local
// synthesizer binary) or "remote" (service-side synthesis plus a local
// player).
type SpeechConfig struct {
	Engine        string `toml:"engine"`
	SynthCommand  string `toml:"synth_command"`
	PlayerCommand string `toml:"player_command"`
	Notifications bool   `toml:"notifications"`
}

// NATSConfig holds the optional event publishing settings.
type NATSConfig struct {
	Enabled       bool   `toml:"enabled"`
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// LanguageConfig is one entry of the optional catalog override.
type LanguageConfig struct {
	Code        string `toml:"code"`
	DisplayName string `toml:"display_name"`
	SpeechCode  string `toml:"speech_code"`
}

// Config is the root configuration structure.
type Config struct {
	Backend   BackendConfig    `toml:"backend"`
	Speech    SpeechConfig     `toml:"speech"`
	NATS      NATSConfig       `toml:"nats"`
	Paths     PathsConfig      `toml:"paths"`
	Languages []LanguageConfig `toml:"languages"`
}

// Load loads the configuration for the anuvad client and applies defaults.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBaseURL
	}

	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = defaultTimeoutSeconds
	}

	if c.Speech.Engine == "" {
		c.Speech.Engine = defaultEngine
	}

	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = defaultSubjectPrefix
	}
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// Catalog builds the language catalog: the configured override when present,
// the reference catalog otherwise.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Languages) == 0 {
		return catalog.Default(), nil
	}

	languages := make([]catalog.Language, 0, len(c.Languages))
	for _, language := range c.Languages {
		languages = append(languages, catalog.Language{
			Code:        language.Code,
			DisplayName: language.DisplayName,
			SpeechCode:  language.SpeechCode,
		})
	}

	configured, err := catalog.New(languages)
	if err != nil {
		return nil, fmt.Errorf("invalid [[languages]] configuration: %w", err)
	}

	return configured, nil
}
