// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Local persistence configuration
	Storage StorageConfig `toml:"storage"`

	// Collection store behavior
	Collection CollectionConfig `toml:"collection"`

	// External card database client
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Rules document location
	Rules RulesConfig `toml:"rules"`

	// Universes available for browsing
	Universes []Universe `toml:"universe"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// StorageConfig contains local database settings.
type StorageConfig struct {
	Path string `toml:"path"` // Path to the SQLite database file
}

// CollectionConfig contains collection store settings.
type CollectionConfig struct {
	DebounceDelay string `toml:"debounce_delay"` // Delay before persisting settled state (e.g., "1s")
}

// ScryfallConfig contains card database client settings.
type ScryfallConfig struct {
	UserAgent string `toml:"user_agent"`
}

// RulesConfig contains rules document settings.
type RulesConfig struct {
	Path string `toml:"path"` // Path to the comprehensive rules text file
}

// Universe describes a browsable dataset partition: an ordered list of sets
// plus an optional predefined deck dataset.
type Universe struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Sets        []Set  `toml:"sets"`
	DeckDataset string `toml:"deck_dataset"` // Path to the flat deck rows JSON (empty = no decks)
	DeckSet     string `toml:"deck_set"`     // Set code holding deck theme cards
	WatchDecks  bool   `toml:"watch_decks"`  // Re-hydrate when the dataset file changes
}

// Set identifies one set within a universe. Order in the universe's set
// list defines release order for sorting.
type Set struct {
	Code string `toml:"code"`
	Name string `toml:"name"`
}

// SetRank returns the position of a set code within the universe's
// configured set order. Unknown sets rank after all known sets.
func (u *Universe) SetRank(code string) int {
	for i, s := range u.Sets {
		if s.Code == code {
			return i
		}
	}
	return len(u.Sets) + 1
}

// SetCodes returns the universe's set codes in configured order.
func (u *Universe) SetCodes() []string {
	codes := make([]string, len(u.Sets))
	for i, s := range u.Sets {
		codes[i] = s.Code
	}
	return codes
}

// FindUniverse returns the universe with the given id.
func (c *Config) FindUniverse(id string) (*Universe, bool) {
	for i := range c.Universes {
		if c.Universes[i].ID == id {
			return &c.Universes[i], true
		}
	}
	return nil, false
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Collection: CollectionConfig{
			DebounceDelay: "1s",
		},
		Scryfall: ScryfallConfig{
			UserAgent: "CardBinder/1.0",
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cardbinder")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from the given path. Returns default
// config if the file doesn't exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if _, err := time.ParseDuration(c.Collection.DebounceDelay); err != nil {
		return fmt.Errorf("invalid debounce delay %q: %w", c.Collection.DebounceDelay, err)
	}

	seen := make(map[string]bool)
	for _, u := range c.Universes {
		if u.ID == "" {
			return fmt.Errorf("universe with empty id")
		}
		if seen[u.ID] {
			return fmt.Errorf("duplicate universe id %q", u.ID)
		}
		seen[u.ID] = true
		if len(u.Sets) == 0 {
			return fmt.Errorf("universe %q has no sets", u.ID)
		}
	}

	return nil
}

// GetDebounceDelay returns the collection debounce delay as a duration.
func (c *Config) GetDebounceDelay() (time.Duration, error) {
	return time.ParseDuration(c.Collection.DebounceDelay)
}
