package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ErrNavigateNotConfigured is returned when the Navigate Chat connection
// settings are incomplete.
var ErrNavigateNotConfigured = errors.New("missing Navigate Chat API configuration. Set NAVIGATE_CHAT_API_URL, NAVIGATE_CHAT_EMAIL, and NAVIGATE_CHAT_PASSWORD environment variables")

type Config struct {
	DataDir        string `json:"data_dir"`
	OutputDir      string `json:"output_dir"`
	TranscriptsDir string `json:"transcripts_dir"`
	LogLevel       string `json:"log_level"`
	TokenizerModel string `json:"tokenizer_model"`
	Navigate       struct {
		BaseURL         string `json:"base_url"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		TokenTTLMinutes int    `json:"token_ttl_minutes"`
	} `json:"navigate"`
	Publish struct {
		Concurrency int `json:"concurrency"`
	} `json:"publish"`
	HTTP struct {
		Listen string `json:"listen"`
		Token  string `json:"token"`
	} `json:"http"`
}

// DefaultPath returns ~/.claude-code-compact/config.json.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".claude-code-compact", "config.json")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

func defaults() *Config {
	dataDir := filepath.Join(homeDir(), ".claude-code-compact")
	cfg := &Config{
		DataDir:        dataDir,
		OutputDir:      filepath.Join(dataDir, "visualizations"),
		TranscriptsDir: filepath.Join(homeDir(), ".claude", "projects"),
		LogLevel:       "info",
		TokenizerModel: "gpt-4",
	}
	cfg.Navigate.TokenTTLMinutes = 55
	cfg.Publish.Concurrency = 2
	cfg.HTTP.Listen = "127.0.0.1:8787"
	return cfg
}

func Load(path string) (*Config, error) {
	cfg := defaults()

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides file values from the environment (highest precedence).
func applyEnv(cfg *Config) {
	if v := os.Getenv("NAVIGATE_CHAT_API_URL"); v != "" {
		cfg.Navigate.BaseURL = v
	}
	if v := os.Getenv("NAVIGATE_CHAT_EMAIL"); v != "" {
		cfg.Navigate.Email = v
	}
	if v := os.Getenv("NAVIGATE_CHAT_PASSWORD"); v != "" {
		cfg.Navigate.Password = v
	}
	if v := os.Getenv("COMPACT_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("COMPACT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// LoadDotEnv loads KEY=value pairs from the given .env files into the
// process environment without overriding variables that are already set.
// Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// NavigateReady reports whether the Navigate connection settings are complete.
func (c *Config) NavigateReady() error {
	if c.Navigate.BaseURL == "" || c.Navigate.Email == "" || c.Navigate.Password == "" {
		return ErrNavigateNotConfigured
	}
	return nil
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts the config into a generic nested map via its JSON form.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return m, nil
}

// ListValues returns all config values as a flat dot-keyed map, with
// secrets masked when mask is set.
func ListValues(cfg *Config, mask bool) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	flat := Flatten(m)
	if mask {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// readFileMap loads the raw config file as a flat map, writing defaults
// first if the file does not exist yet.
func readFileMap(path string) (map[string]any, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Save(path, defaults()); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return Flatten(m), nil
}

// GetValue returns the value stored under a dot-separated key.
func GetValue(path, key string) (any, error) {
	flat, err := readFileMap(path)
	if err != nil {
		return nil, err
	}
	v, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return v, nil
}

// SetValue stores value under an existing dot-separated key. String keys
// keep the value verbatim; other keys take it as JSON (numbers, booleans).
// The config file must already exist.
func SetValue(path, key, value string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	flat, err := readFileMap(path)
	if err != nil {
		return err
	}
	current, ok := flat[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}

	var typed any = value
	if _, isString := current.(string); !isString {
		if err := json.Unmarshal([]byte(value), &typed); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	flat[key] = typed

	data, err := json.MarshalIndent(Unflatten(flat), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}
