package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bryanchriswhite/swaytab/internal/logger"
	"gopkg.in/yaml.v3"
)

// Mode selects which workspaces contribute windows to a switching session.
type Mode string

const (
	// ModeCurrent restricts switching to windows on the focused workspace
	ModeCurrent Mode = "current"
	// ModeAll cycles windows from every workspace
	ModeAll Mode = "all"
)

// ParseMode validates a workspace mode string
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCurrent, ModeAll:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid workspace mode: %q (want %q or %q)", s, ModeCurrent, ModeAll)
	}
}

// Config represents the daemon configuration
type Config struct {
	Mode                     Mode   `json:"mode" yaml:"mode"`
	LogLevel                 string `json:"log_level" yaml:"log_level"`
	SocketPath               string `json:"socket_path" yaml:"socket_path"`
	UIPort                   int    `json:"ui_port" yaml:"ui_port"`
	ReconcileIntervalSeconds int    `json:"reconcile_interval_seconds" yaml:"reconcile_interval_seconds"`
}

// ReconcileInterval returns the reconciliation period as a duration
func (c *Config) ReconcileInterval() time.Duration {
	if c.ReconcileIntervalSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(c.ReconcileIntervalSeconds) * time.Second
}

// Manager handles configuration
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configFile string) (*Manager, error) {
	// Set default configuration path
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "swaytab")
	defaultConfigPath := filepath.Join(configDir, "config.yaml")

	// Use provided config file or default
	actualConfigPath := defaultConfigPath
	if configFile != "" {
		actualConfigPath = configFile
	}

	m := &Manager{
		configPath: actualConfigPath,
	}

	// Try to read config file
	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			// Config file not found, create it with defaults
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("Config file not found, creating new config")
			m.config = m.getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("mode", string(m.config.Mode)).
		Msg("Config loaded")

	return m, nil
}

// getDefaults returns default configuration
func (m *Manager) getDefaults() *Config {
	return &Config{
		Mode:                     ModeCurrent,
		LogLevel:                 "info",
		UIPort:                   8830,
		ReconcileIntervalSeconds: 45,
	}
}

// load reads the configuration from disk
func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	// Fill gaps with defaults so older config files keep working
	defaults := m.getDefaults()
	if cfg.Mode == "" {
		cfg.Mode = defaults.Mode
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return err
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.ReconcileIntervalSeconds == 0 {
		cfg.ReconcileIntervalSeconds = defaults.ReconcileIntervalSeconds
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return m.getDefaults()
	}

	cfg := *m.config
	return &cfg
}

// Save saves the current configuration to disk
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = m.getDefaults()
	}

	// Ensure the directory exists
	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.WithComponent("config").Debug().
		Str("path", m.configPath).
		Msg("Config saved")
	return nil
}

// SetMode overrides the workspace mode
func (m *Manager) SetMode(mode Mode) {
	m.mu.Lock()
	m.config.Mode = mode
	m.mu.Unlock()
}

// SetLogLevel overrides the log level
func (m *Manager) SetLogLevel(level string) {
	m.mu.Lock()
	m.config.LogLevel = level
	m.mu.Unlock()
}

// GetConfigPath returns the path to the config file
func (m *Manager) GetConfigPath() string {
	return m.configPath
}
