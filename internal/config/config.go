package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const configFileName = "ravenmagnet"

// Config holds the configuration options for the application.
type Config struct {
	DataDir        string        `yaml:"dataDir,omitempty"`
	Network        string        `yaml:"network,omitempty"`
	RecoverWorkers int           `yaml:"recoverWorkers,omitempty"`
	AssumeYes      bool          `yaml:"assumeYes,omitempty"`
	Ledger         *LedgerConfig `yaml:"ledger,omitempty"`
}

// LedgerConfig holds options for the local link ledger.
type LedgerConfig struct {
	// Path overrides the database file derived from DataDir and Network.
	Path    string        `yaml:"path,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Path returns the location of the config file.
func Path() string {
	return filepath.Join(xdg.ConfigHome, configFileName)
}

// GetConfig reads the configuration file and returns a Config struct.
// If the configuration file does not exist, it returns the default configuration.
func GetConfig() (*Config, error) {
	defaults := DefaultConfig()

	b, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &defaults, nil
		}

		return nil, err
	}

	if len(b) == 0 {
		return &defaults, nil
	}

	var cfg Config

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, err
	}

	ledgerCfg := zeroOr(cfg.Ledger, defaults.Ledger)

	merged := &Config{
		DataDir:        zeroOr(cfg.DataDir, defaults.DataDir),
		Network:        zeroOr(cfg.Network, defaults.Network),
		RecoverWorkers: zeroOr(cfg.RecoverWorkers, defaults.RecoverWorkers),
		AssumeYes:      zeroOr(cfg.AssumeYes, defaults.AssumeYes),
		Ledger: &LedgerConfig{
			Path:    zeroOr(ledgerCfg.Path, defaults.Ledger.Path),
			Timeout: zeroOr(ledgerCfg.Timeout, defaults.Ledger.Timeout),
		},
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	return merged, nil
}

func DefaultConfig() Config {
	return Config{
		DataDir:        defaultDataDir(),
		Network:        defaultNetwork,
		RecoverWorkers: defaultRecoverWorkers,
		AssumeYes:      defaultAssumeYes,
		Ledger: &LedgerConfig{
			Timeout: defaultLedgerTimeout,
		},
	}
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Network {
	case NetworkMainnet, NetworkTestnet:
	default:
		return fmt.Errorf("unknown network %q", c.Network)
	}

	if c.RecoverWorkers < 0 {
		return fmt.Errorf("recoverWorkers must not be negative, got %d", c.RecoverWorkers)
	}

	return nil
}

// DatabasePath returns the ledger file for the configured network.
func (c *Config) DatabasePath() string {
	if c.Ledger != nil && c.Ledger.Path != "" {
		return c.Ledger.Path
	}

	return filepath.Join(c.DataDir, c.Network+".db")
}

// LogPath returns the debug log location.
func (c *Config) LogPath() string {
	return filepath.Join(c.DataDir, configFileName+".log")
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}
