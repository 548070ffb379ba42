// Package config loads the monitor configuration: logging, server and scan
// settings plus the static chain registry that maps each observed chain to
// its RPC endpoint and dispatcher contract addresses.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	configSubdir   = "config"
	configFileName = "polylens_config.json"
)

//go:embed default_config.json
var defaultConfigJSON []byte

// Load reads the config from <basePath>/config/polylens_config.json, applies
// environment overrides and validates it.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, configSubdir, configFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDefault returns the embedded default configuration with environment
// overrides applied. Used when no config file exists on disk.
func LoadDefault() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}

	applyEnvOverrides(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the given config to <basePath>/config/polylens_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, configFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	// Set defaults for the query server
	if cfg.QueryServerPort == 0 {
		cfg.QueryServerPort = 8080
	}

	// Set defaults for scanning
	if cfg.ScanIntervalSeconds == 0 {
		cfg.ScanIntervalSeconds = 60
	}
	if cfg.RPCTimeoutSeconds == 0 {
		cfg.RPCTimeoutSeconds = 10
	}
	if cfg.LookupConcurrency == 0 {
		cfg.LookupConcurrency = 8
	}

	if cfg.DashboardURL == "" {
		cfg.DashboardURL = "https://polylens.vercel.app/"
	}

	// Fall back to the embedded chain registry when none is configured
	if len(cfg.Chains) == 0 {
		var defaultCfg Config
		if err := json.Unmarshal(defaultConfigJSON, &defaultCfg); err == nil {
			cfg.Chains = defaultCfg.Chains
		} else {
			cfg.Chains = make(map[string]ChainConfig)
		}
	}

	for name, chain := range cfg.Chains {
		if chain.RPCURL == "" {
			return fmt.Errorf("chain %q has no rpc url", name)
		}
		if chain.BlockTimeSeconds == 0 {
			chain.BlockTimeSeconds = 2
			cfg.Chains[name] = chain
		}
	}

	return nil
}

// applyEnvOverrides resolves per-chain dispatcher addresses and Mailgun
// credentials from the environment. Dispatcher env keys follow
// <CHAIN>_DISPATCHER and <CHAIN>_DISPATCHER_SIM, e.g. BASE_DISPATCHER.
func applyEnvOverrides(cfg *Config) {
	for name, chain := range cfg.Chains {
		upper := strings.ToUpper(name)
		if v := os.Getenv(upper + "_DISPATCHER"); v != "" {
			chain.ProofDispatcher = v
		}
		if v := os.Getenv(upper + "_DISPATCHER_SIM"); v != "" {
			chain.SimDispatcher = v
		}
		cfg.Chains[name] = chain
	}

	if v := os.Getenv("MAILGUN_API_KEY"); v != "" {
		cfg.MailgunAPIKey = v
	}
	if v := os.Getenv("MAILGUN_DOMAIN"); v != "" {
		cfg.MailgunDomain = v
	}
}
