// Package config handles application configuration.
//
// Settings come from three layers, lowest precedence first: built-in
// defaults, the nexvault.conf file in the data directory, then
// command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime configuration.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// RPC endpoints
	Solana   SolanaConfig
	Ethereum EthereumConfig

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// SolanaConfig holds Solana RPC settings.
type SolanaConfig struct {
	RPCURL string `conf:"solana.rpc"`
}

// EthereumConfig holds Ethereum RPC settings.
type EthereumConfig struct {
	RPCURL  string `conf:"ethereum.rpc"`
	ChainID int64  `conf:"ethereum.chainid"`
}

// WalletConfig holds wallet storage settings.
type WalletConfig struct {
	// Encrypt stores the mnemonic encrypted at rest; the password is
	// prompted interactively, never configured.
	Encrypt bool `conf:"wallet.encrypt"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.nexvault
//	macOS:   ~/Library/Application Support/Nexvault
//	Windows: %APPDATA%\Nexvault
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nexvault"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Nexvault")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Nexvault")
		}
		return filepath.Join(home, "AppData", "Roaming", "Nexvault")
	default:
		return filepath.Join(home, ".nexvault")
	}
}

// WalletDir returns the wallet database directory.
func (c *Config) WalletDir() string {
	return filepath.Join(c.DataDir, "wallet")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "nexvault.conf")
}
