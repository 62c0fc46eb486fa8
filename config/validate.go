package config

import (
	"fmt"
	"net/url"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if err := validateRPCURL(cfg.Solana.RPCURL, "solana.rpc"); err != nil {
		return err
	}
	if err := validateRPCURL(cfg.Ethereum.RPCURL, "ethereum.rpc"); err != nil {
		return err
	}
	if cfg.Ethereum.ChainID <= 0 {
		return fmt.Errorf("ethereum.chainid must be positive")
	}
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn, or error")
	}
	return nil
}

func validateRPCURL(raw, field string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	return nil
}
