package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_ApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nexvault.conf")
	content := `# comment
datadir = /tmp/nv
solana.rpc = "https://solana.example.com"
ethereum.chainid = 11155111
wallet.encrypt = yes
log.level = debug
unknown.key = ignored
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}

	if cfg.DataDir != "/tmp/nv" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Solana.RPCURL != "https://solana.example.com" {
		t.Errorf("Solana.RPCURL = %q (quotes not stripped?)", cfg.Solana.RPCURL)
	}
	if cfg.Ethereum.ChainID != 11155111 {
		t.Errorf("Ethereum.ChainID = %d", cfg.Ethereum.ChainID)
	}
	if !cfg.Wallet.Encrypt {
		t.Error("Wallet.Encrypt should be true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	// Ethereum RPC keeps its default.
	if cfg.Ethereum.RPCURL != Default().Ethereum.RPCURL {
		t.Errorf("Ethereum.RPCURL = %q, want default", cfg.Ethereum.RPCURL)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "absent.conf"))
	if err != nil {
		t.Fatalf("LoadFile() of missing file error: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("LoadFile() of missing file = %v, want empty", values)
	}
}

// The first-run template must parse back to the built-in defaults.
func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexvault.conf")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("WriteDefaultConfig() error: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}

	want := Default()
	if cfg.Solana.RPCURL != want.Solana.RPCURL {
		t.Errorf("Solana.RPCURL = %q, want %q", cfg.Solana.RPCURL, want.Solana.RPCURL)
	}
	if cfg.Ethereum.RPCURL != want.Ethereum.RPCURL || cfg.Ethereum.ChainID != want.Ethereum.ChainID {
		t.Errorf("Ethereum = %+v, want %+v", cfg.Ethereum, want.Ethereum)
	}
	if cfg.Wallet.Encrypt != want.Wallet.Encrypt {
		t.Errorf("Wallet.Encrypt = %v, want %v", cfg.Wallet.Encrypt, want.Wallet.Encrypt)
	}
	if cfg.Log.Level != want.Log.Level || cfg.Log.JSON != want.Log.JSON {
		t.Errorf("Log = %+v, want %+v", cfg.Log, want.Log)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() of template config error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) error: %v", err)
	}

	bad := Default()
	bad.Ethereum.ChainID = 0
	if err := Validate(bad); err == nil {
		t.Error("Validate() should reject chain ID 0")
	}

	bad = Default()
	bad.Solana.RPCURL = "not a url"
	if err := Validate(bad); err == nil {
		t.Error("Validate() should reject a non-http RPC URL")
	}

	bad = Default()
	bad.Log.Level = "loud"
	if err := Validate(bad); err == nil {
		t.Error("Validate() should reject unknown log levels")
	}
}
