package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags.
type Flags struct {
	// Commands
	Help    bool
	Version bool

	// Core
	DataDir string
	Config  string

	// RPC endpoints
	SolanaRPC       string
	EthereumRPC     string
	EthereumChainID int64

	// Wallet
	Encrypt bool

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	// Remaining args (subcommand and its arguments)
	Args []string

	// Explicitly-set bool flags (for true/false overrides).
	SetEncrypt bool
	SetLogJSON bool
}

// ParseFlags parses command-line flags.
func ParseFlags() *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("nexvault", flag.ContinueOnError)

	// Commands
	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	// Core
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")

	// RPC endpoints
	fs.StringVar(&f.SolanaRPC, "solana-rpc", "", "Solana RPC endpoint URL")
	fs.StringVar(&f.EthereumRPC, "ethereum-rpc", "", "Ethereum RPC endpoint URL")
	fs.Int64Var(&f.EthereumChainID, "ethereum-chainid", 0, "Ethereum chain ID")

	// Wallet
	fs.BoolVar(&f.Encrypt, "encrypt", false, "Store the recovery phrase encrypted at rest")

	// Logging
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetEncrypt = isFlagSet(fs, "encrypt")
	f.SetLogJSON = isFlagSet(fs, "log-json")

	f.Args = fs.Args()

	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	// Core
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	// RPC endpoints
	if f.SolanaRPC != "" {
		cfg.Solana.RPCURL = f.SolanaRPC
	}
	if f.EthereumRPC != "" {
		cfg.Ethereum.RPCURL = f.EthereumRPC
	}
	if f.EthereumChainID != 0 {
		cfg.Ethereum.ChainID = f.EthereumChainID
	}

	// Wallet
	if f.SetEncrypt {
		cfg.Wallet.Encrypt = f.Encrypt
	}

	// Logging
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

// isFlagSet checks if a flag was explicitly set.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `NexVault - multi-chain HD wallet

Usage:
  nexvault [options] <command> [args]
  nexvault --help

Commands:
  init                     Generate a new wallet
  import                   Import a recovery phrase
  phrase                   Show the recovery phrase (masked; --reveal for full)
  network [sol|eth|btc]    Show or switch the active network
  accounts                 List accounts on the active network
  new                      Create the next account
  delete <index>           Delete the account at index
  balance [index]          Show balances (all accounts, or one index)
  send <index> <to> <amt>  Send from the account at index

Core Options:
  --datadir           Data directory (default: ~/.nexvault)
  --config, -c        Config file path (default: <datadir>/nexvault.conf)

RPC Options:
  --solana-rpc        Solana RPC endpoint URL
  --ethereum-rpc      Ethereum RPC endpoint URL
  --ethereum-chainid  Ethereum chain ID (default: 1)

Wallet Options:
  --encrypt           Store the recovery phrase encrypted at rest

Logging Options:
  --log-level         Log level: debug, info, warn, error (default: info)
  --log-file          Log file path
  --log-json          Output logs as JSON
`
	fmt.Fprint(os.Stderr, usage)
}
