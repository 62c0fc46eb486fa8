// nexvault is a command-line multi-chain HD wallet.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/nexvault/nexvault/config"
	"github.com/nexvault/nexvault/internal/balance"
	"github.com/nexvault/nexvault/internal/chain"
	"github.com/nexvault/nexvault/internal/engine"
	"github.com/nexvault/nexvault/internal/log"
	"github.com/nexvault/nexvault/internal/storage"
	"github.com/nexvault/nexvault/internal/vault"
	"github.com/nexvault/nexvault/internal/wallet"
)

var version = "dev"

// rpcTimeout bounds each RPC-backed command.
const rpcTimeout = 60 * time.Second

func main() {
	flags := config.ParseFlags()

	if flags.Version {
		fmt.Printf("nexvault %s\n", version)
		return
	}
	if flags.Help || len(flags.Args) == 0 {
		usage()
		if flags.Help {
			return
		}
		os.Exit(1)
	}

	cfg := config.Default()

	configPath := flags.Config
	if configPath == "" {
		if flags.DataDir != "" {
			cfg.DataDir = flags.DataDir
		}
		configPath = cfg.ConfigFile()

		// First run: lay down a template config to edit.
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
				fatal("create data directory: %v", err)
			}
			if err := config.WriteDefaultConfig(configPath); err != nil {
				fatal("write default config: %v", err)
			}
		}
	}
	fileValues, err := config.LoadFile(configPath)
	if err != nil {
		fatal("load config: %v", err)
	}
	if err := config.ApplyFileConfig(cfg, fileValues); err != nil {
		fatal("apply config: %v", err)
	}
	config.ApplyFlags(cfg, flags)
	if err := config.Validate(cfg); err != nil {
		fatal("invalid config: %v", err)
	}

	if err := os.MkdirAll(cfg.WalletDir(), 0700); err != nil {
		fatal("create data directory: %v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}

	v, err := openVault(cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer v.Close()

	cmd := flags.Args[0]
	cmdArgs := flags.Args[1:]

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	switch cmd {
	case "init":
		cmdInit(v)
	case "import":
		cmdImport(v)
	case "phrase":
		cmdPhrase(v, cmdArgs)
	case "network":
		cmdNetwork(ctx, v, cmdArgs)
	case "accounts":
		cmdAccounts(v)
	case "new":
		cmdNew(ctx, v)
	case "delete":
		cmdDelete(v, cmdArgs)
	case "balance":
		cmdBalance(ctx, v, cmdArgs)
	case "send":
		cmdSend(ctx, v, cmdArgs)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

// openVault wires storage, balance queriers, and transfer submitters per
// the config, prompting for a password when encryption is enabled.
func openVault(cfg *config.Config) (*vault.Vault, error) {
	db, err := storage.NewBadger(cfg.WalletDir())
	if err != nil {
		return nil, fmt.Errorf("open wallet database: %w", err)
	}

	ethQuerier, err := balance.NewEthereum(cfg.Ethereum.RPCURL)
	if err != nil {
		db.Close()
		return nil, err
	}
	queriers := map[chain.Network]balance.Querier{
		chain.Solana:   balance.NewSolana(cfg.Solana.RPCURL),
		chain.Ethereum: ethQuerier,
	}
	balances := balance.New(queriers)

	ethSubmitter, err := engine.NewEthereum(cfg.Ethereum.RPCURL, cfg.Ethereum.ChainID)
	if err != nil {
		db.Close()
		return nil, err
	}
	submitters := map[chain.Network]engine.Submitter{
		chain.Solana:   engine.NewSolana(cfg.Solana.RPCURL),
		chain.Ethereum: ethSubmitter,
		chain.Bitcoin:  engine.NewBitcoin(),
	}

	var opts []vault.Option
	if cfg.Wallet.Encrypt {
		password, err := readPassword("Wallet password: ")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("read password: %w", err)
		}
		opts = append(opts, vault.WithPassword(password))
	}

	v, err := vault.Open(db, balances, submitters, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return v, nil
}

// ── Commands ────────────────────────────────────────────────────────────

func cmdInit(v *vault.Vault) {
	if v.Initialized() {
		if !confirm("A wallet already exists. Generating a new one deletes all accounts. Continue? [y/N] ") {
			return
		}
	}
	mnemonic, err := v.Generate()
	if err != nil {
		fatal("generate wallet: %v", err)
	}
	fmt.Println("New wallet generated. Write down the recovery phrase:")
	fmt.Println()
	fmt.Printf("  %s\n", mnemonic)
	fmt.Println()
	fmt.Println("Anyone with this phrase controls all funds. Store it offline.")
}

func cmdImport(v *vault.Vault) {
	if v.Initialized() {
		if !confirm("A wallet already exists. Importing replaces it and deletes all accounts. Continue? [y/N] ") {
			return
		}
	}
	fmt.Print("Enter recovery phrase: ")
	reader := bufio.NewReader(os.Stdin)
	phrase, err := reader.ReadString('\n')
	if err != nil {
		fatal("read phrase: %v", err)
	}
	if err := v.Import(phrase); err != nil {
		fatal("import wallet: %v", err)
	}
	fmt.Println("Wallet imported.")
}

func cmdPhrase(v *vault.Vault, args []string) {
	mnemonic, err := v.Mnemonic()
	if err != nil {
		fatal("%v", err)
	}
	if len(args) > 0 && args[0] == "--reveal" {
		fmt.Println(mnemonic)
		return
	}
	fmt.Println(wallet.MaskMnemonic(mnemonic))
	fmt.Println("(use 'phrase --reveal' to show the full phrase)")
}

func cmdNetwork(ctx context.Context, v *vault.Vault, args []string) {
	if len(args) == 0 {
		params := chain.MustGet(v.Network())
		fmt.Printf("%s (%s)\n", params.Name, params.Ticker)
		return
	}
	network, err := chain.Parse(args[0])
	if err != nil {
		fatal("%v", err)
	}
	if err := v.SelectNetwork(ctx, network); err != nil {
		fatal("select network: %v", err)
	}
	fmt.Printf("Switched to %s\n", chain.MustGet(network).Name)
}

func cmdAccounts(v *vault.Vault) {
	requireWallet(v)
	accounts := v.Accounts()
	if len(accounts) == 0 {
		fmt.Println("No accounts. Create one with 'nexvault new'.")
		return
	}
	params := chain.MustGet(v.Network())
	fmt.Printf("%s accounts:\n", params.Name)
	for _, a := range accounts {
		fmt.Printf("  [%d] %s\n", a.Index, a.PublicAddress)
	}
}

func cmdNew(ctx context.Context, v *vault.Vault) {
	requireWallet(v)
	account, err := v.CreateAccount(ctx)
	if err != nil {
		fatal("create account: %v", err)
	}
	fmt.Printf("Account %d created: %s\n", account.Index, account.PublicAddress)
}

func cmdDelete(v *vault.Vault, args []string) {
	requireWallet(v)
	if len(args) != 1 {
		fatal("usage: nexvault delete <index>")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		fatal("%v", err)
	}
	if err := v.DeleteAccount(index); err != nil {
		fatal("delete account: %v", err)
	}
	fmt.Printf("Account %d deleted.\n", index)
}

func cmdBalance(ctx context.Context, v *vault.Vault, args []string) {
	requireWallet(v)
	params := chain.MustGet(v.Network())

	v.RefreshBalances(ctx)

	accounts := v.Accounts()
	if len(args) == 1 {
		index, err := parseIndex(args[0])
		if err != nil {
			fatal("%v", err)
		}
		printBalance(v, params.Ticker, index)
		return
	}
	for _, a := range accounts {
		printBalance(v, params.Ticker, a.Index)
	}
}

func printBalance(v *vault.Vault, ticker string, index uint32) {
	formatted, resolved, err := v.Balance(index)
	if err != nil {
		fatal("%v", err)
	}
	if !resolved {
		fmt.Printf("  [%d] (unavailable)\n", index)
		return
	}
	fmt.Printf("  [%d] %s %s\n", index, formatted, ticker)
}

func cmdSend(ctx context.Context, v *vault.Vault, args []string) {
	requireWallet(v)
	if len(args) != 3 {
		fatal("usage: nexvault send <index> <recipient> <amount>")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		fatal("%v", err)
	}
	recipient, amount := args[1], args[2]

	fee, err := v.EstimateFee(ctx, index, recipient, amount)
	if err != nil {
		fatal("estimate fee: %v", err)
	}
	params := chain.MustGet(v.Network())
	fmt.Printf("Sending %s %s to %s (estimated fee: %s %s)\n",
		amount, params.Ticker, recipient, params.FormatAmount(fee), params.Ticker)
	if !confirm("Confirm? [y/N] ") {
		return
	}

	hash, err := v.Send(ctx, index, recipient, amount)
	if err != nil {
		fatal("send: %v", err)
	}
	fmt.Printf("Confirmed: %s\n", hash)
}

// ── Helpers ─────────────────────────────────────────────────────────────

func requireWallet(v *vault.Vault) {
	if !v.Initialized() {
		fatal("no wallet. Run 'nexvault init' or 'nexvault import' first")
	}
}

func parseIndex(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid account index %q", s)
	}
	return uint32(n), nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: nexvault [options] <command> [args]

Commands:
  init                     Generate a new wallet
  import                   Import a recovery phrase
  phrase [--reveal]        Show the recovery phrase (masked by default)
  network [sol|eth|btc]    Show or switch the active network
  accounts                 List accounts on the active network
  new                      Create the next account
  delete <index>           Delete the account at index
  balance [index]          Show balances
  send <index> <to> <amt>  Send from the account at index

Run 'nexvault --help' for options.
`)
}
