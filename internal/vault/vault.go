// Package vault is the wallet's top-level state: the active mnemonic, the
// selected network, and the account registries, balances, and transfer
// engine hanging off them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/nexvault/nexvault/internal/balance"
	"github.com/nexvault/nexvault/internal/chain"
	"github.com/nexvault/nexvault/internal/engine"
	"github.com/nexvault/nexvault/internal/log"
	"github.com/nexvault/nexvault/internal/registry"
	"github.com/nexvault/nexvault/internal/storage"
	"github.com/nexvault/nexvault/internal/wallet"
)

// Persistence keys within the wallet/ namespace.
var (
	mnemonicKey = []byte("mnemonic")
	networkKey  = []byte("network")
)

// ErrNoWallet is returned when no mnemonic has been generated or imported.
var ErrNoWallet = errors.New("no wallet initialized")

// Vault owns the wallet's runtime state. All derived account material is
// reproducible from the mnemonic, so the mnemonic is the only secret the
// vault guards.
type Vault struct {
	db       storage.DB // underlying store, closed on Close
	settings storage.DB // wallet/ namespace: mnemonic and network keys
	registry *registry.Registry
	balances *balance.Synchronizer
	engine   *engine.Engine

	mu       sync.RWMutex
	mnemonic string
	network  chain.Network

	// password is non-nil when the mnemonic is stored encrypted.
	password []byte
}

// Option configures a Vault.
type Option func(*Vault)

// WithPassword stores the mnemonic encrypted at rest with the given
// password instead of in plaintext.
func WithPassword(password []byte) Option {
	return func(v *Vault) { v.password = password }
}

// Open builds a vault over the database, rehydrating the persisted
// mnemonic and active network when present. A wrong password surfaces as
// a decrypt error; an absent mnemonic leaves the vault empty but usable.
func Open(db storage.DB, balances *balance.Synchronizer, submitters map[chain.Network]engine.Submitter, opts ...Option) (*Vault, error) {
	v := &Vault{
		db:       db,
		settings: storage.NewPrefixDB(db, []byte("wallet/")),
		balances: balances,
		network:  chain.Solana,
	}
	for _, opt := range opts {
		opt(v)
	}

	if err := v.loadMnemonic(); err != nil {
		return nil, err
	}
	v.loadNetwork()

	v.registry = registry.New(storage.NewPrefixDB(db, []byte("registry/")), v.derive)
	v.engine = engine.New(submitters, balances,
		engine.WithSettledFunc(v.refreshAfterSettle),
	)

	log.Wallet.Info().
		Str("network", string(v.network)).
		Bool("initialized", v.mnemonic != "").
		Msg("vault opened")

	return v, nil
}

// loadMnemonic rehydrates the persisted phrase, decrypting when a
// password is configured.
func (v *Vault) loadMnemonic() error {
	raw, err := v.settings.Get(mnemonicKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load mnemonic: %w", err)
	}

	if v.password != nil {
		plain, err := wallet.Decrypt(raw, v.password)
		if err != nil {
			return fmt.Errorf("unlock wallet: %w", err)
		}
		raw = plain
	}

	if !wallet.ValidateMnemonic(string(raw)) {
		log.Wallet.Warn().Msg("persisted mnemonic invalid, starting uninitialized")
		return nil
	}
	v.mnemonic = string(raw)
	return nil
}

// loadNetwork rehydrates the persisted network selection, keeping the
// default when absent or unrecognized.
func (v *Vault) loadNetwork() {
	raw, err := v.settings.Get(networkKey)
	if err != nil {
		return
	}
	n, err := chain.Parse(string(raw))
	if err != nil {
		log.Wallet.Warn().
			Str("value", string(raw)).
			Msg("persisted network unrecognized, using default")
		return
	}
	v.network = n
}

// persistMnemonic writes the phrase, encrypting when a password is set.
func (v *Vault) persistMnemonic(mnemonic string) error {
	data := []byte(mnemonic)
	if v.password != nil {
		enc, err := wallet.Encrypt(data, v.password, wallet.DefaultParams())
		if err != nil {
			return fmt.Errorf("encrypt mnemonic: %w", err)
		}
		data = enc
	}
	if err := v.settings.Put(mnemonicKey, data); err != nil {
		return fmt.Errorf("persist mnemonic: %w", err)
	}
	return nil
}

// derive is the registry's Deriver, bound to the active mnemonic.
func (v *Vault) derive(network chain.Network, index uint32) (*wallet.KeyPair, error) {
	v.mu.RLock()
	mnemonic := v.mnemonic
	v.mu.RUnlock()
	if mnemonic == "" {
		return nil, ErrNoWallet
	}
	return wallet.Derive(mnemonic, network, index)
}

// Initialized reports whether a mnemonic is present.
func (v *Vault) Initialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.mnemonic != ""
}

// Mnemonic returns the active phrase for backup display.
func (v *Vault) Mnemonic() (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.mnemonic == "" {
		return "", ErrNoWallet
	}
	return v.mnemonic, nil
}

// Generate creates a fresh 12-word mnemonic, replacing any existing
// wallet. Existing account registries are purged first: their material
// belongs to the old phrase.
func (v *Vault) Generate() (string, error) {
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return "", err
	}
	if err := v.adopt(mnemonic); err != nil {
		return "", err
	}
	log.Wallet.Info().Msg("new wallet generated")
	return mnemonic, nil
}

// Import adopts a user-supplied phrase after normalization and checksum
// validation. Importing the already-active phrase keeps the registries;
// any other phrase purges them.
func (v *Vault) Import(phrase string) error {
	normalized, err := wallet.ValidateImport(phrase)
	if err != nil {
		return err
	}

	v.mu.RLock()
	same := normalized == v.mnemonic
	v.mu.RUnlock()
	if same {
		return nil
	}

	if err := v.adopt(normalized); err != nil {
		return err
	}
	log.Wallet.Info().Msg("wallet imported")
	return nil
}

// adopt installs a new phrase: purge old registries, persist, swap.
func (v *Vault) adopt(mnemonic string) error {
	if err := v.registry.Purge(); err != nil {
		return err
	}
	if err := v.persistMnemonic(mnemonic); err != nil {
		return err
	}
	v.mu.Lock()
	v.mnemonic = mnemonic
	v.mu.Unlock()
	return nil
}

// Network returns the active network.
func (v *Vault) Network() chain.Network {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.network
}

// SelectNetwork switches the active network, persists the choice, and
// refreshes the new network's balances.
func (v *Vault) SelectNetwork(ctx context.Context, network chain.Network) error {
	if !chain.IsSupported(network) {
		return fmt.Errorf("unsupported network: %s", network)
	}

	v.mu.RLock()
	same := v.network == network
	v.mu.RUnlock()
	if same {
		return nil
	}

	// The in-memory swap happens only after the write lands.
	if err := v.settings.Put(networkKey, []byte(network)); err != nil {
		return fmt.Errorf("persist network: %w", err)
	}

	v.mu.Lock()
	v.network = network
	v.mu.Unlock()

	log.Wallet.Info().Str("network", string(network)).Msg("network selected")
	v.RefreshBalances(ctx)
	return nil
}

// Accounts lists the active network's accounts in index order.
func (v *Vault) Accounts() []registry.Account {
	return v.registry.List(v.Network())
}

// CreateAccount derives the next account on the active network and
// refreshes its balance.
func (v *Vault) CreateAccount(ctx context.Context) (registry.Account, error) {
	network := v.Network()
	account, err := v.registry.Create(network)
	if err != nil {
		return registry.Account{}, err
	}
	v.balances.Refresh(ctx, network, account.PublicAddress)
	return account, nil
}

// DeleteAccount removes an account from the active network's registry and
// drops its cached balance.
func (v *Vault) DeleteAccount(index uint32) error {
	network := v.Network()
	account, err := v.registry.Get(network, index)
	if err != nil {
		// Absent index is a no-op, matching the registry.
		return nil
	}
	if err := v.registry.Delete(network, index); err != nil {
		return err
	}
	v.balances.Store().Forget(account.PublicAddress)
	return nil
}

// Account returns the active network's account at the given index.
func (v *Vault) Account(index uint32) (registry.Account, error) {
	return v.registry.Get(v.Network(), index)
}

// RefreshBalances re-polls every account on the active network.
func (v *Vault) RefreshBalances(ctx context.Context) {
	network := v.Network()
	accounts := v.registry.List(network)
	addresses := make([]string, len(accounts))
	for i, a := range accounts {
		addresses[i] = a.PublicAddress
	}
	v.balances.RefreshAll(ctx, network, addresses)
}

// refreshAfterSettle is the engine's post-submission hook. It re-polls the
// settled network only when it is still the active one.
func (v *Vault) refreshAfterSettle(network chain.Network) {
	if v.Network() != network {
		return
	}
	v.RefreshBalances(context.Background())
}

// Balance returns the last resolved balance for an account, formatted in
// native units. The second return is false while unresolved.
func (v *Vault) Balance(index uint32) (string, bool, error) {
	network := v.Network()
	account, err := v.registry.Get(network, index)
	if err != nil {
		return "", false, err
	}
	raw, ok := v.balances.Balance(account.PublicAddress)
	if !ok {
		return "", false, nil
	}
	params := chain.MustGet(network)
	return params.FormatAmount(raw), true, nil
}

// EstimateFee prices a transfer from the given account on the active
// network. The fee is returned in atomic units.
func (v *Vault) EstimateFee(ctx context.Context, index uint32, recipient, amount string) (*big.Int, error) {
	req, err := v.buildRequest(index, recipient, amount)
	if err != nil {
		return nil, err
	}
	return v.engine.EstimateFee(ctx, req)
}

// Send validates and submits a transfer from the given account on the
// active network, returning the transaction hash or signature.
func (v *Vault) Send(ctx context.Context, index uint32, recipient, amount string) (string, error) {
	req, err := v.buildRequest(index, recipient, amount)
	if err != nil {
		return "", err
	}
	result, err := v.engine.Submit(ctx, req)
	if err != nil {
		return "", err
	}
	return result.Hash, nil
}

// buildRequest assembles a transfer request for the active network.
func (v *Vault) buildRequest(index uint32, recipient, amount string) (engine.Request, error) {
	network := v.Network()
	account, err := v.registry.Get(network, index)
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{
		Network:   network,
		Account:   account,
		Recipient: recipient,
		Amount:    amount,
	}, nil
}

// Engine exposes the transfer engine, mainly for shutdown.
func (v *Vault) Engine() *engine.Engine {
	return v.engine
}

// Close cancels any pending post-submission refresh and closes storage.
func (v *Vault) Close() error {
	v.engine.CancelPendingRefresh()
	return v.db.Close()
}
