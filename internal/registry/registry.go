// Package registry maintains the per-network ordered account lists derived
// from the wallet mnemonic.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nexvault/nexvault/internal/chain"
	"github.com/nexvault/nexvault/internal/log"
	"github.com/nexvault/nexvault/internal/storage"
	"github.com/nexvault/nexvault/internal/wallet"
)

// Account is one derived account within a network's registry.
type Account struct {
	Index              uint32 `json:"index"`
	PublicAddress      string `json:"publicAddress"`
	PrivateKeyMaterial string `json:"privateKeyMaterial"`
}

// Deriver produces the key pair for (network, index). Wired to
// wallet.Derive with the active mnemonic.
type Deriver func(network chain.Network, index uint32) (*wallet.KeyPair, error)

// Registry holds the per-network account lists. Accounts are append-only
// with stable indices: creation derives at one past the highest existing
// index, and deletion leaves a gap instead of renumbering.
//
// Create and Delete are serialized per network so two near-simultaneous
// creations can never derive the same index twice.
type Registry struct {
	db     storage.DB
	derive Deriver

	netMu map[chain.Network]*sync.Mutex

	mu    sync.RWMutex
	lists map[chain.Network][]Account
}

// storageKey returns the persistence key for a network's account list.
// The db is expected to be namespaced already (see storage.PrefixDB).
func storageKey(network chain.Network) []byte {
	return []byte(network)
}

// New creates a registry backed by db, rehydrating every network's list.
// Absent or malformed persisted state yields an empty list; the registry
// fails soft rather than refusing to start.
func New(db storage.DB, derive Deriver) *Registry {
	r := &Registry{
		db:     db,
		derive: derive,
		netMu:  make(map[chain.Network]*sync.Mutex, len(chain.All)),
		lists:  make(map[chain.Network][]Account, len(chain.All)),
	}
	for _, n := range chain.All {
		r.netMu[n] = &sync.Mutex{}
		r.lists[n] = r.load(n)
	}
	return r
}

// load reads one network's persisted list.
func (r *Registry) load(network chain.Network) []Account {
	raw, err := r.db.Get(storageKey(network))
	if err != nil {
		return nil
	}
	var accounts []Account
	if err := json.Unmarshal(raw, &accounts); err != nil {
		log.Registry.Warn().
			Str("network", string(network)).
			Err(err).
			Msg("malformed persisted registry, starting empty")
		return nil
	}
	return accounts
}

// persist writes one network's list through the storage adapter.
func (r *Registry) persist(network chain.Network, accounts []Account) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := r.db.Put(storageKey(network), raw); err != nil {
		return fmt.Errorf("persist registry: %w", err)
	}
	return nil
}

// List returns the accounts for a network in creation (= index) order.
func (r *Registry) List(network chain.Network) []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accounts := r.lists[network]
	out := make([]Account, len(accounts))
	copy(out, accounts)
	return out
}

// nextIndex is one past the highest existing index, so a deleted middle
// index is never reissued to a later account.
func nextIndex(accounts []Account) uint32 {
	var next uint32
	for _, a := range accounts {
		if a.Index >= next {
			next = a.Index + 1
		}
	}
	return next
}

// Create derives the next account for a network, appends it, and persists
// the updated list.
func (r *Registry) Create(network chain.Network) (Account, error) {
	if !chain.IsSupported(network) {
		return Account{}, fmt.Errorf("unsupported network: %s", network)
	}

	mu := r.netMu[network]
	mu.Lock()
	defer mu.Unlock()

	r.mu.RLock()
	accounts := r.lists[network]
	r.mu.RUnlock()

	index := nextIndex(accounts)
	pair, err := r.derive(network, index)
	if err != nil {
		return Account{}, fmt.Errorf("derive account %d: %w", index, err)
	}

	account := Account{
		Index:              index,
		PublicAddress:      pair.PublicKey,
		PrivateKeyMaterial: pair.PrivateKey,
	}

	updated := make([]Account, len(accounts), len(accounts)+1)
	copy(updated, accounts)
	updated = append(updated, account)

	if err := r.persist(network, updated); err != nil {
		return Account{}, err
	}

	r.mu.Lock()
	r.lists[network] = updated
	r.mu.Unlock()

	log.Registry.Info().
		Str("network", string(network)).
		Uint32("index", index).
		Str("address", account.PublicAddress).
		Msg("account created")

	return account, nil
}

// Delete removes the account with the given index. Remaining accounts keep
// their indices (gap, not renumber). Deleting an absent index is a no-op.
func (r *Registry) Delete(network chain.Network, index uint32) error {
	if !chain.IsSupported(network) {
		return fmt.Errorf("unsupported network: %s", network)
	}

	mu := r.netMu[network]
	mu.Lock()
	defer mu.Unlock()

	r.mu.RLock()
	accounts := r.lists[network]
	r.mu.RUnlock()

	updated := make([]Account, 0, len(accounts))
	found := false
	for _, a := range accounts {
		if a.Index == index {
			found = true
			continue
		}
		updated = append(updated, a)
	}
	if !found {
		return nil
	}

	if err := r.persist(network, updated); err != nil {
		return err
	}

	r.mu.Lock()
	r.lists[network] = updated
	r.mu.Unlock()

	log.Registry.Info().
		Str("network", string(network)).
		Uint32("index", index).
		Msg("account deleted")

	return nil
}

// Get returns the account with the given index on a network.
func (r *Registry) Get(network chain.Network, index uint32) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.lists[network] {
		if a.Index == index {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("no account at index %d on %s", index, network)
}

// Purge drops every network's accounts, in memory and persisted. Called
// when a different mnemonic is imported, since the old derived material
// no longer belongs to the active phrase.
func (r *Registry) Purge() error {
	for _, n := range chain.All {
		mu := r.netMu[n]
		mu.Lock()
		if err := r.db.Delete(storageKey(n)); err != nil {
			mu.Unlock()
			return fmt.Errorf("purge %s registry: %w", n, err)
		}
		r.mu.Lock()
		r.lists[n] = nil
		r.mu.Unlock()
		mu.Unlock()
	}
	log.Registry.Info().Msg("registries purged")
	return nil
}
