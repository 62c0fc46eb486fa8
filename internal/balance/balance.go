// Package balance reconciles on-chain balances into local state.
package balance

import (
	"context"
	"math/big"
	"sync"

	"github.com/nexvault/nexvault/internal/chain"
	"github.com/nexvault/nexvault/internal/log"
)

// Querier fetches the balance for one address in atomic units.
type Querier interface {
	Fetch(ctx context.Context, address string) (*big.Int, error)
}

// Store holds per-address balances. Cells are independent and
// overwrite-only: concurrent refreshes may land out of order and the last
// write wins, which is acceptable for an informational display value.
type Store struct {
	mu       sync.RWMutex
	balances map[string]*big.Int
}

// NewStore creates an empty balance store.
func NewStore() *Store {
	return &Store{balances: make(map[string]*big.Int)}
}

// Get returns the balance for an address in atomic units. The second
// return is false while the address has never resolved.
func (s *Store) Get(address string) (*big.Int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.balances[address]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(v), true
}

// set records a resolved balance.
func (s *Store) set(address string, v *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[address] = new(big.Int).Set(v)
}

// Forget drops an address's balance, returning it to unresolved.
func (s *Store) Forget(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.balances, address)
}

// Synchronizer queries network RPC endpoints and feeds the store.
type Synchronizer struct {
	store    *Store
	queriers map[chain.Network]Querier
}

// New creates a synchronizer. Networks without a querier (Bitcoin) are
// never resolved; their balances stay absent.
func New(queriers map[chain.Network]Querier) *Synchronizer {
	return &Synchronizer{
		store:    NewStore(),
		queriers: queriers,
	}
}

// Store exposes the underlying balance store.
func (s *Synchronizer) Store() *Store {
	return s.store
}

// Balance returns the last resolved balance for an address in atomic units.
func (s *Synchronizer) Balance(address string) (*big.Int, bool) {
	return s.store.Get(address)
}

// Refresh issues one balance query for an address and records the result.
// Fetch failures resolve to 0 and are logged, not surfaced; balance
// display is informational, not safety-critical.
func (s *Synchronizer) Refresh(ctx context.Context, network chain.Network, address string) *big.Int {
	q, ok := s.queriers[network]
	if !ok {
		log.Balance.Debug().
			Str("network", string(network)).
			Msg("no balance endpoint for network, leaving unresolved")
		return nil
	}

	v, err := q.Fetch(ctx, address)
	if err != nil {
		log.Balance.Warn().
			Str("network", string(network)).
			Str("address", address).
			Err(err).
			Msg("balance fetch failed, recording zero")
		v = big.NewInt(0)
	}

	s.store.set(address, v)
	return v
}

// RefreshAll refreshes every address concurrently and waits for all
// fetches to land. Completions are independent and unordered.
func (s *Synchronizer) RefreshAll(ctx context.Context, network chain.Network, addresses []string) {
	var wg sync.WaitGroup
	for _, addr := range addresses {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			s.Refresh(ctx, network, addr)
		}(addr)
	}
	wg.Wait()
}
