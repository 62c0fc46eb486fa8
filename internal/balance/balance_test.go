package balance

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/nexvault/nexvault/internal/chain"
)

// fakeQuerier returns configured balances per address.
type fakeQuerier struct {
	mu       sync.Mutex
	balances map[string]*big.Int
	err      error
	calls    int
}

func (f *fakeQuerier) Fetch(ctx context.Context, address string) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.balances[address]; ok {
		return new(big.Int).Set(v), nil
	}
	return big.NewInt(0), nil
}

func TestRefresh_RecordsBalance(t *testing.T) {
	q := &fakeQuerier{balances: map[string]*big.Int{"addr1": big.NewInt(1500)}}
	s := New(map[chain.Network]Querier{chain.Solana: q})

	s.Refresh(context.Background(), chain.Solana, "addr1")

	got, ok := s.Balance("addr1")
	if !ok {
		t.Fatal("balance should be resolved after Refresh")
	}
	if got.Cmp(big.NewInt(1500)) != 0 {
		t.Errorf("Balance() = %s, want 1500", got)
	}
}

func TestRefresh_FetchErrorRecordsZero(t *testing.T) {
	q := &fakeQuerier{err: errors.New("rpc down")}
	s := New(map[chain.Network]Querier{chain.Solana: q})

	s.Refresh(context.Background(), chain.Solana, "addr1")

	got, ok := s.Balance("addr1")
	if !ok {
		t.Fatal("failed fetch should still resolve the balance")
	}
	if got.Sign() != 0 {
		t.Errorf("Balance() = %s, want 0", got)
	}
}

func TestRefresh_NoQuerierLeavesUnresolved(t *testing.T) {
	s := New(map[chain.Network]Querier{})

	s.Refresh(context.Background(), chain.Bitcoin, "addr1")

	if _, ok := s.Balance("addr1"); ok {
		t.Error("network without a querier should stay unresolved")
	}
}

func TestRefreshAll(t *testing.T) {
	q := &fakeQuerier{balances: map[string]*big.Int{
		"a": big.NewInt(1),
		"b": big.NewInt(2),
		"c": big.NewInt(3),
	}}
	s := New(map[chain.Network]Querier{chain.Ethereum: q})

	s.RefreshAll(context.Background(), chain.Ethereum, []string{"a", "b", "c"})

	for addr, want := range map[string]int64{"a": 1, "b": 2, "c": 3} {
		got, ok := s.Balance(addr)
		if !ok {
			t.Fatalf("%s unresolved after RefreshAll", addr)
		}
		if got.Cmp(big.NewInt(want)) != 0 {
			t.Errorf("Balance(%s) = %s, want %d", addr, got, want)
		}
	}
	if q.calls != 3 {
		t.Errorf("querier called %d times, want 3", q.calls)
	}
}

func TestStore_Forget(t *testing.T) {
	q := &fakeQuerier{balances: map[string]*big.Int{"a": big.NewInt(9)}}
	s := New(map[chain.Network]Querier{chain.Solana: q})

	s.Refresh(context.Background(), chain.Solana, "a")
	s.Store().Forget("a")

	if _, ok := s.Balance("a"); ok {
		t.Error("balance should be unresolved after Forget")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	q := &fakeQuerier{balances: map[string]*big.Int{"a": big.NewInt(100)}}
	s := New(map[chain.Network]Querier{chain.Solana: q})
	s.Refresh(context.Background(), chain.Solana, "a")

	got, _ := s.Balance("a")
	got.SetInt64(0)

	again, _ := s.Balance("a")
	if again.Cmp(big.NewInt(100)) != 0 {
		t.Error("mutating a returned balance changed the stored value")
	}
}
