// Package engine validates, prices, and submits transfer transactions.
package engine

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/nexvault/nexvault/internal/chain"
	"github.com/nexvault/nexvault/internal/log"
	"github.com/nexvault/nexvault/internal/registry"
)

// State tracks a submission through its lifecycle:
// Input -> Confirming -> Success | Error. The only recovery transition is
// Error -> Input: a retry restarts validation from scratch.
type State int

const (
	StateInput State = iota
	StateConfirming
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateInput:
		return "input"
	case StateConfirming:
		return "confirming"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Request is a proposed transfer. Transient: built when the send flow
// opens, consumed on submission, never persisted.
type Request struct {
	Network   chain.Network
	Account   registry.Account
	Recipient string
	Amount    string // decimal, native units
}

// Result is a successful submission's transaction hash or signature.
type Result struct {
	Hash string
}

// Submitter is the per-network transfer capability. One implementation per
// network variant; the engine never branches on network identity itself.
type Submitter interface {
	// ValidateAddress checks that an address parses in the network's
	// native encoding.
	ValidateAddress(address string) error
	// EstimateFee returns the expected transfer fee in atomic units.
	EstimateFee(ctx context.Context, req Request, amount *big.Int) (*big.Int, error)
	// Submit signs and broadcasts the transfer, waiting for confirmation.
	// The amount is in atomic units.
	Submit(ctx context.Context, req Request, amount *big.Int) (string, error)
}

// BalanceSource supplies the most recently refreshed balance per address,
// in atomic units.
type BalanceSource interface {
	Balance(address string) (*big.Int, bool)
}

// settleDelay is how long after a successful submission the engine waits
// before re-polling balances on the active network. Best-effort display
// refresh, not a confirmation guarantee.
const settleDelay = 2 * time.Second

// Engine coordinates validation, fee estimation, sufficiency checks, and
// network-specific submission.
type Engine struct {
	submitters map[chain.Network]Submitter
	balances   BalanceSource

	// onSettled is invoked settleDelay after a successful submission.
	onSettled func(network chain.Network)
	// afterFunc is time.AfterFunc unless a test injects its own timer.
	afterFunc func(d time.Duration, f func()) *time.Timer

	timerMu sync.Mutex
	pending *time.Timer
}

// Option configures an Engine.
type Option func(*Engine)

// WithSettledFunc sets the callback run after the post-submission delay.
func WithSettledFunc(fn func(network chain.Network)) Option {
	return func(e *Engine) { e.onSettled = fn }
}

// WithAfterFunc replaces the timer used for the post-submission refresh,
// letting tests fire it deterministically.
func WithAfterFunc(fn func(d time.Duration, f func()) *time.Timer) Option {
	return func(e *Engine) { e.afterFunc = fn }
}

// New creates an engine over the given per-network submitters.
func New(submitters map[chain.Network]Submitter, balances BalanceSource, opts ...Option) *Engine {
	e := &Engine{
		submitters: submitters,
		balances:   balances,
		afterFunc:  time.AfterFunc,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// submitter returns the network's submitter.
func (e *Engine) submitter(network chain.Network) (Submitter, error) {
	s, ok := e.submitters[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, network)
	}
	return s, nil
}

// parseAmount converts the request's decimal amount to atomic units,
// folding unparsable input into the non-positive-amount error kind.
func parseAmount(req Request) (*big.Int, error) {
	params, err := chain.Get(req.Network)
	if err != nil {
		return nil, err
	}
	amount, err := params.ParseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNonPositiveAmount, err)
	}
	if amount.Sign() <= 0 {
		return nil, ErrNonPositiveAmount
	}
	return amount, nil
}

// Validate checks a request synchronously, before any network call.
// Returns the first failure: missing recipient, non-positive amount, then
// invalid address.
func (e *Engine) Validate(req Request) error {
	if req.Recipient == "" {
		return ErrMissingRecipient
	}
	if _, err := parseAmount(req); err != nil {
		return err
	}
	s, err := e.submitter(req.Network)
	if err != nil {
		return err
	}
	return s.ValidateAddress(req.Recipient)
}

// EstimateFee returns the expected network fee in atomic units.
func (e *Engine) EstimateFee(ctx context.Context, req Request) (*big.Int, error) {
	s, err := e.submitter(req.Network)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req)
	if err != nil {
		return nil, err
	}
	return s.EstimateFee(ctx, req, amount)
}

// CheckSufficientFunds reports whether the source account's most recently
// refreshed balance covers amount + fee. Exact equality passes. An
// unresolved balance counts as zero. The balance may be stale; an
// optimistic false positive here is caught by the network on broadcast.
func (e *Engine) CheckSufficientFunds(req Request, fee *big.Int) (bool, error) {
	amount, err := parseAmount(req)
	if err != nil {
		return false, err
	}

	balance, ok := e.balances.Balance(req.Account.PublicAddress)
	if !ok {
		balance = big.NewInt(0)
	}

	need := new(big.Int).Add(amount, fee)
	return need.Cmp(balance) <= 0, nil
}

// Submit runs the full submission path: re-validate, estimate the fee,
// re-check funds, then dispatch to the network submitter and wait for
// confirmation. Every failure leaves the system in the pre-submission
// state: no registry mutation, no partial state.
func (e *Engine) Submit(ctx context.Context, req Request) (*Result, error) {
	if err := e.Validate(req); err != nil {
		return nil, err
	}

	amount, err := parseAmount(req)
	if err != nil {
		return nil, err
	}

	s, err := e.submitter(req.Network)
	if err != nil {
		return nil, err
	}

	fee, err := s.EstimateFee(ctx, req, amount)
	if err != nil {
		return nil, wrapSubmission(err)
	}

	ok, err := e.CheckSufficientFunds(req, fee)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}

	log.Engine.Info().
		Str("network", string(req.Network)).
		Str("from", req.Account.PublicAddress).
		Str("to", req.Recipient).
		Str("amount", req.Amount).
		Str("state", StateConfirming.String()).
		Msg("submitting transfer")

	hash, err := s.Submit(ctx, req, amount)
	if err != nil {
		log.Engine.Error().
			Str("network", string(req.Network)).
			Str("state", StateError.String()).
			Err(err).
			Msg("transfer failed")
		return nil, wrapSubmission(err)
	}

	log.Engine.Info().
		Str("network", string(req.Network)).
		Str("hash", hash).
		Str("state", StateSuccess.String()).
		Msg("transfer confirmed")

	e.scheduleSettleRefresh(req.Network)

	return &Result{Hash: hash}, nil
}

// scheduleSettleRefresh arms the delayed post-submission balance refresh,
// replacing any refresh still pending.
func (e *Engine) scheduleSettleRefresh(network chain.Network) {
	if e.onSettled == nil {
		return
	}

	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if e.pending != nil {
		e.pending.Stop()
	}
	e.pending = e.afterFunc(settleDelay, func() {
		e.onSettled(network)
	})
}

// CancelPendingRefresh stops a scheduled post-submission refresh, if any.
func (e *Engine) CancelPendingRefresh() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}
