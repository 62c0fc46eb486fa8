package engine

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/nexvault/nexvault/internal/chain"
	"github.com/nexvault/nexvault/internal/registry"
)

// fakeSubmitter is a scriptable Submitter that records its calls.
type fakeSubmitter struct {
	addressErr error
	fee        *big.Int
	feeErr     error
	hash       string
	submitErr  error

	validateCalls int
	feeCalls      int
	submitCalls   int
}

func (f *fakeSubmitter) ValidateAddress(address string) error {
	f.validateCalls++
	return f.addressErr
}

func (f *fakeSubmitter) EstimateFee(ctx context.Context, req Request, amount *big.Int) (*big.Int, error) {
	f.feeCalls++
	if f.feeErr != nil {
		return nil, f.feeErr
	}
	return new(big.Int).Set(f.fee), nil
}

func (f *fakeSubmitter) Submit(ctx context.Context, req Request, amount *big.Int) (string, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.hash, nil
}

// fakeBalances serves fixed balances per address.
type fakeBalances map[string]*big.Int

func (f fakeBalances) Balance(address string) (*big.Int, bool) {
	v, ok := f[address]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(v), true
}

func solRequest(amount string) Request {
	return Request{
		Network:   chain.Solana,
		Account:   registry.Account{Index: 0, PublicAddress: "sender", PrivateKeyMaterial: "irrelevant"},
		Recipient: "recipient",
		Amount:    amount,
	}
}

func newTestEngine(sub *fakeSubmitter, balances fakeBalances, opts ...Option) *Engine {
	return New(map[chain.Network]Submitter{chain.Solana: sub}, balances, opts...)
}

func TestValidate_Order(t *testing.T) {
	sub := &fakeSubmitter{addressErr: ErrInvalidAddress}
	e := newTestEngine(sub, fakeBalances{})

	// Missing recipient wins over everything else.
	req := solRequest("bogus")
	req.Recipient = ""
	if err := e.Validate(req); !errors.Is(err, ErrMissingRecipient) {
		t.Errorf("Validate() error = %v, want ErrMissingRecipient", err)
	}
	if sub.validateCalls != 0 {
		t.Error("address validated before earlier checks failed")
	}

	// Bad amount wins over bad address.
	if err := e.Validate(solRequest("abc")); !errors.Is(err, ErrNonPositiveAmount) {
		t.Errorf("Validate() error = %v, want ErrNonPositiveAmount", err)
	}
	if sub.validateCalls != 0 {
		t.Error("address validated before amount check failed")
	}

	// Address checked last.
	if err := e.Validate(solRequest("1")); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Validate() error = %v, want ErrInvalidAddress", err)
	}
	if sub.validateCalls != 1 {
		t.Errorf("validateCalls = %d, want 1", sub.validateCalls)
	}
}

func TestValidate_NonPositiveAmounts(t *testing.T) {
	e := newTestEngine(&fakeSubmitter{}, fakeBalances{})

	for _, amount := range []string{"0", "-1", "0.0", ""} {
		if err := e.Validate(solRequest(amount)); !errors.Is(err, ErrNonPositiveAmount) {
			t.Errorf("Validate(amount=%q) error = %v, want ErrNonPositiveAmount", amount, err)
		}
	}
}

func TestValidate_UnsupportedNetwork(t *testing.T) {
	e := newTestEngine(&fakeSubmitter{}, fakeBalances{})

	req := solRequest("1")
	req.Network = chain.Ethereum // no submitter registered
	if err := e.Validate(req); !errors.Is(err, ErrUnsupportedNetwork) {
		t.Errorf("Validate() error = %v, want ErrUnsupportedNetwork", err)
	}
}

func TestSubmit_ValidationFailureSkipsNetwork(t *testing.T) {
	sub := &fakeSubmitter{addressErr: ErrInvalidAddress, fee: big.NewInt(5000)}
	e := newTestEngine(sub, fakeBalances{})

	if _, err := e.Submit(context.Background(), solRequest("1")); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("Submit() error = %v, want ErrInvalidAddress", err)
	}
	if sub.feeCalls != 0 || sub.submitCalls != 0 {
		t.Error("network calls made despite validation failure")
	}
}

func TestCheckSufficientFunds(t *testing.T) {
	// amount 1 SOL = 1e9 lamports, fee 5000.
	need := big.NewInt(1_000_005_000)

	tests := []struct {
		name    string
		balance *big.Int
		want    bool
	}{
		{"covers with surplus", big.NewInt(2_000_000_000), true},
		{"exact equality passes", need, true},
		{"one short fails", new(big.Int).Sub(need, big.NewInt(1)), false},
		{"zero fails", big.NewInt(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&fakeSubmitter{}, fakeBalances{"sender": tt.balance})
			got, err := e.CheckSufficientFunds(solRequest("1"), big.NewInt(5000))
			if err != nil {
				t.Fatalf("CheckSufficientFunds() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckSufficientFunds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckSufficientFunds_UnresolvedBalanceIsZero(t *testing.T) {
	e := newTestEngine(&fakeSubmitter{}, fakeBalances{})

	got, err := e.CheckSufficientFunds(solRequest("1"), big.NewInt(0))
	if err != nil {
		t.Fatalf("CheckSufficientFunds() error: %v", err)
	}
	if got {
		t.Error("unresolved balance should not cover any amount")
	}
}

func TestSubmit_InsufficientFunds(t *testing.T) {
	sub := &fakeSubmitter{fee: big.NewInt(5000), hash: "sig"}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(100)})

	if _, err := e.Submit(context.Background(), solRequest("1")); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Submit() error = %v, want ErrInsufficientFunds", err)
	}
	if sub.submitCalls != 0 {
		t.Error("Submit dispatched despite insufficient funds")
	}
}

func TestSubmit_Success(t *testing.T) {
	sub := &fakeSubmitter{fee: big.NewInt(5000), hash: "sig123"}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(2_000_000_000)})

	result, err := e.Submit(context.Background(), solRequest("1"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if result.Hash != "sig123" {
		t.Errorf("Hash = %q, want %q", result.Hash, "sig123")
	}
}

func TestSubmit_WrapsProviderError(t *testing.T) {
	sub := &fakeSubmitter{fee: big.NewInt(5000), submitErr: errors.New("blockhash not found")}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(2_000_000_000)})

	_, err := e.Submit(context.Background(), solRequest("1"))
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("Submit() error = %v, want *SubmissionError", err)
	}
	if se.Unwrap() != sub.submitErr {
		t.Errorf("Unwrap() = %v, want %v", se.Unwrap(), sub.submitErr)
	}
}

type codedError struct{ code int }

func (e *codedError) Error() string  { return "provider rejected" }
func (e *codedError) ErrorCode() int { return e.code }

func TestSubmit_ExtractsProviderCode(t *testing.T) {
	sub := &fakeSubmitter{fee: big.NewInt(5000), submitErr: &codedError{code: -32002}}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(2_000_000_000)})

	_, err := e.Submit(context.Background(), solRequest("1"))
	var se *SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("Submit() error = %v, want *SubmissionError", err)
	}
	if se.Code != -32002 {
		t.Errorf("Code = %d, want -32002", se.Code)
	}
}

func TestSubmit_SchedulesSettleRefresh(t *testing.T) {
	var settled []chain.Network
	var fire func()

	sub := &fakeSubmitter{fee: big.NewInt(5000), hash: "sig"}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(2_000_000_000)},
		WithSettledFunc(func(n chain.Network) { settled = append(settled, n) }),
		WithAfterFunc(func(d time.Duration, f func()) *time.Timer {
			if d != settleDelay {
				t.Errorf("delay = %v, want %v", d, settleDelay)
			}
			fire = f
			return time.NewTimer(time.Hour)
		}),
	)

	if _, err := e.Submit(context.Background(), solRequest("1")); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if fire == nil {
		t.Fatal("no refresh scheduled after successful submission")
	}
	if len(settled) != 0 {
		t.Fatal("refresh ran before the timer fired")
	}

	fire()
	if len(settled) != 1 || settled[0] != chain.Solana {
		t.Errorf("settled = %v, want [sol]", settled)
	}
}

func TestSubmit_FailureDoesNotScheduleRefresh(t *testing.T) {
	scheduled := false

	sub := &fakeSubmitter{fee: big.NewInt(5000), submitErr: errors.New("rejected")}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(2_000_000_000)},
		WithSettledFunc(func(chain.Network) {}),
		WithAfterFunc(func(d time.Duration, f func()) *time.Timer {
			scheduled = true
			return time.NewTimer(time.Hour)
		}),
	)

	e.Submit(context.Background(), solRequest("1"))
	if scheduled {
		t.Error("refresh scheduled despite failed submission")
	}
}

func TestCancelPendingRefresh(t *testing.T) {
	sub := &fakeSubmitter{fee: big.NewInt(5000), hash: "sig"}
	e := newTestEngine(sub, fakeBalances{"sender": big.NewInt(2_000_000_000)},
		WithSettledFunc(func(chain.Network) {
			t.Error("refresh ran after cancellation")
		}),
	)

	if _, err := e.Submit(context.Background(), solRequest("1")); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	e.CancelPendingRefresh()

	// Give a stopped timer no chance to have fired early.
	time.Sleep(10 * time.Millisecond)
}

func TestEstimateFee(t *testing.T) {
	sub := &fakeSubmitter{fee: big.NewInt(5000)}
	e := newTestEngine(sub, fakeBalances{})

	fee, err := e.EstimateFee(context.Background(), solRequest("1"))
	if err != nil {
		t.Fatalf("EstimateFee() error: %v", err)
	}
	if fee.Cmp(big.NewInt(5000)) != 0 {
		t.Errorf("EstimateFee() = %s, want 5000", fee)
	}
}

func TestBitcoinSubmitter(t *testing.T) {
	sub := NewBitcoin()

	if err := sub.ValidateAddress("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("ValidateAddress() error = %v, want ErrInvalidAddress", err)
	}

	fee, err := sub.EstimateFee(context.Background(), Request{}, big.NewInt(1))
	if err != nil {
		t.Fatalf("EstimateFee() error: %v", err)
	}
	if fee.Sign() != 0 {
		t.Errorf("EstimateFee() = %s, want 0", fee)
	}

	if _, err := sub.Submit(context.Background(), Request{}, big.NewInt(1)); !errors.Is(err, ErrUnsupportedNetwork) {
		t.Errorf("Submit() error = %v, want ErrUnsupportedNetwork", err)
	}
}
