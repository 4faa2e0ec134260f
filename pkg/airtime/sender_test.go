package airtime

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itiza/pkg/relayer"
	"itiza/pkg/types"
)

// planTransaction builds a serialized unsigned transaction of the kind
// the relayer returns
func planTransaction(t *testing.T) string {
	t.Helper()

	payer := solana.NewWallet()
	recipient := solana.NewWallet()

	instruction := system.NewTransferInstruction(
		1000,
		payer.PublicKey(),
		recipient.PublicKey(),
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		solana.Hash{},
		solana.TransactionPayer(payer.PublicKey()),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(raw)
}

type fakeRelayer struct {
	plan    *relayer.Plan
	planErr error

	results    []*relayer.ConfirmResult
	confirmErr error

	sendCalls    int
	confirmCalls int
}

func (f *fakeRelayer) SendAirtime(ctx context.Context, req *relayer.AirtimeRequest) (*relayer.Plan, error) {
	f.sendCalls++
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.plan, nil
}

func (f *fakeRelayer) ConfirmAirtimeTransaction(ctx context.Context, id string) (*relayer.ConfirmResult, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	if len(f.results) == 0 {
		return &relayer.ConfirmResult{Success: false, Status: "pending"}, nil
	}
	result := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return result, nil
}

type fakeChain struct {
	sendErr     error
	confirmErrs []error

	sendCalls    int
	confirmCalls int
}

func (f *fakeChain) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	return solana.Hash{}, 100, nil
}

func (f *fakeChain) SendRawTransaction(ctx context.Context, raw []byte, maxRetries uint) (solana.Signature, error) {
	f.sendCalls++
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	var sig solana.Signature
	sum := sha256.Sum256(raw)
	copy(sig[:], sum[:])
	return sig, nil
}

func (f *fakeChain) ConfirmTransaction(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	f.confirmCalls++
	if len(f.confirmErrs) == 0 {
		return nil
	}
	err := f.confirmErrs[0]
	f.confirmErrs = f.confirmErrs[1:]
	return err
}

// watchOnlyWallet is connected but cannot sign
type watchOnlyWallet struct {
	pk solana.PublicKey
}

func (w *watchOnlyWallet) PublicKey() solana.PublicKey { return w.pk }
func (w *watchOnlyWallet) Connected() bool             { return true }

// signingWallet records how many transactions it signed
type signingWallet struct {
	watchOnlyWallet
	signCalls int
	signErr   error
}

func (w *signingWallet) SignTransaction(tx *solana.Transaction) error {
	w.signCalls++
	return w.signErr
}

func newSigningWallet() *signingWallet {
	return &signingWallet{
		watchOnlyWallet: watchOnlyWallet{pk: solana.NewWallet().PublicKey()},
	}
}

func testPolicy() Policy {
	return Policy{
		SendMaxRetries: 5,
		PollAttempts:   3,
		PollInterval:   time.Millisecond,
	}
}

func validRequest() types.GiftRequest {
	return types.GiftRequest{
		PhoneNumber: "2348012345678",
		Amount:      10,
		Token:       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	}
}

func TestSend_RejectsInvalidInputBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name string
		req  types.GiftRequest
	}{
		{"zero amount", types.GiftRequest{PhoneNumber: "2348012345678", Amount: 0}},
		{"negative amount", types.GiftRequest{PhoneNumber: "2348012345678", Amount: -5}},
		{"empty phone", types.GiftRequest{PhoneNumber: "", Amount: 10}},
		{"blank phone", types.GiftRequest{PhoneNumber: "   ", Amount: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &fakeRelayer{}
			chain := &fakeChain{}
			sender := NewSender(rc, chain, newSigningWallet(), testPolicy())

			_, err := sender.Send(context.Background(), tt.req)

			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, rc.sendCalls, "relayer must not be called")
			assert.Zero(t, chain.sendCalls, "network must not be called")
		})
	}
}

func TestSend_WalletNotConnected(t *testing.T) {
	rc := &fakeRelayer{}
	sender := NewSender(rc, &fakeChain{}, nil, testPolicy())

	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrWalletNotConnected)
	assert.Zero(t, rc.sendCalls)
}

func TestSend_SigningUnsupportedAbortsBeforeSubmission(t *testing.T) {
	rc := &fakeRelayer{
		plan:    &relayer.Plan{ID: "ref-1", TxBase64: planTransaction(t)},
		results: []*relayer.ConfirmResult{{Success: true}},
	}
	chain := &fakeChain{}
	w := &watchOnlyWallet{pk: solana.NewWallet().PublicKey()}

	sender := NewSender(rc, chain, w, testPolicy())
	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrSigningUnsupported)
	assert.Zero(t, chain.sendCalls, "no transaction may be submitted without a signature")
}

func TestSend_SingleTransactionSuccess(t *testing.T) {
	rc := &fakeRelayer{
		plan:    &relayer.Plan{ID: "ref-1", TxBase64: planTransaction(t)},
		results: []*relayer.ConfirmResult{{Success: true}},
	}
	chain := &fakeChain{}
	w := newSigningWallet()

	sender := NewSender(rc, chain, w, testPolicy())

	var stages []Stage
	sender.OnStage(func(stage Stage) {
		stages = append(stages, stage)
	})

	receipt, err := sender.Send(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "ref-1", receipt.ReferenceID)
	assert.Equal(t, types.DeliverySuccess, receipt.Delivery)
	assert.Len(t, receipt.Signatures, 1)
	assert.Equal(t, 1, w.signCalls)
	assert.Equal(t, 1, chain.sendCalls)
	assert.Equal(t, 1, rc.confirmCalls)
	assert.Contains(t, stages, StagePolling)
	assert.Equal(t, StageSucceeded, stages[len(stages)-1])
}

func TestSend_PairSubmitsSwapFirstAndAbortsOnSwapFailure(t *testing.T) {
	rc := &fakeRelayer{
		plan: &relayer.Plan{
			ID:                 "ref-2",
			SwapTransaction:    planTransaction(t),
			AirtimeTransaction: planTransaction(t),
		},
	}
	chain := &fakeChain{
		confirmErrs: []error{errors.New("swap program error")},
	}
	w := newSigningWallet()

	sender := NewSender(rc, chain, w, testPolicy())
	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrSubmissionFailed)
	assert.Equal(t, 1, chain.sendCalls, "airtime transaction must never be submitted after a failed swap")
	assert.Equal(t, 1, w.signCalls, "airtime transaction must never be signed after a failed swap")
	assert.Zero(t, rc.confirmCalls, "delivery must not be polled after an on-chain failure")
}

func TestSend_PairSuccessSubmitsBothInOrder(t *testing.T) {
	rc := &fakeRelayer{
		plan: &relayer.Plan{
			ID:                 "ref-3",
			SwapTransaction:    planTransaction(t),
			AirtimeTransaction: planTransaction(t),
		},
		results: []*relayer.ConfirmResult{{Success: true}},
	}
	chain := &fakeChain{}
	w := newSigningWallet()

	sender := NewSender(rc, chain, w, testPolicy())
	receipt, err := sender.Send(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, chain.sendCalls)
	assert.Equal(t, 2, chain.confirmCalls)
	assert.Len(t, receipt.Signatures, 2)
}

func TestSend_IncompletePairRejected(t *testing.T) {
	rc := &fakeRelayer{
		plan: &relayer.Plan{ID: "ref-4", SwapTransaction: planTransaction(t)},
	}
	chain := &fakeChain{}

	sender := NewSender(rc, chain, newSigningWallet(), testPolicy())
	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrRelayer)
	assert.Zero(t, chain.sendCalls)
}

func TestSend_RelayerFailureSurfaced(t *testing.T) {
	rc := &fakeRelayer{planErr: errors.New("service unavailable")}

	sender := NewSender(rc, &fakeChain{}, newSigningWallet(), testPolicy())
	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrRelayer)
}

func TestSend_PollTimeoutAfterExactAttemptCeiling(t *testing.T) {
	rc := &fakeRelayer{
		plan:    &relayer.Plan{ID: "ref-5", TxBase64: planTransaction(t)},
		results: []*relayer.ConfirmResult{{Success: false, Status: "pending"}},
	}

	policy := testPolicy()
	sender := NewSender(rc, &fakeChain{}, newSigningWallet(), policy)

	receipt, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrDeliveryTimeout)
	assert.Equal(t, policy.PollAttempts, rc.confirmCalls, "poll loop must stop at the configured ceiling")
	assert.Equal(t, types.DeliveryFailed, receipt.Delivery)
}

func TestSend_ExplicitDeliveryFailureStopsPolling(t *testing.T) {
	rc := &fakeRelayer{
		plan:    &relayer.Plan{ID: "ref-6", TxBase64: planTransaction(t)},
		results: []*relayer.ConfirmResult{{Success: false, Status: "failed", Message: "provider rejected"}},
	}

	sender := NewSender(rc, &fakeChain{}, newSigningWallet(), testPolicy())
	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 1, rc.confirmCalls)
}

func TestSend_SigningRejectionAbortsBeforeSubmission(t *testing.T) {
	rc := &fakeRelayer{
		plan: &relayer.Plan{ID: "ref-7", TxBase64: planTransaction(t)},
	}
	chain := &fakeChain{}
	w := newSigningWallet()
	w.signErr = errors.New("user declined")

	sender := NewSender(rc, chain, w, testPolicy())
	_, err := sender.Send(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrSigningRejected)
	assert.Zero(t, chain.sendCalls)
}

func TestSend_CancelledContextStopsPolling(t *testing.T) {
	rc := &fakeRelayer{
		plan:    &relayer.Plan{ID: "ref-8", TxBase64: planTransaction(t)},
		results: []*relayer.ConfirmResult{{Success: false, Status: "pending"}},
	}

	policy := testPolicy()
	policy.PollInterval = time.Hour // the cancellation must interrupt the wait

	sender := NewSender(rc, &fakeChain{}, newSigningWallet(), policy)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := sender.Send(ctx, validRequest())

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, rc.confirmCalls)
}
