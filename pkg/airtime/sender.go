package airtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"itiza/pkg/relayer"
	"itiza/pkg/types"
	"itiza/pkg/wallet"
)

// Stage identifies a step of the airtime submission flow
type Stage string

const (
	StageIdle          Stage = "idle"
	StagePlanRequested Stage = "plan_requested"
	StageSigning       Stage = "signing"
	StageSubmitting    Stage = "submitting"
	StageConfirming    Stage = "confirming"
	StagePolling       Stage = "polling"
	StageSucceeded     Stage = "succeeded"
	StageFailed        Stage = "failed"
)

// RelayerClient is the slice of the relayer API used by the flow
type RelayerClient interface {
	SendAirtime(ctx context.Context, req *relayer.AirtimeRequest) (*relayer.Plan, error)
	ConfirmAirtimeTransaction(ctx context.Context, id string) (*relayer.ConfirmResult, error)
}

// Policy controls the bounded retry and polling behavior of a submission
type Policy struct {
	SendMaxRetries uint          // network-level resubmission budget per transaction
	PollAttempts   int           // delivery confirmation attempts
	PollInterval   time.Duration // wait between delivery confirmations
}

// DefaultPolicy matches the product's defaults: 5 send retries, 3 poll
// attempts 5 seconds apart
func DefaultPolicy() Policy {
	return Policy{
		SendMaxRetries: 5,
		PollAttempts:   3,
		PollInterval:   5 * time.Second,
	}
}

// Receipt summarizes a submission after the on-chain half completed
type Receipt struct {
	ReferenceID string
	Signatures  []solana.Signature
	Delivery    types.DeliveryStatus
}

// StageFunc receives progress callbacks as the flow advances
type StageFunc func(stage Stage)

// Sender turns a relayer transaction plan into confirmed on-chain state
// and then verifies the off-chain airtime delivery. One Sender may run
// many submissions; each submission only uses locally scoped state.
type Sender struct {
	relayer RelayerClient
	chain   ChainClient
	wallet  wallet.Wallet
	policy  Policy
	onStage StageFunc
}

// NewSender creates a submission flow over the given dependencies
func NewSender(rc RelayerClient, chain ChainClient, w wallet.Wallet, policy Policy) *Sender {
	if policy.SendMaxRetries == 0 {
		policy.SendMaxRetries = DefaultPolicy().SendMaxRetries
	}
	if policy.PollAttempts <= 0 {
		policy.PollAttempts = DefaultPolicy().PollAttempts
	}
	if policy.PollInterval <= 0 {
		policy.PollInterval = DefaultPolicy().PollInterval
	}

	return &Sender{
		relayer: rc,
		chain:   chain,
		wallet:  w,
		policy:  policy,
	}
}

// OnStage registers a progress callback
func (s *Sender) OnStage(fn StageFunc) {
	s.onStage = fn
}

func (s *Sender) stage(st Stage) {
	if s.onStage != nil {
		s.onStage(st)
	}
}

// Send runs one full submission: validate, acquire the plan, sign and
// submit each transaction in order, confirm each on-chain, then poll the
// relayer for the off-chain delivery. The swap transaction of a pair must
// confirm before the airtime transaction is signed; a confirmation error
// aborts the remainder. Cancelling ctx stops the flow at the next
// suspension point but never rolls back a confirmed transaction.
func (s *Sender) Send(ctx context.Context, req types.GiftRequest) (*Receipt, error) {
	// Preconditions, checked before any network call
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return nil, fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}
	if !(req.Amount > 0) {
		return nil, fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if s.wallet == nil || !s.wallet.Connected() || s.wallet.PublicKey().IsZero() {
		return nil, ErrWalletNotConnected
	}

	s.stage(StagePlanRequested)
	plan, err := s.relayer.SendAirtime(ctx, &relayer.AirtimeRequest{
		PhoneNumber: req.PhoneNumber,
		Amount:      req.Amount,
		Token:       req.Token,
		UserAddress: s.wallet.PublicKey().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayer, err)
	}

	txs, err := plan.Transactions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayer, err)
	}

	receipt := &Receipt{
		ReferenceID: plan.ID,
		Delivery:    types.DeliveryPending,
	}

	for _, encoded := range txs {
		tx, err := decodeTransaction(encoded)
		if err != nil {
			return receipt, fmt.Errorf("%w: %v", ErrRelayer, err)
		}

		s.stage(StageSigning)
		signer, ok := s.wallet.(wallet.TransactionSigner)
		if !ok {
			return receipt, ErrSigningUnsupported
		}
		if err := signer.SignTransaction(tx); err != nil {
			return receipt, fmt.Errorf("%w: %v", ErrSigningRejected, err)
		}

		raw, err := tx.MarshalBinary()
		if err != nil {
			return receipt, fmt.Errorf("%w: failed to serialize transaction: %v", ErrSubmissionFailed, err)
		}

		s.stage(StageSubmitting)
		_, lastValidBlockHeight, err := s.chain.LatestBlockhash(ctx)
		if err != nil {
			return receipt, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}

		sig, err := s.chain.SendRawTransaction(ctx, raw, s.policy.SendMaxRetries)
		if err != nil {
			return receipt, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		receipt.Signatures = append(receipt.Signatures, sig)

		s.stage(StageConfirming)
		if err := s.chain.ConfirmTransaction(ctx, sig, lastValidBlockHeight); err != nil {
			return receipt, fmt.Errorf("%w: transaction %s: %v", ErrSubmissionFailed, sig, err)
		}
	}

	s.stage(StagePolling)
	if err := s.pollDelivery(ctx, plan.ID); err != nil {
		receipt.Delivery = types.DeliveryFailed
		s.stage(StageFailed)
		return receipt, err
	}

	receipt.Delivery = types.DeliverySuccess
	s.stage(StageSucceeded)
	return receipt, nil
}

// pollDelivery asks the relayer about the off-chain delivery until it
// reports success, reports an explicit failure, or the attempt ceiling
// is reached
func (s *Sender) pollDelivery(ctx context.Context, id string) error {
	for attempt := 0; attempt < s.policy.PollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.policy.PollInterval):
			}
		}

		status, err := s.relayer.ConfirmAirtimeTransaction(ctx, id)
		if err != nil {
			// Transient relayer errors consume an attempt
			continue
		}

		if status.Success {
			return nil
		}

		switch strings.ToLower(status.Status) {
		case "failed", "error":
			if status.Message != "" {
				return fmt.Errorf("%w: %s", ErrDeliveryFailed, status.Message)
			}
			return ErrDeliveryFailed
		}
		// Still pending, keep polling
	}

	return ErrDeliveryTimeout
}

func decodeTransaction(encoded string) (*solana.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 transaction: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	return tx, nil
}
