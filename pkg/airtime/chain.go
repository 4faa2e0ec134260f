package airtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ChainClient abstracts the network RPC operations the flow needs, so it
// can run against a fake in tests
type ChainClient interface {
	// LatestBlockhash returns the current blockhash and the last block
	// height at which a transaction built on it is still valid
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)

	// SendRawTransaction submits a signed transaction with a bounded
	// network-level retry count and returns its signature
	SendRawTransaction(ctx context.Context, raw []byte, maxRetries uint) (solana.Signature, error)

	// ConfirmTransaction blocks until the transaction reaches the target
	// commitment, errors on-chain, or the blockhash window expires
	ConfirmTransaction(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error
}

const confirmCheckInterval = 2 * time.Second

// RPCChain implements ChainClient against a Solana RPC endpoint
type RPCChain struct {
	client        *rpc.Client
	commitment    rpc.CommitmentType
	skipPreflight bool
}

// NewRPCChain connects to the given RPC URL. Commitment is one of
// "finalized", "confirmed", or "processed", defaulting to confirmed.
func NewRPCChain(rpcURL, commitment string, skipPreflight bool) (*RPCChain, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured")
	}

	return &RPCChain{
		client:        rpc.New(rpcURL),
		commitment:    parseCommitment(commitment),
		skipPreflight: skipPreflight,
	}, nil
}

func parseCommitment(commitment string) rpc.CommitmentType {
	switch strings.ToLower(commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "confirmed":
		return rpc.CommitmentConfirmed
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}

// LatestBlockhash fetches a fresh blockhash and its expiry window
func (r *RPCChain) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	recent, err := r.client.GetLatestBlockhash(ctx, r.commitment)
	if err != nil {
		return solana.Hash{}, 0, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	return recent.Value.Blockhash, recent.Value.LastValidBlockHeight, nil
}

// SendRawTransaction submits the serialized transaction
func (r *RPCChain) SendRawTransaction(ctx context.Context, raw []byte, maxRetries uint) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		SkipPreflight:       r.skipPreflight,
		PreflightCommitment: r.commitment,
		MaxRetries:          &maxRetries,
	}

	sig, err := r.client.SendRawTransactionWithOpts(ctx, raw, opts)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig, nil
}

// ConfirmTransaction polls signature statuses until the transaction is
// confirmed, fails, or the chain moves past the blockhash expiry window
func (r *RPCChain) ConfirmTransaction(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(confirmCheckInterval)
	defer ticker.Stop()

	for {
		statuses, err := r.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed: %v", status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		height, err := r.client.GetBlockHeight(ctx, r.commitment)
		if err == nil && height > lastValidBlockHeight {
			return fmt.Errorf("blockhash expired before confirmation (signature %s)", sig)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var _ ChainClient = (*RPCChain)(nil)
