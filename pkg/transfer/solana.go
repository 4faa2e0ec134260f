package transfer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"itiza/pkg/tokens"
	"itiza/pkg/types"
	"itiza/pkg/wallet"
)

// Per-signature network fee in lamports, reserved on top of native sends
const feeReserveLamports = 5000

// Gifter sends token gifts straight to a recipient wallet, covering both
// native SOL and SPL tokens from the registry
type Gifter struct {
	client        *rpc.Client
	wallet        wallet.Wallet
	commitment    rpc.CommitmentType
	skipPreflight bool
}

// NewGifter creates a gifter over the given RPC endpoint and wallet
func NewGifter(rpcURL, commitment string, skipPreflight bool, w wallet.Wallet) (*Gifter, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured")
	}
	if w == nil {
		return nil, fmt.Errorf("wallet is required")
	}

	return &Gifter{
		client:        rpc.New(rpcURL),
		wallet:        w,
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

// Send gifts tokens to the recipient and waits for on-chain confirmation
func (g *Gifter) Send(ctx context.Context, req types.TransferRequest) (solana.Signature, error) {
	if !g.wallet.Connected() || g.wallet.PublicKey().IsZero() {
		return solana.Signature{}, fmt.Errorf("wallet is not connected")
	}
	if !(req.Amount > 0) {
		return solana.Signature{}, fmt.Errorf("amount must be greater than 0")
	}

	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("invalid recipient address: %w", err)
	}

	tok, err := tokens.Resolve(req.Token)
	if err != nil {
		return solana.Signature{}, err
	}

	if tok.Native {
		return g.sendNative(ctx, recipient, req.Amount)
	}
	return g.sendSPL(ctx, recipient, tok, req.Amount)
}

// Balance returns the wallet's balance of the given token as a decimal value
func (g *Gifter) Balance(ctx context.Context, tok tokens.Token) (float64, error) {
	owner := g.wallet.PublicKey()

	if tok.Native {
		balance, err := g.client.GetBalance(ctx, owner, g.commitment)
		if err != nil {
			return 0, fmt.Errorf("failed to get balance: %w", err)
		}
		return float64(balance.Value) / 1e9, nil
	}

	mint := solana.MustPublicKeyFromBase58(tok.Address)
	account, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, fmt.Errorf("failed to derive token account: %w", err)
	}

	raw, err := g.tokenBalance(ctx, account)
	if err != nil {
		return 0, err
	}

	return float64(raw) / float64(unitMultiplier(tok.Decimals)), nil
}

// sendNative transfers SOL through the system program
func (g *Gifter) sendNative(ctx context.Context, recipient solana.PublicKey, amount float64) (solana.Signature, error) {
	lamports := uint64(amount * 1e9)

	balance, err := g.client.GetBalance(ctx, g.wallet.PublicKey(), g.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get balance: %w", err)
	}

	minRequired := lamports + feeReserveLamports
	if balance.Value < minRequired {
		return solana.Signature{}, fmt.Errorf("insufficient balance: have %.9f SOL, need %.9f SOL (including fees)",
			float64(balance.Value)/1e9, float64(minRequired)/1e9)
	}

	instruction := system.NewTransferInstruction(
		lamports,
		g.wallet.PublicKey(),
		recipient,
	).Build()

	return g.submit(ctx, []solana.Instruction{instruction})
}

// sendSPL transfers an SPL token, creating the recipient's associated
// token account if it does not exist yet
func (g *Gifter) sendSPL(ctx context.Context, recipient solana.PublicKey, tok tokens.Token, amount float64) (solana.Signature, error) {
	mint := solana.MustPublicKeyFromBase58(tok.Address)
	owner := g.wallet.PublicKey()

	units := uint64(amount * float64(unitMultiplier(tok.Decimals)))

	source, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive source token account: %w", err)
	}

	balance, err := g.tokenBalance(ctx, source)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get token balance: %w", err)
	}
	if balance < units {
		multiplier := float64(unitMultiplier(tok.Decimals))
		return solana.Signature{}, fmt.Errorf("insufficient %s balance: have %f, need %f",
			tok.Label, float64(balance)/multiplier, float64(units)/multiplier)
	}

	dest, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive destination token account: %w", err)
	}

	destExists, err := g.accountExists(ctx, dest)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to check destination account: %w", err)
	}

	instructions := []solana.Instruction{}
	if !destExists {
		createAccountIx := associatedtokenaccount.NewCreateInstruction(
			owner,     // payer
			recipient, // wallet
			mint,      // mint
		).Build()
		instructions = append(instructions, createAccountIx)
	}

	transferIx := token.NewTransferInstruction(
		units,
		source,
		dest,
		owner,
		[]solana.PublicKey{}, // no multisig
	).Build()
	instructions = append(instructions, transferIx)

	return g.submit(ctx, instructions)
}

// submit builds a transaction over a fresh blockhash, signs it through
// the wallet, sends it, and waits for confirmation
func (g *Gifter) submit(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	signer, ok := g.wallet.(wallet.TransactionSigner)
	if !ok {
		return solana.Signature{}, fmt.Errorf("wallet does not support transaction signing")
	}

	recent, err := g.client.GetLatestBlockhash(ctx, g.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(g.wallet.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, err
	}

	opts := rpc.TransactionOpts{
		SkipPreflight:       g.skipPreflight,
		PreflightCommitment: g.commitment,
	}

	sig, err := g.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err := g.confirm(ctx, sig, recent.Value.LastValidBlockHeight); err != nil {
		return sig, err
	}

	return sig, nil
}

// confirm waits until the signature reaches the target commitment or the
// blockhash window closes
func (g *Gifter) confirm(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		statuses, err := g.client.GetSignatureStatuses(ctx, true, sig)
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

		height, err := g.client.GetBlockHeight(ctx, g.commitment)
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

func (g *Gifter) tokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	info, err := g.client.GetTokenAccountBalance(ctx, account, g.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get token balance: %w", err)
	}

	amount, err := strconv.ParseUint(info.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token balance: %w", err)
	}

	return amount, nil
}

func (g *Gifter) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	info, err := g.client.GetAccountInfo(ctx, account)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, err
	}

	return info.Value != nil, nil
}

func unitMultiplier(decimals uint8) uint64 {
	multiplier := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		multiplier *= 10
	}
	return multiplier
}
