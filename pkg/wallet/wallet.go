package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Wallet exposes the connection state and public key of the user's wallet.
// Key material stays inside the implementation.
type Wallet interface {
	PublicKey() solana.PublicKey
	Connected() bool
}

// TransactionSigner is the optional signing capability of a Wallet.
// Callers assert for it before signing; a wallet that does not implement
// it cannot authorize transactions.
type TransactionSigner interface {
	SignTransaction(tx *solana.Transaction) error
}

// Keypair is a Wallet backed by a locally held private key
type Keypair struct {
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewKeypair creates a wallet from a Base58-encoded private key
func NewKeypair(base58Key string) (*Keypair, error) {
	if base58Key == "" {
		return nil, fmt.Errorf("private key not configured")
	}

	privateKey, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Keypair{
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// PublicKey returns the wallet's public key
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.publicKey
}

// Connected always returns true for a local keypair
func (k *Keypair) Connected() bool {
	return true
}

// SignTransaction signs the transaction in place with the wallet's key.
// Partial signing: transactions built by the relayer may carry signer slots
// the wallet does not own.
func (k *Keypair) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(k.publicKey) {
			return &k.privateKey
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

var _ Wallet = (*Keypair)(nil)
var _ TransactionSigner = (*Keypair)(nil)
