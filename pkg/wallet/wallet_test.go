package wallet

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeypair(t *testing.T) {
	account := solana.NewWallet()

	kp, err := NewKeypair(account.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, account.PublicKey(), kp.PublicKey())
	assert.True(t, kp.Connected())
}

func TestNewKeypair_Invalid(t *testing.T) {
	_, err := NewKeypair("")
	require.Error(t, err)

	_, err = NewKeypair("not-base58-!!!")
	require.Error(t, err)
}

func TestKeypair_SignTransaction(t *testing.T) {
	account := solana.NewWallet()
	kp, err := NewKeypair(account.PrivateKey.String())
	require.NoError(t, err)

	recipient := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1000, account.PublicKey(), recipient.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(account.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, kp.SignTransaction(tx))
	require.Len(t, tx.Signatures, 1)
	assert.False(t, tx.Signatures[0].IsZero())
}

func TestKeypair_SignTransactionIgnoresForeignSigners(t *testing.T) {
	account := solana.NewWallet()
	kp, err := NewKeypair(account.PrivateKey.String())
	require.NoError(t, err)

	// A transaction paid for by someone else: the wallet owns no signer
	// slot, so partial signing must leave the signature empty without
	// failing
	foreign := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1000, foreign.PublicKey(), account.PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(foreign.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, kp.SignTransaction(tx))
	for _, sig := range tx.Signatures {
		assert.True(t, sig.IsZero())
	}
}
