package transfer

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itiza/pkg/types"
	"itiza/pkg/wallet"
)

func testWallet(t *testing.T) *wallet.Keypair {
	t.Helper()
	account := solana.NewWallet()
	kp, err := wallet.NewKeypair(account.PrivateKey.String())
	require.NoError(t, err)
	return kp
}

func TestNewGifter(t *testing.T) {
	w := testWallet(t)

	_, err := NewGifter("", "confirmed", false, w)
	require.Error(t, err)

	_, err = NewGifter("http://localhost:8899", "confirmed", false, nil)
	require.Error(t, err)

	g, err := NewGifter("http://localhost:8899", "finalized", true, w)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestSend_ValidationBeforeNetwork(t *testing.T) {
	// The endpoint is never reached: every request below fails validation
	g, err := NewGifter("http://localhost:0", "confirmed", false, testWallet(t))
	require.NoError(t, err)

	recipient := solana.NewWallet().PublicKey().String()

	tests := []struct {
		name string
		req  types.TransferRequest
	}{
		{"zero amount", types.TransferRequest{Recipient: recipient, Amount: 0, Token: "USDC"}},
		{"negative amount", types.TransferRequest{Recipient: recipient, Amount: -1, Token: "USDC"}},
		{"bad recipient", types.TransferRequest{Recipient: "not-an-address", Amount: 1, Token: "USDC"}},
		{"unknown token", types.TransferRequest{Recipient: recipient, Amount: 1, Token: "DOGE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Send(context.Background(), tt.req)
			require.Error(t, err)
		})
	}
}

func TestParseCommitment(t *testing.T) {
	assert.Equal(t, rpc.CommitmentFinalized, parseCommitment("finalized"))
	assert.Equal(t, rpc.CommitmentConfirmed, parseCommitment("Confirmed"))
	assert.Equal(t, rpc.CommitmentProcessed, parseCommitment("processed"))
	assert.Equal(t, rpc.CommitmentConfirmed, parseCommitment(""))
	assert.Equal(t, rpc.CommitmentConfirmed, parseCommitment("bogus"))
}

func TestUnitMultiplier(t *testing.T) {
	assert.Equal(t, uint64(1), unitMultiplier(0))
	assert.Equal(t, uint64(1_000_000), unitMultiplier(6))
	assert.Equal(t, uint64(1_000_000_000), unitMultiplier(9))
}
