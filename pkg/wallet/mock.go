package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

// Mock simulates a browser wallet for the gift-code flow. It holds a
// throwaway secp256k1 key, exposes a 0x address, and signs messages with
// the standard personal-message prefix. The last-connected address is
// remembered in the session store.
type Mock struct {
	key       *ecdsa.PrivateKey
	address   string
	session   *Session
	connected bool
}

// NewMock creates a disconnected mock wallet using the given session store
func NewMock(session *Session) *Mock {
	return &Mock{session: session}
}

// Connect generates a fresh keypair and persists the address to the session
func (m *Mock) Connect() (string, error) {
	if m.connected {
		return m.address, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	m.key = key
	m.address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	m.connected = true

	if m.session != nil {
		if err := m.session.Save(m.address); err != nil {
			return "", fmt.Errorf("failed to save session: %w", err)
		}
	}

	return m.address, nil
}

// LastConnected returns the address stored by a previous session, if any
func (m *Mock) LastConnected() (string, error) {
	if m.session == nil {
		return "", nil
	}
	return m.session.Load()
}

// Disconnect forgets the key and clears the session
func (m *Mock) Disconnect() error {
	m.key = nil
	m.address = ""
	m.connected = false

	if m.session != nil {
		return m.session.Clear()
	}
	return nil
}

// Address returns the connected wallet's 0x address
func (m *Mock) Address() string {
	return m.address
}

// IsConnected reports whether the wallet is connected
func (m *Mock) IsConnected() bool {
	return m.connected
}

// SignMessage signs an arbitrary message with the personal-message prefix
// and returns the signature as a 0x hex string
func (m *Mock) SignMessage(message []byte) (string, error) {
	if !m.connected || m.key == nil {
		return "", fmt.Errorf("wallet is not connected")
	}

	sig, err := crypto.Sign(accounts.TextHash(message), m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign message: %w", err)
	}

	return "0x" + hex.EncodeToString(sig), nil
}

// VerifyMessage checks that a signature produced by SignMessage recovers
// to the given address
func VerifyMessage(address string, message []byte, signature string) bool {
	sigHex := strings.TrimPrefix(signature, "0x")
	sig, err := hex.DecodeString(sigHex)
	if err != nil || len(sig) != 65 {
		return false
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return false
	}

	return strings.EqualFold(crypto.PubkeyToAddress(*pub).Hex(), address)
}
