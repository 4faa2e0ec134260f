package gift

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidOrRedeemedCode is returned when a redemption targets a code
// that does not exist or was already claimed. The two cases are not
// distinguished externally.
var ErrInvalidOrRedeemedCode = errors.New("invalid or already redeemed gift code")

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
	codeAttempts = 5
)

// Manager provides the gift-code lifecycle over a Store
type Manager struct {
	store Store
}

// NewManager creates a manager over the given store
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// CreateParams describes a gift being created
type CreateParams struct {
	SenderAddress string
	PhoneNumber   string
	Amount        float64
	Signature     string // sender's message signature over the gift details
}

// CreateGift generates a fresh code and stores a pending gift record.
// Code collisions are retried a bounded number of times.
func (m *Manager) CreateGift(params CreateParams) (*Gift, error) {
	if strings.TrimSpace(params.PhoneNumber) == "" {
		return nil, fmt.Errorf("phone number is required")
	}
	if !(params.Amount > 0) {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	if params.SenderAddress == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	for i := 0; i < codeAttempts; i++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}
		if m.store.Exists(code) {
			continue
		}

		g := &Gift{
			ID:            uuid.New().String(),
			Code:          code,
			Amount:        params.Amount,
			PhoneNumber:   params.PhoneNumber,
			SenderAddress: params.SenderAddress,
			Signature:     params.Signature,
			Status:        StatusPending,
			Created:       time.Now(),
		}

		if err := m.store.Create(g); err != nil {
			return nil, err
		}

		return g, nil
	}

	return nil, fmt.Errorf("failed to generate a unique gift code after %d attempts", codeAttempts)
}

// RedeemGift claims a pending gift for the recipient. A code redeems
// exactly once; missing and already-redeemed codes fail the same way.
func (m *Manager) RedeemGift(code, recipientAddress string) (*Gift, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if recipientAddress == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	g, err := m.store.Get(code)
	if err != nil {
		return nil, ErrInvalidOrRedeemedCode
	}
	if !g.IsPending() {
		return nil, ErrInvalidOrRedeemedCode
	}

	now := time.Now()
	g.Status = StatusRedeemed
	g.RecipientAddress = recipientAddress
	g.Redeemed = &now

	if err := m.store.Update(g); err != nil {
		return nil, err
	}

	return g, nil
}

// PendingGifts returns all unclaimed gifts, regardless of recipient
func (m *Manager) PendingGifts() []*Gift {
	return m.store.ListPending()
}

// generateCode produces a 6-character uppercase alphanumeric code
func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	return string(code), nil
}
