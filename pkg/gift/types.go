package gift

import "time"

// Status of a gift record
type Status string

const (
	StatusPending  Status = "pending"  // created, waiting to be claimed
	StatusRedeemed Status = "redeemed" // claimed by a recipient
)

// Gift is a claimable gift, keyed by its short code. A gift moves from
// pending to redeemed exactly once.
type Gift struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	Amount           float64    `json:"amount"`
	PhoneNumber      string     `json:"phone_number"`
	SenderAddress    string     `json:"sender_address"`
	Signature        string     `json:"signature,omitempty"` // sender's message signature over the gift details
	RecipientAddress string     `json:"recipient_address,omitempty"`
	Status           Status     `json:"status"`
	Created          time.Time  `json:"created"`
	Redeemed         *time.Time `json:"redeemed,omitempty"`
}

// IsPending returns true if the gift has not been claimed yet
func (g *Gift) IsPending() bool {
	return g.Status == StatusPending
}
