package types

// GiftRequest represents a user's airtime gift command
type GiftRequest struct {
	PhoneNumber string
	Amount      float64
	Token       string // mint address of the payment token
	UserAddress string // sender's wallet address
}

// TransferRequest represents a direct on-chain token gift
type TransferRequest struct {
	Recipient string
	Amount    float64
	Token     string // mint address, or the native SOL marker
}

// DeliveryStatus represents the off-chain delivery state reported by the relayer
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
)
