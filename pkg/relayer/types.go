package relayer

import "fmt"

// AirtimeRequest is the gift request sent to the relayer
type AirtimeRequest struct {
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
	Token       string  `json:"token"` // mint address of the payment token
	UserAddress string  `json:"userAddress"`
}

// Plan is the relayer's transaction plan for an airtime gift. For USDC/USDT
// payments the relayer returns a single transaction in TxBase64; for other
// tokens it returns a swap transaction followed by an airtime transaction.
// ID is the opaque reference used for delivery confirmation.
type Plan struct {
	ID                 string `json:"id"`
	TxBase64           string `json:"txBase64,omitempty"`
	SwapTransaction    string `json:"swapTransaction,omitempty"`
	AirtimeTransaction string `json:"airtimeTransaction,omitempty"`
}

// Transactions returns the plan's base64 transactions in submission order.
// The swap must always come before the airtime instruction; a pair with one
// half missing is rejected rather than guessed at.
func (p *Plan) Transactions() ([]string, error) {
	switch {
	case p.SwapTransaction != "" && p.AirtimeTransaction != "":
		return []string{p.SwapTransaction, p.AirtimeTransaction}, nil
	case p.SwapTransaction != "" || p.AirtimeTransaction != "":
		return nil, fmt.Errorf("relayer returned an incomplete swap/airtime pair")
	case p.TxBase64 != "":
		return []string{p.TxBase64}, nil
	default:
		return nil, fmt.Errorf("relayer returned no transactions")
	}
}

// ConfirmResult is the relayer's report on an off-chain airtime delivery
type ConfirmResult struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}
