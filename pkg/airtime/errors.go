package airtime

import "errors"

// Errors surfaced by the submission flow. Each is terminal for the current
// attempt; the flow never retries the whole sequence on its own.
var (
	ErrWalletNotConnected = errors.New("wallet is not connected")
	ErrInvalidInput       = errors.New("invalid phone number or amount")
	ErrRelayer            = errors.New("relayer request failed")
	ErrSigningUnsupported = errors.New("wallet does not support transaction signing")
	ErrSigningRejected    = errors.New("transaction signing was rejected")
	ErrSubmissionFailed   = errors.New("transaction submission failed")
	ErrDeliveryTimeout    = errors.New("airtime delivery confirmation timed out")
	ErrDeliveryFailed     = errors.New("airtime delivery failed")
)
