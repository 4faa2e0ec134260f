package tokens

import (
	"fmt"
	"strings"
)

// Token describes a payment token supported by the gifting flows
type Token struct {
	Address  string // mint address on Solana mainnet
	Label    string // display symbol
	Decimals uint8
	Native   bool // true for SOL itself
}

// Mint addresses of the supported payment tokens
const (
	SOL  = "So11111111111111111111111111111111111111112"
	USDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	BONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

// List is the static set of supported tokens
var List = []Token{
	{Address: SOL, Label: "SOL", Decimals: 9, Native: true},
	{Address: USDC, Label: "USDC", Decimals: 6},
	{Address: USDT, Label: "USDT", Decimals: 6},
	{Address: BONK, Label: "BONK", Decimals: 5},
}

// ByAddress looks up a token by its mint address
func ByAddress(address string) (Token, error) {
	for _, t := range List {
		if t.Address == address {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("unsupported token address: %s", address)
}

// ByLabel looks up a token by its display symbol (case-insensitive)
func ByLabel(label string) (Token, error) {
	label = strings.ToUpper(strings.TrimSpace(label))
	for _, t := range List {
		if t.Label == label {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("token '%s' not found", label)
}

// Resolve accepts either a display symbol or a mint address
func Resolve(s string) (Token, error) {
	if t, err := ByLabel(s); err == nil {
		return t, nil
	}
	return ByAddress(s)
}
