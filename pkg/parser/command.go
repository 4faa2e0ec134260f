package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// GiftArgs is a parsed gift command
type GiftArgs struct {
	Amount    float64
	Token     string // display symbol, uppercased
	Recipient string // phone number or wallet address, case preserved
}

// Recipient case matters for wallet addresses, so only the token and the
// "to" keyword are case-folded
var giftPattern = regexp.MustCompile(`(?i)^(?:gift\s+)?(\d+\.?\d*)\s+([A-Z0-9]+)\s+to\s+(\S+)$`)

// ParseGiftCommand parses a natural language gift command
// Examples:
//   - "10 USDC to 2348012345678"
//   - "0.5 SOL to 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
//   - "gift 25 USDT to 2348012345678"
func ParseGiftCommand(command string) (*GiftArgs, error) {
	command = strings.TrimSpace(command)

	matches := giftPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid gift command format. Expected: '<amount> <token> to <recipient>' (e.g., '10 USDC to 2348012345678')")
	}

	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount '%s': %w", matches[1], err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}

	return &GiftArgs{
		Amount:    amount,
		Token:     strings.ToUpper(matches[2]),
		Recipient: matches[3],
	}, nil
}

var phonePattern = regexp.MustCompile(`^\d{7,15}$`)

// IsPhoneNumber reports whether the recipient looks like a phone number
// rather than a wallet address
func IsPhoneNumber(recipient string) bool {
	return phonePattern.MatchString(NormalizePhoneNumber(recipient))
}

// NormalizePhoneNumber strips everything but digits
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
