package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itiza",
	Short: "A CLI for gifting airtime and tokens from a Solana wallet",
	Long: `itiza lets you send airtime or token gifts from your Solana wallet to a
recipient identified by a phone number or wallet address. Airtime gifts are
built by the airbills relayer, signed locally, submitted on-chain, and the
off-chain delivery is confirmed afterwards.

Examples:
  itiza airtime 10 USDC to 2348012345678
  itiza token 0.5 SOL to 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin
  itiza gift create --phone 2348012345678 --amount 25
  itiza status <reference-id>
  itiza tokens`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
