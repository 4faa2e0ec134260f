package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itiza/pkg/tokens"
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "List the supported payment tokens",
	Long: `List the tokens that can pay for gifts.

USDC and USDT pay for airtime directly; other tokens are swapped by the
relayer first.

Examples:
  itiza tokens`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(tokens.List, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	color.Green("                          SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	for _, token := range tokens.List {
		address := token.Address
		if token.Native {
			address = address + " (native)"
		}

		fmt.Printf("  %-6s  %2d decimals  %s\n",
			color.YellowString(token.Label),
			token.Decimals,
			color.HiBlackString(address))
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens.List))
}
