package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itiza/config"
	"itiza/pkg/parser"
	"itiza/pkg/tokens"
	"itiza/pkg/transfer"
	"itiza/pkg/types"
	"itiza/pkg/wallet"
)

var tokenNoConfirm bool

var tokenCmd = &cobra.Command{
	Use:   "token <amount> <token> to <address>",
	Short: "Gift tokens directly to a wallet address",
	Long: `Send SOL or an SPL token straight to a recipient wallet as a gift.

If the recipient has no associated token account for an SPL token yet, one
is created as part of the transfer, paid by the sender.

Examples:
  itiza token 0.5 SOL to 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin
  itiza token 25 USDC to 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin --yes`,
	Args: cobra.MinimumNArgs(1),
	Run:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolVarP(&tokenNoConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runToken(cmd *cobra.Command, args []string) {
	commandStr := strings.Join(args, " ")
	giftArgs, err := parser.ParseGiftCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if parser.IsPhoneNumber(giftArgs.Recipient) {
		printError(fmt.Errorf("'%s' looks like a phone number. Use 'itiza airtime' to gift airtime", giftArgs.Recipient))
		os.Exit(1)
	}

	tok, err := tokens.ByLabel(giftArgs.Token)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := cfg.ValidateWallet(); err != nil {
		printError(err)
		os.Exit(1)
	}

	w, err := wallet.NewKeypair(cfg.Solana.PrivateKey)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	gifter, err := transfer.NewGifter(cfg.Solana.RPCUrl, cfg.Solana.Commitment, cfg.Solana.SkipPreflight, w)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	ctx := context.Background()

	if !jsonOutput {
		fmt.Println("\n" + strings.Repeat("=", 60))
		color.Green("                      TOKEN GIFT")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("\n  Recipient: %s\n", color.CyanString(giftArgs.Recipient))
		fmt.Printf("  Amount:    %g %s\n", giftArgs.Amount, color.YellowString(tok.Label))

		if balance, err := gifter.Balance(ctx, tok); err == nil {
			fmt.Printf("  Balance:   %.4f %s\n", balance, tok.Label)
		} else if verbose {
			fmt.Printf("  Balance:   unavailable (%v)\n", err)
		}

		fmt.Println("\n" + strings.Repeat("=", 60))
	}

	if !tokenNoConfirm && !jsonOutput {
		if !confirmPrompt("Proceed with token gift?") {
			fmt.Println("\nGift cancelled.")
			os.Exit(0)
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Sending tokens..."
		s.Start()
	}

	sig, err := gifter.Send(ctx, types.TransferRequest{
		Recipient: giftArgs.Recipient,
		Amount:    giftArgs.Amount,
		Token:     tok.Address,
	})
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		output := map[string]interface{}{}
		if !sig.IsZero() {
			output["signature"] = sig.String()
		}
		if err != nil {
			output["error"] = err.Error()
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	color.Green("\n✓ Tokens sent successfully!")
	fmt.Printf("  Transaction: %s\n\n", color.HiBlackString(sig.String()))
}
