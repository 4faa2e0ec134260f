package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itiza/config"
	"itiza/pkg/airtime"
	"itiza/pkg/parser"
	"itiza/pkg/relayer"
	"itiza/pkg/tokens"
	"itiza/pkg/types"
	"itiza/pkg/wallet"
)

var airtimeNoConfirm bool

var airtimeCmd = &cobra.Command{
	Use:   "airtime <amount> <token> to <phone>",
	Short: "Gift airtime paid from your Solana wallet",
	Long: `Gift airtime to a phone number, paid with a token from your Solana wallet.

The airbills relayer builds the transaction plan. Paying with USDC or USDT
produces a single transaction; any other token produces a swap transaction
followed by the airtime transaction, submitted strictly in that order. After
the on-chain side confirms, the off-chain delivery is polled until the relayer
reports success.

Examples:
  itiza airtime 10 USDC to 2348012345678
  itiza airtime 25 USDT to 2348012345678 --yes
  itiza airtime 0.1 SOL to 2348012345678`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAirtime,
}

func init() {
	rootCmd.AddCommand(airtimeCmd)

	airtimeCmd.Flags().BoolVarP(&airtimeNoConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runAirtime(cmd *cobra.Command, args []string) {
	commandStr := strings.Join(args, " ")
	giftArgs, err := parser.ParseGiftCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	phone := parser.NormalizePhoneNumber(giftArgs.Recipient)
	if !parser.IsPhoneNumber(giftArgs.Recipient) {
		printError(fmt.Errorf("'%s' does not look like a phone number. Use 'itiza token' to gift to a wallet address", giftArgs.Recipient))
		os.Exit(1)
	}

	tok, err := tokens.ByLabel(giftArgs.Token)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := cfg.ValidateRelayer(); err != nil {
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

	chain, err := airtime.NewRPCChain(cfg.Solana.RPCUrl, cfg.Solana.Commitment, cfg.Solana.SkipPreflight)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	relayerClient := relayer.New(cfg.Relayer.BaseURL, cfg.Relayer.AirbillsSecretKey, cfg.Relayer.SolscanAPIKey)

	sender := airtime.NewSender(relayerClient, chain, w, airtime.Policy{
		SendMaxRetries: cfg.Delivery.SendMaxRetries,
		PollAttempts:   cfg.Delivery.PollAttempts,
		PollInterval:   cfg.Delivery.PollInterval,
	})

	if !jsonOutput {
		displayGiftSummary(giftArgs.Amount, tok, phone, w.PublicKey().String())
	}

	// Ask for confirmation
	if !airtimeNoConfirm && !jsonOutput {
		if !confirmPrompt("Proceed with airtime gift?") {
			fmt.Println("\nGift cancelled.")
			os.Exit(0)
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Requesting transaction plan..."
		s.Start()
		sender.OnStage(func(stage airtime.Stage) {
			s.Suffix = " " + stageSuffix(stage)
		})
	}

	receipt, err := sender.Send(context.Background(), types.GiftRequest{
		PhoneNumber: phone,
		Amount:      giftArgs.Amount,
		Token:       tok.Address,
	})
	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		printAirtimeJSON(receipt, err)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if err != nil {
		// Money may have moved even though delivery is unconfirmed;
		// tell the user which it is
		if errors.Is(err, airtime.ErrDeliveryTimeout) || errors.Is(err, airtime.ErrDeliveryFailed) {
			color.Yellow("\nYour payment confirmed on-chain, but the airtime delivery is not confirmed yet.")
			displaySignatures(receipt)
			fmt.Println("\nCheck the delivery later with:")
			color.Cyan("  itiza status %s\n", receipt.ReferenceID)
		}
		printError(err)
		os.Exit(1)
	}

	color.Green("\n✓ Airtime sent successfully!")
	displaySignatures(receipt)
	fmt.Printf("  Reference: %s\n\n", color.CyanString(receipt.ReferenceID))

	if verbose {
		fmt.Printf("Delivery status: %s\n\n", receipt.Delivery)
	}
}

func stageSuffix(stage airtime.Stage) string {
	switch stage {
	case airtime.StagePlanRequested:
		return "Requesting transaction plan..."
	case airtime.StageSigning:
		return "Signing transaction..."
	case airtime.StageSubmitting:
		return "Submitting transaction..."
	case airtime.StageConfirming:
		return "Waiting for confirmation..."
	case airtime.StagePolling:
		return "Confirming airtime delivery..."
	default:
		return "Processing..."
	}
}

func displayGiftSummary(amount float64, tok tokens.Token, phone, sender string) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     AIRTIME GIFT")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Phone Number: %s\n", color.CyanString(phone))
	fmt.Printf("  Amount:       %g %s\n", amount, color.YellowString(tok.Label))
	fmt.Printf("  From:         %s\n", sender)
	if !isStable(tok) {
		fmt.Printf("  Note:         %s is swapped before delivery (two transactions)\n", tok.Label)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func isStable(tok tokens.Token) bool {
	return tok.Address == tokens.USDC || tok.Address == tokens.USDT
}

func displaySignatures(receipt *airtime.Receipt) {
	if receipt == nil {
		return
	}
	for _, sig := range receipt.Signatures {
		fmt.Printf("  Transaction: %s\n", color.HiBlackString(sig.String()))
	}
}

func printAirtimeJSON(receipt *airtime.Receipt, err error) {
	output := map[string]interface{}{}
	if receipt != nil {
		sigs := make([]string, 0, len(receipt.Signatures))
		for _, sig := range receipt.Signatures {
			sigs = append(sigs, sig.String())
		}
		output["reference_id"] = receipt.ReferenceID
		output["signatures"] = sigs
		output["delivery"] = receipt.Delivery
	}
	if err != nil {
		output["error"] = err.Error()
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonData))
}

func confirmPrompt(question string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s (y/N): ", question)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
