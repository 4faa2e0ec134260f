package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"itiza/config"
	"itiza/pkg/gift"
	"itiza/pkg/parser"
	"itiza/pkg/wallet"
)

var (
	giftPhone  string
	giftAmount float64
)

var giftCmd = &cobra.Command{
	Use:   "gift",
	Short: "Create and redeem gift codes",
	Long: `Create a gift that a recipient can later claim with a short code.

The gift is signed with a local demo wallet whose last-connected address is
remembered between runs. A code can be redeemed exactly once.

Examples:
  itiza gift create --phone 2348012345678 --amount 25
  itiza gift redeem 7G4K2M
  itiza gift pending
  itiza gift disconnect`,
}

var giftCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new gift code",
	Run:   runGiftCreate,
}

var giftRedeemCmd = &cobra.Command{
	Use:   "redeem <code>",
	Short: "Redeem a gift code",
	Args:  cobra.ExactArgs(1),
	Run:   runGiftRedeem,
}

var giftPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List unclaimed gifts",
	Run:   runGiftPending,
}

var giftDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the demo wallet and clear its session",
	Run:   runGiftDisconnect,
}

func init() {
	rootCmd.AddCommand(giftCmd)
	giftCmd.AddCommand(giftCreateCmd)
	giftCmd.AddCommand(giftRedeemCmd)
	giftCmd.AddCommand(giftPendingCmd)
	giftCmd.AddCommand(giftDisconnectCmd)

	giftCreateCmd.Flags().StringVar(&giftPhone, "phone", "", "Recipient phone number (REQUIRED)")
	giftCreateCmd.Flags().Float64Var(&giftAmount, "amount", 0, "Gift amount (REQUIRED)")
	giftCreateCmd.MarkFlagRequired("phone")
	giftCreateCmd.MarkFlagRequired("amount")
}

// giftManager wires the file-backed store and the demo wallet from config
func giftManager() (*gift.Manager, *wallet.Mock, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := gift.NewFileStore(cfg.GiftStorePath)
	if err != nil {
		return nil, nil, err
	}

	session, err := wallet.NewSession(cfg.SessionPath)
	if err != nil {
		return nil, nil, err
	}

	return gift.NewManager(store), wallet.NewMock(session), nil
}

func runGiftCreate(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	phone := parser.NormalizePhoneNumber(giftPhone)
	if !parser.IsPhoneNumber(giftPhone) {
		printError(fmt.Errorf("'%s' is not a valid phone number", giftPhone))
		os.Exit(1)
	}

	manager, mock, err := giftManager()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	address, err := mock.Connect()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// The signature covers the gift details, so the record carries proof
	// of who created it
	message := fmt.Sprintf("itiza gift: %g airtime for %s", giftAmount, phone)
	signature, err := mock.SignMessage([]byte(message))
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	g, err := manager.CreateGift(gift.CreateParams{
		SenderAddress: address,
		PhoneNumber:   phone,
		Amount:        giftAmount,
		Signature:     signature,
	})
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(g, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	color.Green("\n✓ Gift created!")
	fmt.Printf("  Code:   %s\n", color.CyanString(g.Code))
	fmt.Printf("  Amount: %g\n", g.Amount)
	fmt.Printf("  Phone:  %s\n", g.PhoneNumber)
	fmt.Printf("  Sender: %s\n\n", g.SenderAddress)
	fmt.Println("Share the code with the recipient to claim the gift.")
}

func runGiftRedeem(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	code := args[0]

	manager, mock, err := giftManager()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	address, err := mock.Connect()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	g, err := manager.RedeemGift(code, address)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(g, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	color.Green("\n✓ Gift redeemed!")
	fmt.Printf("  Code:   %s\n", color.CyanString(g.Code))
	fmt.Printf("  Amount: %g\n", g.Amount)
	fmt.Printf("  Phone:  %s\n\n", g.PhoneNumber)
}

func runGiftPending(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	manager, _, err := giftManager()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	pending := manager.PendingGifts()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(pending, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(pending) == 0 {
		fmt.Println("\nNo pending gifts.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        PENDING GIFTS")
	fmt.Println(strings.Repeat("=", 70))

	for _, g := range pending {
		fmt.Printf("\n  %s  %8g  %s  %s\n",
			color.CyanString(g.Code),
			g.Amount,
			g.PhoneNumber,
			color.HiBlackString(g.Created.Format("2006-01-02 15:04")))
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Printf("\nTotal: %d pending gift(s)\n\n", len(pending))
}

func runGiftDisconnect(cmd *cobra.Command, args []string) {
	_, mock, err := giftManager()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	last, _ := mock.LastConnected()
	if err := mock.Disconnect(); err != nil {
		printError(err)
		os.Exit(1)
	}

	if last != "" {
		printSuccess(fmt.Sprintf("Disconnected %s", last))
	} else {
		printSuccess("No wallet session to clear.")
	}
}
