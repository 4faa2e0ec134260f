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
	"itiza/pkg/relayer"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <reference-id>",
	Short: "Check the delivery status of an airtime gift",
	Long: `Check whether the relayer has completed the off-chain airtime delivery
for a gift, by the reference id returned when the gift was sent.

Examples:
  itiza status 6f1db1cc-3a4e-4d8e-a8a1-0b2f5b2c9a4e
  itiza status 6f1db1cc-3a4e-4d8e-a8a1-0b2f5b2c9a4e --watch
  itiza status 6f1db1cc-3a4e-4d8e-a8a1-0b2f5b2c9a4e --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	referenceID := args[0]
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

	relayerClient := relayer.New(cfg.Relayer.BaseURL, cfg.Relayer.AirbillsSecretKey, cfg.Relayer.SolscanAPIKey)

	if watchStatus {
		watchDeliveryStatus(relayerClient, referenceID, jsonOutput)
	} else {
		checkDeliveryStatus(relayerClient, referenceID, jsonOutput)
	}
}

func checkDeliveryStatus(client *relayer.Client, referenceID string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking delivery status..."
		s.Start()
	}

	result, err := client.ConfirmAirtimeTransaction(context.Background(), referenceID)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayDeliveryStatus(result, referenceID)
	}
}

func watchDeliveryStatus(client *relayer.Client, referenceID string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching delivery status (Reference: %s)\n", color.CyanString(referenceID))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	checkAndDisplayDelivery(client, referenceID)

	// Then check periodically
	for range ticker.C {
		if checkAndDisplayDelivery(client, referenceID) {
			return
		}
	}
}

// checkAndDisplayDelivery returns true once the delivery reached a
// terminal state
func checkAndDisplayDelivery(client *relayer.Client, referenceID string) bool {
	result, err := client.ConfirmAirtimeTransaction(context.Background(), referenceID)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayDeliveryStatus(result, referenceID)

	if result.Success {
		return true
	}
	switch strings.ToLower(result.Status) {
	case "failed", "error":
		return true
	}
	return false
}

func displayDeliveryStatus(result *relayer.ConfirmResult, referenceID string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                       DELIVERY STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Reference: %s\n", color.CyanString(referenceID))
	fmt.Printf("  Delivered: %s\n", getColoredDelivery(result))
	if result.Status != "" {
		fmt.Printf("  Status:    %s\n", result.Status)
	}
	if result.Message != "" {
		fmt.Printf("  Message:   %s\n", result.Message)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredDelivery(result *relayer.ConfirmResult) string {
	if result.Success {
		return color.GreenString("YES")
	}
	switch strings.ToLower(result.Status) {
	case "failed", "error":
		return color.RedString("FAILED")
	default:
		return color.YellowString("NOT YET")
	}
}
