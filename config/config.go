package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RelayerConfig holds the airtime relayer settings
type RelayerConfig struct {
	BaseURL           string
	AirbillsSecretKey string
	SolscanAPIKey     string
}

// SolanaConfig holds the network settings
type SolanaConfig struct {
	RPCUrl        string
	Commitment    string
	PrivateKey    string // Base58, funds the gifts
	SkipPreflight bool
}

// DeliveryConfig is the policy for submission retries and delivery polling
type DeliveryConfig struct {
	PollAttempts   int
	PollInterval   time.Duration
	SendMaxRetries uint
}

// Config holds the application configuration
type Config struct {
	Relayer       RelayerConfig
	Solana        SolanaConfig
	Delivery      DeliveryConfig
	GiftStorePath string
	SessionPath   string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".itiza")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("relayer.base_url", "https://vendor.airbillspay.com")
	viper.SetDefault("solana.rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("solana.commitment", "confirmed")
	viper.SetDefault("solana.skip_preflight", false)
	viper.SetDefault("delivery.poll_attempts", 3)
	viper.SetDefault("delivery.poll_interval", 5*time.Second)
	viper.SetDefault("delivery.send_max_retries", 5)

	// Read from environment variables
	viper.SetEnvPrefix("ITIZA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Relayer: RelayerConfig{
			BaseURL:           viper.GetString("relayer.base_url"),
			AirbillsSecretKey: viper.GetString("relayer.airbills_secret_key"),
			SolscanAPIKey:     viper.GetString("relayer.solscan_api_key"),
		},
		Solana: SolanaConfig{
			RPCUrl:        viper.GetString("solana.rpc_url"),
			Commitment:    viper.GetString("solana.commitment"),
			PrivateKey:    viper.GetString("solana.private_key"),
			SkipPreflight: viper.GetBool("solana.skip_preflight"),
		},
		Delivery: DeliveryConfig{
			PollAttempts:   viper.GetInt("delivery.poll_attempts"),
			PollInterval:   viper.GetDuration("delivery.poll_interval"),
			SendMaxRetries: uint(viper.GetInt("delivery.send_max_retries")),
		},
		GiftStorePath: viper.GetString("gift_store_path"),
		SessionPath:   viper.GetString("session_path"),
	}

	globalConfig = cfg
	return cfg, nil
}

// ValidateRelayer checks that the relayer credentials are present
func (c *Config) ValidateRelayer() error {
	if c.Relayer.AirbillsSecretKey == "" {
		return fmt.Errorf("airbills secret key not found. Please set ITIZA_RELAYER_AIRBILLS_SECRET_KEY or add relayer.airbills_secret_key to your .itiza.yaml config file")
	}
	return nil
}

// ValidateWallet checks that a signing key is configured
func (c *Config) ValidateWallet() error {
	if c.Solana.PrivateKey == "" {
		return fmt.Errorf("wallet private key not found. Please set ITIZA_SOLANA_PRIVATE_KEY or add solana.private_key to your .itiza.yaml config file")
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
