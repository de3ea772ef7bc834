package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	WalletAddress   string
	PrivateKey      string
	AslanRPCEndpoint string
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Blockchain
	ChainID              int
	VaultAddress         string
	NativeTokenSymbol    string
	NativeTokenDecimals  int
	CounterTokenAddress  string
	CounterTokenSymbol   string
	CounterTokenDecimals int
	PoolAddress          string

	// Optional second pair
	ExtraTokenAddress  string
	ExtraTokenSymbol   string
	ExtraTokenDecimals int
	ExtraPoolAddress   string

	// Trading Parameters
	SlippageBps           int
	GasMultiplier         float64
	GasLimit              int
	ConfirmTimeoutSeconds int

	// Policy Defaults
	DefaultMinConfidence  int
	DefaultMaxDailyTrades int

	// Signal Source
	SignalSourceURL          string
	SignalPollSeconds        int
	PostTradeCooldownSeconds int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		WalletAddress:    envStr("WALLET_ADDRESS", ""),
		PrivateKey:       envStr("PRIVATE_KEY", ""),
		AslanRPCEndpoint: envStr("ASLAN_RPC_ENDPOINT", ""),
		WebhookURL:       envStr("WEBHOOK_URL", ""),
		BotName:          envStr("BOT_NAME", "AslanAutoTrader"),
		APIKey:           envStr("API_KEY", ""),
		CORSAllowOrigin:  envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "aslan_auto_trader"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Blockchain
		ChainID:              envInt("CHAIN_ID", 7741),
		VaultAddress:         envStr("VAULT_ADDRESS", ""),
		NativeTokenSymbol:    envStr("NATIVE_TOKEN_SYMBOL", "ASL"),
		NativeTokenDecimals:  envInt("NATIVE_TOKEN_DECIMALS", 18),
		CounterTokenAddress:  envStr("COUNTER_TOKEN_ADDRESS", ""),
		CounterTokenSymbol:   envStr("COUNTER_TOKEN_SYMBOL", "AUSD"),
		CounterTokenDecimals: envInt("COUNTER_TOKEN_DECIMALS", 6),
		PoolAddress:          envStr("POOL_ADDRESS", ""),

		// Optional second pair
		ExtraTokenAddress:  envStr("EXTRA_TOKEN_ADDRESS", ""),
		ExtraTokenSymbol:   envStr("EXTRA_TOKEN_SYMBOL", ""),
		ExtraTokenDecimals: envInt("EXTRA_TOKEN_DECIMALS", 18),
		ExtraPoolAddress:   envStr("EXTRA_POOL_ADDRESS", ""),

		// Trading Parameters
		SlippageBps:           envInt("SLIPPAGE_BPS", 50),
		GasMultiplier:         envFloat("GAS_MULTIPLIER", 1.2),
		GasLimit:              envInt("GAS_LIMIT", 300000),
		ConfirmTimeoutSeconds: envInt("CONFIRM_TIMEOUT_SECONDS", 120),

		// Policy Defaults
		DefaultMinConfidence:  envInt("DEFAULT_MIN_CONFIDENCE", 70),
		DefaultMaxDailyTrades: envInt("DEFAULT_MAX_DAILY_TRADES", 10),

		// Signal Source
		SignalSourceURL:          envStr("SIGNAL_SOURCE_URL", ""),
		SignalPollSeconds:        envInt("SIGNAL_POLL_SECONDS", 300),
		PostTradeCooldownSeconds: envInt("POST_TRADE_COOLDOWN_SECONDS", 60),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.WalletAddress == "" {
		errs = append(errs, "WALLET_ADDRESS is required")
	}
	if c.AslanRPCEndpoint == "" {
		errs = append(errs, "ASLAN_RPC_ENDPOINT is required")
	}
	if c.VaultAddress == "" {
		errs = append(errs, "VAULT_ADDRESS is required")
	}
	if c.PoolAddress == "" {
		errs = append(errs, "POOL_ADDRESS is required")
	}
	if c.CounterTokenAddress == "" {
		errs = append(errs, "COUNTER_TOKEN_ADDRESS is required")
	}
	if c.SlippageBps < 0 || c.SlippageBps > 10000 {
		errs = append(errs, "SLIPPAGE_BPS must be between 0 and 10000")
	}
	if c.PrivateKey == "" {
		fmt.Println("[WARN] PRIVATE_KEY not set, running read-only (no executions will be submitted)")
	}
	if c.SignalSourceURL == "" {
		fmt.Println("[WARN] SIGNAL_SOURCE_URL not set, automated polling disabled (manual executions only)")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Aslan Auto Trader Configuration ===")

	if c.PrivateKey == "" {
		fmt.Println("  READ-ONLY MODE (no signer)")
	} else {
		fmt.Println("  LIVE EXECUTION MODE")
	}

	fmt.Println("--------------------------------------")
	fmt.Printf("Chain ID: %d\n", c.ChainID)
	if len(c.WalletAddress) > 16 {
		fmt.Printf("Wallet: %s...%s\n", c.WalletAddress[:10], c.WalletAddress[len(c.WalletAddress)-6:])
	}
	fmt.Printf("Vault: %s\n", truncAddr(c.VaultAddress))
	fmt.Printf("Trading Pair: %s/%s (pool %s...)\n", c.NativeTokenSymbol, c.CounterTokenSymbol, truncAddr(c.PoolAddress))
	if c.ExtraPoolAddress != "" {
		fmt.Printf("Extra Pair: %s/%s (pool %s...)\n", c.ExtraTokenSymbol, c.CounterTokenSymbol, truncAddr(c.ExtraPoolAddress))
	}
	fmt.Println("--------------------------------------")
	fmt.Println("Execution Parameters:")
	fmt.Printf("  Slippage: %d bps\n", c.SlippageBps)
	fmt.Printf("  Gas Limit: %d (x%.1f price)\n", c.GasLimit, c.GasMultiplier)
	fmt.Printf("  Confirm Timeout: %ds\n", c.ConfirmTimeoutSeconds)
	fmt.Println("--------------------------------------")
	fmt.Println("Policy Defaults:")
	fmt.Printf("  Min Confidence: %d\n", c.DefaultMinConfidence)
	fmt.Printf("  Max Daily Trades: %d\n", c.DefaultMaxDailyTrades)
	fmt.Println("--------------------------------------")
	fmt.Printf("Signal Source: %s\n", boolLabel(c.SignalSourceURL != "", "configured", "not set (manual only)"))
	if c.SignalSourceURL != "" {
		fmt.Printf("  Poll Interval: %ds\n", c.SignalPollSeconds)
		fmt.Printf("  Post-Trade Cooldown: %ds\n", c.PostTradeCooldownSeconds)
	}
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func truncAddr(addr string) string {
	if len(addr) > 10 {
		return addr[:10]
	}
	return addr
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
