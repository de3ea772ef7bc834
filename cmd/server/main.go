package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aslanlabs/aslan-auto-trader/internal/amm"
	"github.com/aslanlabs/aslan-auto-trader/internal/api"
	"github.com/aslanlabs/aslan-auto-trader/internal/config"
	"github.com/aslanlabs/aslan-auto-trader/internal/db"
	"github.com/aslanlabs/aslan-auto-trader/internal/engine"
	"github.com/aslanlabs/aslan-auto-trader/internal/ethereum"
	"github.com/aslanlabs/aslan-auto-trader/internal/notifications"
	"github.com/aslanlabs/aslan-auto-trader/internal/policy"
	"github.com/aslanlabs/aslan-auto-trader/internal/repository"
	"github.com/aslanlabs/aslan-auto-trader/internal/signals"
	"github.com/aslanlabs/aslan-auto-trader/internal/trader"
	"github.com/aslanlabs/aslan-auto-trader/internal/vault"
)

const banner = `
╔══════════════════════════════════════╗
║      ASLAN Auto Trader v0.3          ║
║                                      ║
╚══════════════════════════════════════╝
`

const apiPort = 3001

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.Check(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Check query failed: %v\n", err)
		os.Exit(1)
	}

	// Repos and the policy store
	execRepo := repository.NewExecutionRepo(pool)
	policyRepo := repository.NewPolicyRepo(pool)

	policies := policy.NewStore(policyRepo)
	if err := policies.Load(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "[POLICY] Load failed: %v\n", err)
		os.Exit(1)
	}
	budget := policy.NewTracker()

	// Chain clients
	ethClient, err := ethereum.NewClient(
		cfg.AslanRPCEndpoint,
		cfg.PrivateKey,
		int64(cfg.ChainID),
		cfg.GasLimit,
		cfg.GasMultiplier,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ETH] Client init failed: %v\n", err)
		os.Exit(1)
	}
	defer ethClient.Close()

	exchange, err := ethereum.NewExchange(ethClient, time.Duration(cfg.ConfirmTimeoutSeconds)*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ETH] Exchange init failed: %v\n", err)
		os.Exit(1)
	}
	chainVault, err := ethereum.NewVault(ethClient, cfg.VaultAddress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ETH] Vault init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[ETH] Connected, wallet %s\n", ethClient.WalletAddress().Hex())

	// Token book and pool resolver. The native asset uses the zero address;
	// pools track their native side with an explicit flag.
	native := engine.TokenInfo{
		Symbol:   cfg.NativeTokenSymbol,
		Decimals: cfg.NativeTokenDecimals,
		Native:   true,
	}
	counter := engine.TokenInfo{
		Symbol:   cfg.CounterTokenSymbol,
		Address:  common.HexToAddress(cfg.CounterTokenAddress),
		Decimals: cfg.CounterTokenDecimals,
	}
	bookTokens := []engine.TokenInfo{native, counter}

	resolver := amm.NewResolver()
	resolver.Register(native.Address, counter.Address, common.HexToAddress(cfg.PoolAddress))

	if cfg.ExtraPoolAddress != "" && cfg.ExtraTokenAddress != "" {
		extra := engine.TokenInfo{
			Symbol:   cfg.ExtraTokenSymbol,
			Address:  common.HexToAddress(cfg.ExtraTokenAddress),
			Decimals: cfg.ExtraTokenDecimals,
		}
		bookTokens = append(bookTokens, extra)
		resolver.Register(extra.Address, counter.Address, common.HexToAddress(cfg.ExtraPoolAddress))
	}
	tokens := engine.NewTokenBook(bookTokens...)
	fmt.Printf("[AMM] %d pool(s) registered\n", resolver.Pairs())

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	// Vault registry and the execution engine
	registry := vault.NewRegistry(chainVault, exchange, policies, vault.Defaults{
		MinConfidence:  cfg.DefaultMinConfidence,
		MaxDailyTrades: cfg.DefaultMaxDailyTrades,
	})
	coordinator := engine.NewCoordinator(
		resolver, tokens, policies, budget, registry, exchange,
		execRepo, notify, cfg.SlippageBps,
	)
	gate := engine.NewGate(coordinator)

	operator := common.HexToAddress(cfg.WalletAddress)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(pool, policies, budget, registry, gate, operator, apiPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Automated trading loop (only with a signal source configured)
	traderService := trader.NewService()
	if cfg.SignalSourceURL != "" {
		normalizer := signals.NewNormalizer(tokens.Known, cfg.NativeTokenSymbol, cfg.CounterTokenSymbol)
		source := signals.NewClient(cfg.SignalSourceURL, normalizer)

		err := traderService.Start(ctx, source, coordinator, notify, operator, trader.Options{
			PollInterval: time.Duration(cfg.SignalPollSeconds) * time.Second,
			Cooldown:     time.Duration(cfg.PostTradeCooldownSeconds) * time.Second,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "[TRADER] Start failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("[TRADER] Skipped - no signal source configured")
	}

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	traderService.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
