package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolpulse/internal/chain"
	"poolpulse/internal/config"
	"poolpulse/internal/poolclient"
)

func main() {
	root := &cobra.Command{
		Use:          "poolctl",
		Short:        "Liquidity pool data client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "chain RPC URL")
	root.PersistentFlags().Uint64("chain-id", 0, "chain id selecting the exchange deployment")
	root.PersistentFlags().String("exchanges", "", "chain-id=address deployment map (comma-separated)")
	root.PersistentFlags().Uint64("batch-size", 999, "blocks per log query batch")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	registerReadCommands(root)
	registerMutationCommands(root)
	registerExportCommand(root)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired dependencies for one command invocation.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	chain  *chain.Client
	client *poolclient.Client
}

// setup loads config, connects the chain client, and builds the pool
// client. withSender additionally wires the signing transaction sender
// required by mutation commands.
func setup(ctx context.Context, cmd *cobra.Command, withSender bool) (*app, func(), error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	cleanup := func() {
		chainClient.Close()
		_ = logger.Sync()
	}

	var sender poolclient.TxSubmitter
	if withSender {
		if cfg.PrivateKey == "" {
			cleanup()
			return nil, nil, fmt.Errorf("private key is required for mutations")
		}
		chainSender, err := chain.NewSender(ctx, chainClient, cfg.PrivateKey)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		sender = chainSender
	}

	client, err := poolclient.New(poolclient.Options{
		ChainID:   cfg.ChainID,
		Exchanges: cfg.Exchanges,
		Reader:    chainClient,
		Sender:    sender,
		BatchSize: cfg.BatchSize,
		Logger:    logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &app{cfg: cfg, logger: logger, chain: chainClient, client: client}, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// printJSON renders a command result to stdout.
func printJSON(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
