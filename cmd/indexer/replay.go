package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeLedger/internal/chain"
	"stakeLedger/internal/config"
	"stakeLedger/internal/distribution"
	"stakeLedger/internal/indexer"
	"stakeLedger/internal/metrics"
	"stakeLedger/internal/resolver"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogConfig)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without an RPC every snapshot resolves to zero values.
	var caller resolver.Caller
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		caller = chainClient
	}

	st, err := openStore(ctx, cfg.StoreConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	m := metrics.Ledger()
	decoder, err := distribution.NewDecoder()
	if err != nil {
		return err
	}
	processor, err := newProcessor(st.kv, cfg.Family, caller, logger, m)
	if err != nil {
		return err
	}
	sink := indexer.NewLedgerSink(decoder, processor, cfg.Errors, logger, m)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("errors", cfg.Errors),
		zap.String("family", cfg.Family),
		zap.String("store", cfg.Store),
		zap.Bool("enrichment", caller != nil),
	)

	if err := indexer.Replay(ctx, cfg.In, sink, cfg.BatchSize); err != nil {
		return err
	}

	stats := sink.Stats()
	logger.Info("replay complete",
		zap.Int("total", stats.Total),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return nil
}
