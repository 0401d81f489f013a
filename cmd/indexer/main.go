package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeLedger/internal/chain"
	"stakeLedger/internal/config"
	"stakeLedger/internal/distribution"
	"stakeLedger/internal/indexer"
	"stakeLedger/internal/metrics"
	"stakeLedger/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Staking ledger indexer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Index staking events into the ledger",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "RPC URL")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().StringSlice("address", nil, "staking contract addresses (comma-separated)")
	runCmd.Flags().String("family", "distribution", "contract family (distribution, deposit-pool)")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().String("archive", "", "optional raw log JSONL archive path")
	runCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().Int("fetch-concurrency", 8, "concurrent header and transaction fetches")
	runCmd.Flags().Bool("resolve-recipients", true, "fetch each transaction's recipient")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	addStoreFlags(runCmd)
	addLogFlags(runCmd)

	root.AddCommand(runCmd)

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply a raw log archive to the ledger",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("rpc", "", "RPC URL for usersData enrichment (optional)")
	replayCmd.Flags().String("in", "", "input raw logs JSONL")
	replayCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	replayCmd.Flags().String("family", "distribution", "contract family (distribution, deposit-pool)")
	replayCmd.Flags().Int("batch-size", 1000, "records per batch")
	addStoreFlags(replayCmd)
	addLogFlags(replayCmd)

	root.AddCommand(replayCmd)
	root.AddCommand(newInspectCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("store", "leveldb", "ledger store (leveldb, postgres)")
	cmd.Flags().String("db-path", "./data/ledger", "LevelDB directory")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-file", "", "optional rotating log file")
	cmd.Flags().Int("log-max-size-mb", 100, "log file size before rotation")
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogConfig)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	addresses, err := indexer.ParseAddresses(cfg.Addresses)
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		return fmt.Errorf("address list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	st, err := openStore(ctx, cfg.StoreConfig)
	if err != nil {
		return err
	}
	defer st.Close()

	m := metrics.Ledger()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	decoder, err := distribution.NewDecoder()
	if err != nil {
		return err
	}
	processor, err := newProcessor(st.kv, cfg.Family, chainClient, logger, m)
	if err != nil {
		return err
	}

	sinks := []storage.LogSink{indexer.NewLedgerSink(decoder, processor, cfg.Errors, logger, m)}
	if cfg.Archive != "" {
		sinks = append(sinks, storage.NewJsonlArchive(cfg.Archive))
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:         cfg.FromBlock,
		ToBlock:           cfg.ToBlock,
		Addresses:         addresses,
		Topic0:            decoder.Topics(),
		BatchSize:         cfg.BatchSize,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		FetchConcurrency:  cfg.FetchConcurrency,
		ResolveRecipients: cfg.ResolveRecipients,
	}, chainClient, sinks, st.checkpointer(cfg.Family, cfg.Checkpoint, cfg.CheckpointEnabled), logger, m)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("family", cfg.Family),
		zap.String("store", cfg.Store),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Int("addresses", len(addresses)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("archive", cfg.Archive),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	return runner.Run(ctx)
}
