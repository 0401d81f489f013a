package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "leveldb", cfg.Store)
	assert.Equal(t, "./data/ledger", cfg.DBPath)
	assert.Equal(t, "distribution", cfg.Family)
	assert.Equal(t, uint64(2000), cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.True(t, cfg.ResolveRecipients)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFlagsEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfgFile := filepath.Join(dir, "indexer.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("rpc: https://rpc.example\nfamily: deposit-pool\naddress:\n  - 0x47176B2Af9885dC6C4575d4eFd63895f7Aaa4790\n"), 0o644))
	t.Setenv("INDEXER_PG_DSN", "postgres://ledger@localhost/ledger")

	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.Uint64("batch-size", 2000, "")
	flags.String("store", "leveldb", "")
	require.NoError(t, flags.Parse([]string{"--batch-size=500", "--store=postgres"}))

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example", cfg.RPCURL)
	assert.Equal(t, "deposit-pool", cfg.Family)
	assert.Equal(t, []string{"0x47176B2Af9885dC6C4575d4eFd63895f7Aaa4790"}, cfg.Addresses)
	assert.Equal(t, uint64(500), cfg.BatchSize)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.PGDSN)
}

func TestLoadReplayAndInspect(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INDEXER_IN", "./data/logs.jsonl")
	t.Setenv("INDEXER_DEPOSIT_POOL", "0x0000000000000000000000000000000000000d01")

	replay, err := LoadReplay("", nil)
	require.NoError(t, err)
	assert.Equal(t, "./data/logs.jsonl", replay.In)
	assert.Equal(t, 1000, replay.BatchSize)

	inspect, err := LoadInspect("", nil)
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000d01", inspect.DepositPool)
	assert.Equal(t, "leveldb", inspect.Store)
}

func TestSplitAndClean(t *testing.T) {
	got := splitAndClean(" 0xa, ,0xb ")
	if len(got) != 2 || got[0] != "0xa" || got[1] != "0xb" {
		t.Fatalf("unexpected split: %v", got)
	}
	if splitAndClean("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
