package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StoreConfig selects where ledger entities live.
type StoreConfig struct {
	Store  string
	DBPath string
	PGDSN  string
}

// LogConfig holds logger settings shared by every command.
type LogConfig struct {
	LogLevel     string
	LogFile      string
	LogMaxSizeMB int
}

// Config holds configuration for the run command.
type Config struct {
	StoreConfig
	LogConfig
	RPCURL            string
	FromBlock         uint64
	ToBlock           uint64
	Addresses         []string
	Family            string
	BatchSize         uint64
	Archive           string
	Errors            string
	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	FetchConcurrency  int
	ResolveRecipients bool
	MetricsAddr       string
}

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	StoreConfig
	LogConfig
	RPCURL    string
	In        string
	Errors    string
	Family    string
	BatchSize int
}

// InspectConfig holds configuration for the inspect command.
type InspectConfig struct {
	StoreConfig
	LogConfig
	Family      string
	DepositPool string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size":         uint64(2000),
		"family":             "distribution",
		"checkpoint":         "./data/checkpoint.json",
		"checkpoint-enabled": true,
		"max-retries":        5,
		"retry-backoff":      500 * time.Millisecond,
		"fetch-concurrency":  8,
		"resolve-recipients": true,
		"errors":             "./data/decode_errors.jsonl",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		StoreConfig:       storeConfig(v),
		LogConfig:         logConfig(v),
		RPCURL:            v.GetString("rpc"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		Addresses:         getStringSlice(v, "address"),
		Family:            v.GetString("family"),
		BatchSize:         v.GetUint64("batch-size"),
		Archive:           v.GetString("archive"),
		Errors:            v.GetString("errors"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		FetchConcurrency:  v.GetInt("fetch-concurrency"),
		ResolveRecipients: v.GetBool("resolve-recipients"),
		MetricsAddr:       v.GetString("metrics-addr"),
	}

	return cfg, nil
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"batch-size": 1000,
		"family":     "distribution",
		"errors":     "./data/decode_errors.jsonl",
	})
	if err != nil {
		return ReplayConfig{}, err
	}

	return ReplayConfig{
		StoreConfig: storeConfig(v),
		LogConfig:   logConfig(v),
		RPCURL:      v.GetString("rpc"),
		In:          v.GetString("in"),
		Errors:      v.GetString("errors"),
		Family:      v.GetString("family"),
		BatchSize:   v.GetInt("batch-size"),
	}, nil
}

// LoadInspect merges config file, environment variables, and flags into InspectConfig.
func LoadInspect(cfgFile string, flags *pflag.FlagSet) (InspectConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"family": "distribution",
	})
	if err != nil {
		return InspectConfig{}, err
	}

	return InspectConfig{
		StoreConfig: storeConfig(v),
		LogConfig:   logConfig(v),
		Family:      v.GetString("family"),
		DepositPool: v.GetString("deposit-pool"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store", "leveldb")
	v.SetDefault("db-path", "./data/ledger")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-max-size-mb", 100)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func storeConfig(v *viper.Viper) StoreConfig {
	return StoreConfig{
		Store:  v.GetString("store"),
		DBPath: v.GetString("db-path"),
		PGDSN:  v.GetString("pg-dsn"),
	}
}

func logConfig(v *viper.Viper) LogConfig {
	return LogConfig{
		LogLevel:     v.GetString("log-level"),
		LogFile:      v.GetString("log-file"),
		LogMaxSizeMB: v.GetInt("log-max-size-mb"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
