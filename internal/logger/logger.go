package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level and optional rotating file output.
type Config struct {
	Level       string
	File        string
	MaxFileSize int
}

// New builds a JSON logger writing to stdout and, when File is set, to a
// rotating file as well.
func New(cfg Config) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	if err := atom.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), noSyncWriter{os.Stdout}, atom),
	}
	if cfg.File != "" {
		w := zapcore.AddSync(&lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.MaxFileSize,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), w, atom))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)), nil
}

// noSyncWriter drops Sync: fsync on stdout fails with EINVAL when stdout is
// a pipe or a terminal.
type noSyncWriter struct {
	io.Writer
}

func (noSyncWriter) Sync() error {
	return nil
}
