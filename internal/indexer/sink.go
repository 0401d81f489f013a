package indexer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"stakeLedger/internal/metrics"
	"stakeLedger/internal/model"
	"stakeLedger/internal/storage"
)

// EventDecoder turns raw logs into ledger events.
type EventDecoder interface {
	CanDecode(topic0 string) bool
	Decode(log model.LogRecord) (model.Event, error)
}

// EventApplier applies a single event to the ledger.
type EventApplier interface {
	Apply(ctx context.Context, ev model.Event) (bool, error)
}

// SinkStats counts what a LedgerSink did with the logs it received.
type SinkStats struct {
	Total   int
	Applied int
	Skipped int
	Failed  int
}

// LedgerSink decodes log batches and applies them in order.
type LedgerSink struct {
	decoder    EventDecoder
	applier    EventApplier
	errorsPath string
	errorsMu   sync.Mutex
	logger     *zap.Logger
	metrics    *metrics.LedgerMetrics
	stats      SinkStats
}

// NewLedgerSink builds a sink. Decode errors are appended to errorsPath when
// it is non-empty.
func NewLedgerSink(decoder EventDecoder, applier EventApplier, errorsPath string, logger *zap.Logger, m *metrics.LedgerMetrics) *LedgerSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerSink{
		decoder:    decoder,
		applier:    applier,
		errorsPath: errorsPath,
		logger:     logger,
		metrics:    m,
	}
}

// Stats returns the running totals.
func (s *LedgerSink) Stats() SinkStats {
	return s.stats
}

// PutLogBatch applies every decodable log in the batch. Unknown topics are
// skipped; malformed logs are recorded as decode errors and do not stop the
// batch. Ledger errors do.
func (s *LedgerSink) PutLogBatch(ctx context.Context, logs []model.LogRecord) error {
	var decodeErrors []model.DecodeError
	for _, record := range logs {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.stats.Total++

		topic0 := record.Topic0()
		if topic0 == "" {
			s.stats.Failed++
			decodeErrors = append(decodeErrors, DecodeErrorFromRecord(record, fmt.Errorf("missing topic0")))
			continue
		}
		if !s.decoder.CanDecode(topic0) {
			s.stats.Skipped++
			continue
		}

		ev, err := s.decoder.Decode(record)
		if err != nil {
			s.stats.Failed++
			decodeErrors = append(decodeErrors, DecodeErrorFromRecord(record, err))
			continue
		}

		applied, err := s.applier.Apply(ctx, ev)
		if err != nil {
			return err
		}
		if applied {
			s.stats.Applied++
		} else {
			s.stats.Skipped++
		}
	}

	return s.writeDecodeErrors(decodeErrors)
}

// Reject counts a line that never became a log record.
func (s *LedgerSink) Reject(de model.DecodeError) error {
	s.stats.Total++
	s.stats.Failed++
	return s.writeDecodeErrors([]model.DecodeError{de})
}

func (s *LedgerSink) writeDecodeErrors(decodeErrors []model.DecodeError) error {
	if len(decodeErrors) == 0 {
		return nil
	}
	for _, de := range decodeErrors {
		s.metrics.IncDecodeError()
		s.logger.Warn("decode failed",
			zap.String("tx_hash", de.TxHash),
			zap.Uint64("log_index", de.LogIndex),
			zap.String("error", de.Error),
		)
	}
	if s.errorsPath == "" {
		return nil
	}
	if err := storage.AppendJSONL(s.errorsPath, &s.errorsMu, decodeErrors); err != nil {
		return fmt.Errorf("write decode errors: %w", err)
	}
	return nil
}

// DecodeErrorFromRecord builds the error line written for a log that could
// not be decoded.
func DecodeErrorFromRecord(record model.LogRecord, err error) model.DecodeError {
	return model.DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      record.Topic0(),
		Error:       err.Error(),
	}
}
