package indexer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// withRetry runs op with exponential backoff, trying at most maxRetries+1
// times.
func withRetry[T any](ctx context.Context, maxRetries int, baseDelay time.Duration, logger *zap.Logger, name string, op func() (T, error)) (T, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bOff := backoff.NewExponentialBackOff()
	bOff.InitialInterval = baseDelay

	return backoff.Retry(
		ctx,
		backoff.Operation[T](op),
		backoff.WithBackOff(bOff),
		backoff.WithMaxTries(uint(maxRetries+1)),
		backoff.WithNotify(func(err error, d time.Duration) {
			logger.Warn(name+" failed, retrying", zap.Error(err), zap.Duration("after", d))
		}),
	)
}
