package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	got, err := withRetry(context.Background(), 3, time.Millisecond, nil, "op", func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryGivesUp(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), 1, time.Millisecond, nil, "op", func() (int, error) {
		attempts++
		return 0, errors.New("down")
	})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
}
