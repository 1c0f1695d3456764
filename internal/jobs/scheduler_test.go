package jobs

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type countingCompleter struct {
	calls atomic.Int32
	err   error
}

func (c *countingCompleter) CompletePast(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return 3, nil
}

func TestRunOnce(t *testing.T) {
	completer := &countingCompleter{}
	s := NewScheduler(completer, "@every 1h", nil, time.Second, logger.NewWithWriter(io.Discard))

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	completer.err = errors.New("db down")
	_, err = s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler(&countingCompleter{}, "not a cron spec", nil, time.Second, logger.NewWithWriter(io.Discard))
	require.Error(t, s.Start())
}

func TestStart_RunsOnSchedule(t *testing.T) {
	completer := &countingCompleter{}
	s := NewScheduler(completer, "@every 1s", time.UTC, time.Second, logger.NewWithWriter(io.Discard))

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		return completer.calls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
}
