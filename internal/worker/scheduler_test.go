package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/aqforecast/internal/worker"
)

type stubRunner struct {
	runs atomic.Int32
	err  error
}

func (s *stubRunner) Run(context.Context) (*worker.Overview, error) {
	n := s.runs.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &worker.Overview{Days: int(n)}, nil
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := worker.NewScheduler(context.Background(), worker.SchedulerConfig{
		Job:      &stubRunner{},
		Schedule: "whenever",
		Logger:   zerolog.Nop(),
	})
	assert.Error(t, err)
}

func TestScheduler_RunNow(t *testing.T) {
	runner := &stubRunner{}
	s, err := worker.NewScheduler(context.Background(), worker.SchedulerConfig{Job: runner, Logger: zerolog.Nop()})
	require.NoError(t, err)

	assert.Nil(t, s.Latest())
	require.NoError(t, s.RunNow(context.Background()))
	require.NotNil(t, s.Latest())
	assert.Equal(t, 1, s.Latest().Days)
}

func TestScheduler_FailedRunKeepsPrevious(t *testing.T) {
	runner := &stubRunner{}
	s, err := worker.NewScheduler(context.Background(), worker.SchedulerConfig{Job: runner, Logger: zerolog.Nop()})
	require.NoError(t, err)

	require.NoError(t, s.RunNow(context.Background()))
	runner.err = errors.New("feed down")
	assert.Error(t, s.RunNow(context.Background()))
	assert.Equal(t, 1, s.Latest().Days)
}

func TestScheduler_StartRunsImmediately(t *testing.T) {
	runner := &stubRunner{}
	s, err := worker.NewScheduler(context.Background(), worker.SchedulerConfig{
		Job:      runner,
		Schedule: "0 0 1 1 *",
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return s.Latest() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), runner.runs.Load())
}
