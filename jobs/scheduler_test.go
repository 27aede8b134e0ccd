package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewScheduler_RejectsBadConfig(t *testing.T) {
	noop := func(context.Context) (int64, error) { return 0, nil }

	_, err := NewScheduler(Task{Name: "a", Spec: "not a cron spec", Run: noop})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")

	_, err = NewScheduler(
		Task{Name: "a", Spec: "@hourly", Run: noop},
		Task{Name: "a", Spec: "@daily", Run: noop},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestScheduler_RunNow(t *testing.T) {
	s, err := NewScheduler(Task{
		Name: "count",
		Spec: "@daily",
		Run:  func(context.Context) (int64, error) { return 7, nil },
	})
	require.NoError(t, err)

	n, err := s.RunNow(context.Background(), "count")
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	s, err := NewScheduler(
		Task{
			Name: "tick",
			Spec: "@every 1s",
			Run: func(context.Context) (int64, error) {
				calls.Add(1)
				return 1, nil
			},
		},
		Task{
			Name: "boom",
			Spec: "@every 1s",
			Run: func(context.Context) (int64, error) {
				panic("boom")
			},
		},
		Task{
			Name: "fail",
			Spec: "@every 1s",
			Run: func(context.Context) (int64, error) {
				return 0, errors.New("db down")
			},
		},
	)
	require.NoError(t, err)

	s.Start()
	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond,
		"panic ve hata veren işler diğerlerini durdurmamalı")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
