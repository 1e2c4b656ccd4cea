package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaskStopReturnsWhileJobRunning(t *testing.T) {
	var runs atomic.Int32
	task := NewTask("slow", 5*time.Millisecond, time.Second, func(ctx context.Context) error {
		runs.Add(1)
		time.Sleep(20 * time.Millisecond)
		return nil
	}, zap.NewNop())

	task.Start()
	// Let the initial run start and a tick queue up behind it.
	time.Sleep(12 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		task.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a run was in flight")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestTaskStopIdempotent(t *testing.T) {
	task := NewTask("idle", time.Hour, time.Second, func(ctx context.Context) error {
		return nil
	}, zap.NewNop())

	task.Start()
	time.Sleep(5 * time.Millisecond)

	task.Stop()
	task.Stop()

	status := task.Status()
	assert.False(t, status["running"].(bool))
}

func TestTaskForceRunSerializedWithTicks(t *testing.T) {
	ran := make(chan struct{}, 4)
	task := NewTask("manual", time.Hour, time.Second, func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}, zap.NewNop())

	task.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("initial run never executed")
	}

	task.ForceRun()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("forced run never executed")
	}

	task.Stop()
}

func TestTaskStatus(t *testing.T) {
	task := NewTask("status", time.Minute, time.Second, func(ctx context.Context) error {
		return nil
	}, zap.NewNop())

	status := task.Status()
	assert.Equal(t, "status", status["name"])
	assert.False(t, status["running"].(bool))
	assert.Equal(t, time.Minute.String(), status["interval"])

	task.Start()
	time.Sleep(5 * time.Millisecond)

	status = task.Status()
	assert.True(t, status["running"].(bool))
	require.IsType(t, time.Time{}, status["last_run"])
	assert.False(t, status["last_run"].(time.Time).IsZero())

	task.Stop()
}

func TestGroupStartStop(t *testing.T) {
	var a, b atomic.Int32
	group := NewGroup(
		NewTask("a", time.Hour, time.Second, func(ctx context.Context) error { a.Add(1); return nil }, zap.NewNop()),
		NewTask("b", time.Hour, time.Second, func(ctx context.Context) error { b.Add(1); return nil }, zap.NewNop()),
	)

	group.Start()
	time.Sleep(20 * time.Millisecond)
	group.Stop()

	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())

	statuses := group.Status()
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s["running"].(bool))
	}
}
