package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task runs one job on a fixed cadence. Jobs on the same task are
// serialized: a tick that arrives while the previous run is still going
// waits for the next loop iteration instead of piling up goroutines.
type Task struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	job      func(ctx context.Context) error
	logger   *zap.Logger

	ticker   *time.Ticker
	stop     chan struct{}
	force    chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	running bool
	lastRun time.Time
	nextRun time.Time
}

func NewTask(name string, interval time.Duration, timeout time.Duration, job func(ctx context.Context) error, logger *zap.Logger) *Task {
	return &Task{
		name:     name,
		interval: interval,
		timeout:  timeout,
		job:      job,
		logger:   logger,
		stop:     make(chan struct{}),
		force:    make(chan struct{}, 1),
	}
}

func (t *Task) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.nextRun = time.Now().Add(t.interval)
	t.mu.Unlock()

	t.ticker = time.NewTicker(t.interval)

	t.logger.Info("Task started",
		zap.String("task", t.name),
		zap.Duration("interval", t.interval))

	// Run immediately on start, then follow the ticker.
	go t.runLoop()
}

func (t *Task) runLoop() {
	t.runJob()
	for {
		select {
		case <-t.ticker.C:
			next := time.Now().Add(t.interval)
			t.mu.Lock()
			t.nextRun = next
			t.mu.Unlock()
			t.logger.Debug("Task tick",
				zap.String("task", t.name),
				zap.Time("next_run", next))
			t.runJob()
		case <-t.force:
			t.runJob()
		case <-t.stop:
			t.ticker.Stop()
			return
		}
	}
}

func (t *Task) runJob() {
	t.mu.Lock()
	t.lastRun = time.Now()
	t.mu.Unlock()

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.job(ctx); err != nil {
		t.logger.Error("Scheduled run failed",
			zap.String("task", t.name),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
	} else {
		t.logger.Debug("Scheduled run completed",
			zap.String("task", t.name),
			zap.Duration("duration", time.Since(startTime)))
	}
}

// Stop signals the loop and returns without waiting for an in-flight run.
// The stop channel is closed rather than sent on, so Stop never blocks
// behind a job that is holding the loop.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	t.logger.Info("Stopping task", zap.String("task", t.name))
	t.stopOnce.Do(func() { close(t.stop) })
}

// ForceRun queues one extra run on the loop so manual triggers stay
// serialized with scheduled ticks. A trigger that lands while one is
// already queued is dropped.
func (t *Task) ForceRun() {
	t.logger.Info("Manually triggering task", zap.String("task", t.name))
	select {
	case t.force <- struct{}{}:
	default:
	}
}

func (t *Task) Status() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return map[string]interface{}{
		"name":     t.name,
		"running":  t.running,
		"interval": t.interval.String(),
		"last_run": t.lastRun,
		"next_run": t.nextRun,
	}
}

// Group owns a set of tasks and starts/stops them together.
type Group struct {
	tasks []*Task
}

func NewGroup(tasks ...*Task) *Group {
	return &Group{tasks: tasks}
}

func (g *Group) Start() {
	for _, t := range g.tasks {
		t.Start()
	}
}

func (g *Group) Stop() {
	for _, t := range g.tasks {
		t.Stop()
	}
}

func (g *Group) Status() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(g.tasks))
	for _, t := range g.tasks {
		out = append(out, t.Status())
	}
	return out
}
