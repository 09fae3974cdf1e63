package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task runs one bounded pass and reports how many items it handled.
type Task func(ctx context.Context) (int, error)

// Periodic runs a task on a fixed interval until stopped. A pass never overlaps the next one.
type Periodic struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	task     Task

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPeriodic(name string, interval time.Duration, task Task) *Periodic {
	timeout := interval
	if timeout < 30*time.Second {
		timeout = 30 * time.Second
	}
	return &Periodic{name: name, interval: interval, timeout: timeout, task: task}
}

func (p *Periodic) Start(_ context.Context) error {
	if p.interval <= 0 {
		slog.Info("worker disabled", "worker", p.name)
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		slog.Info("worker started", "worker", p.name, "interval", p.interval.String())
		for {
			select {
			case <-ticker.C:
				p.RunOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// RunOnce executes a single pass. Failures are logged and retried on the next tick.
func (p *Periodic) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	n, err := p.task(runCtx)
	if err != nil {
		slog.Error("worker pass failed", "worker", p.name, "error", err.Error())
		return
	}
	if n > 0 {
		slog.Info("worker pass completed", "worker", p.name, "count", n)
	}
}

// Stop waits for the in-flight pass, bounded by ctx.
func (p *Periodic) Stop(ctx context.Context) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("worker stopped", "worker", p.name)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
