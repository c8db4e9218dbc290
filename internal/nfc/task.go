package nfc

import (
	"context"
	"sync"
	"time"

	"hose_installation/internal/models"
)

// Task is a running periodic poll started by Poller.Start.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Cancel stops issuing cycles. A result still in flight is discarded.
// It is safe to call more than once.
func (t *Task) Cancel() {
	t.cancel()
}

// Done is closed once the task has stopped and nothing more will be delivered.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Start polls once immediately and then on every tick, handing each snapshot
// to deliver. Cycles never overlap: a tick that fires while a cycle is still
// inside its retry budget is skipped. A cycle that outlives the budget is
// cancelled and reported as the fallback snapshot, so a hung reader still
// surfaces as an error.
func (p *Poller) Start(ctx context.Context, interval time.Duration, deliver func(models.StatusSnapshot)) *Task {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go p.run(ctx, interval, deliver, t.done)
	return t
}

func (p *Poller) run(ctx context.Context, interval time.Duration, deliver func(models.StatusSnapshot), done chan struct{}) {
	defer close(done)

	var (
		mu          sync.Mutex
		gen         uint64
		inFlight    bool
		startedAt   time.Time
		cancelCycle context.CancelFunc
		wg          sync.WaitGroup
	)

	launch := func() {
		mu.Lock()
		if inFlight {
			if time.Since(startedAt) < p.cycleBudget() {
				mu.Unlock()
				if p.log != nil {
					p.log.Debugw("nfc_poll_tick_skipped", "generation", gen)
				}
				return
			}
			cancelCycle()
			if ctx.Err() == nil {
				if p.log != nil {
					p.log.Warnw("nfc_poll_superseded", "generation", gen)
				}
				deliver(Fallback(time.Now()))
			}
		}
		gen++
		mine := gen
		cycleCtx, c := context.WithCancel(ctx)
		cancelCycle = c
		inFlight = true
		startedAt = time.Now()
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer c()

			snap := p.Poll(cycleCtx)

			mu.Lock()
			defer mu.Unlock()
			if mine != gen || ctx.Err() != nil {
				return
			}
			inFlight = false
			deliver(snap)
		}()
	}

	launch()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			launch()
		}
	}
}

// cycleBudget is the longest a Poll can legitimately run: every attempt
// timing out plus the delays between them.
func (p *Poller) cycleBudget() time.Duration {
	return time.Duration(p.retries+1)*p.timeout + time.Duration(p.retries)*p.delay
}
