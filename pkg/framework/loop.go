package framework

import (
	"context"
	"log"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the default polling interval of a Loop.
const DefaultInterval = 10 * time.Millisecond

// Loop is the cooperative polling context. Pollers run one after another
// on every tick, never concurrently with each other.
type Loop struct {
	Interval time.Duration

	pollers  []Poller
	runners  []Runnable
	wakeUpCh chan struct{}
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddPoller registers pollers to the loop.
func (l *Loop) AddPoller(pollers ...Poller) *Loop {
	l.pollers = append(l.pollers, pollers...)
	return l
}

// AddRunnable adds Runnable implementions started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// TriggerNext schedules the next iteration to be executed immediately.
// It never blocks and is safe to call from any goroutine.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable. It returns when ctx is done or any Runnable
// added to the loop fails.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := NewRunnerWith(ctx).Go(l.runners...)
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case err := <-runner.errCh:
			runner.Runners = runner.Runners[1:]
			cancel()
			var errs AggregatedError
			if err != context.Canceled {
				errs.Add(err)
			}
			return errs.Add(runner.Wait()).Aggregate()
		case now := <-ticker.C:
			l.runIteration(now)
		case <-l.wakeUpCh:
			l.runIteration(time.Now())
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail(ctx context.Context) {
	if err := l.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}

func (l *Loop) runIteration(now time.Time) {
	for _, p := range l.pollers {
		if err := p.Poll(now); err != nil {
			glog.Errorf("poller error: %v", err)
		}
	}
}
