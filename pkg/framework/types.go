package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// Poller is invoked periodically by Loop in the polling context.
type Poller interface {
	Poll(now time.Time) error
}

// PollFunc is the func form of Poller.
type PollFunc func(now time.Time) error

// Poll implements Poller.
func (f PollFunc) Poll(now time.Time) error {
	return f(now)
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// Waker schedules the next poll immediately.
type Waker interface {
	TriggerNext()
}
