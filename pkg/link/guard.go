package link

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// DefaultTimeout is the idle interval after which a partial frame is dropped.
const DefaultTimeout = 50 * time.Millisecond

// TimeoutGuard resynchronizes a Parser stalled in the middle of a frame.
// No reply is sent on timeout: the peer is expected to retransmit when its
// request goes unanswered.
type TimeoutGuard struct {
	Threshold time.Duration

	timeouts atomic.Uint64
}

// Poll resets p to StateWaitStart if it's mid-frame and no byte has been
// consumed for longer than Threshold. It returns true if p was reset.
func (g *TimeoutGuard) Poll(p *Parser, now time.Time) bool {
	if p.State() == StateWaitStart {
		return false
	}
	threshold := g.Threshold
	if threshold == 0 {
		threshold = DefaultTimeout
	}
	if now.Sub(p.LastByte()) <= threshold {
		return false
	}
	glog.Infof("timeout in %s, resetting parser", p.State())
	p.Abort()
	g.timeouts.Add(1)
	return true
}

// Timeouts returns the number of partial frames dropped.
func (g *TimeoutGuard) Timeouts() uint64 {
	return g.timeouts.Load()
}
