package link

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/mculink/pkg/framework"
)

// Port pumps bytes from a link into a Session. Its Run is the receiving
// context: it only enqueues bytes and wakes the polling context.
type Port struct {
	Reader  io.Reader
	Session *Session

	waker fx.Waker
}

// NewPort creates a Port.
func NewPort(r io.Reader, s *Session) *Port {
	return &Port{Reader: r, Session: s}
}

// Name implements Named.
func (p *Port) Name() string {
	return "port"
}

// AddToLoop implements LoopAdder. The loop polls the Session and runs
// the Port.
func (p *Port) AddToLoop(l *fx.Loop) {
	p.waker = l
	p.Session.Init()
	l.AddPoller(p.Session)
	l.AddRunnable(p)
}

// Run implements Runnable. If Reader is an io.Closer, it's closed when Run
// returns, which also unblocks reading when ctx is done. Otherwise the
// pending Read is left behind and whatever it returns is dropped.
func (p *Port) Run(ctx context.Context) error {
	var interrupt func()
	if closer, ok := p.Reader.(io.Closer); ok {
		var once sync.Once
		interrupt = func() {
			once.Do(func() { closer.Close() })
		}
		defer interrupt()
	}
	return fx.RunInterruptible(ctx, func() error {
		return p.readLoop(ctx)
	}, interrupt)
}

func (p *Port) readLoop(ctx context.Context) error {
	buf := make([]byte, BufferSize)
	for {
		n, err := p.Reader.Read(buf)
		if ctx.Err() != nil {
			if n > 0 {
				glog.V(2).Infof("port stopped, dropped %d bytes", n)
			}
			return ctx.Err()
		}
		for _, b := range buf[:n] {
			if !p.Session.OnByteReceived(b) {
				glog.V(2).Infof("queue full, dropped 0x%02X", b)
			}
		}
		if n > 0 && p.waker != nil {
			p.waker.TriggerNext()
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			return err
		}
	}
}
