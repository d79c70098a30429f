package link

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// DefaultReplyTimeout is how long Client waits for a reply.
const DefaultReplyTimeout = 500 * time.Millisecond

// Client issues WRITE and READ requests to the peer.
//
// The protocol carries no sequence numbers, so requests are serialized:
// a request waits until the previous one completes.
type Client struct {
	Timeout time.Duration

	session *Session
	lock    sync.Mutex
	waiting atomic.Bool
	replyCh chan *Frame
}

// NewClient creates a Client transmitting on w. Received bytes are fed
// through Session, usually by a Port.
func NewClient(w io.Writer, opts ...Option) *Client {
	c := &Client{
		Timeout: DefaultReplyTimeout,
		replyCh: make(chan *Frame, 1),
	}
	opts = append(opts, WithReplyHandler(HandleReplyFunc(c.handleReply)))
	c.session = NewSession(nil, w, opts...)
	return c
}

// Session gets the underlying Session.
func (c *Client) Session() *Session {
	return c.session
}

// Write writes data to peer memory at address.
func (c *Client) Write(ctx context.Context, address byte, data []byte) error {
	pkt, err := Encode(OpWrite, address, data)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, OpWrite, address, pkt)
	return err
}

// Read reads n bytes from peer memory at address.
func (c *Client) Read(ctx context.Context, address byte, n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrMalformedRequest
	}
	if n > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	pkt, err := Encode(OpRead, address, []byte{byte(n)})
	if err != nil {
		return nil, err
	}
	reply, err := c.do(ctx, OpRead, address, pkt)
	if err != nil {
		return nil, err
	}
	if len(reply.Payload) != n {
		return nil, ErrUnexpectedReply
	}
	return reply.Payload, nil
}

// Do sends a request packet and waits for its reply.
func (c *Client) Do(ctx context.Context, pkt Packet) (*Frame, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	// drop a reply arrived after its request gave up.
	select {
	case f := <-c.replyCh:
		glog.Warningf("dropping stale reply %s", f)
	default:
	}

	c.waiting.Store(true)
	defer c.waiting.Store(false)
	if err := c.session.Send(pkt); err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f := <-c.replyCh:
		return f, nil
	case <-timer.C:
		return nil, ErrNoReply
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) do(ctx context.Context, op Opcode, address byte, pkt Packet) (*Frame, error) {
	reply, err := c.Do(ctx, pkt)
	if err != nil {
		return nil, err
	}
	if reply.Opcode == OpNack {
		return nil, &NackError{Request: op, Address: address}
	}
	if reply.Address != address {
		return nil, ErrUnexpectedReply
	}
	return reply, nil
}

func (c *Client) handleReply(f *Frame) {
	if !c.waiting.Load() {
		glog.Warningf("unsolicited reply %s", f)
		return
	}
	select {
	case c.replyCh <- f:
	default:
		glog.Warningf("extra reply %s", f)
	}
}
