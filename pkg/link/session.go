package link

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/mculink/pkg/framework"
)

// Store is the addressable memory WRITE and READ requests act upon.
// It must reject accesses beyond its bounds.
type Store interface {
	Read(address byte, n int) ([]byte, error)
	Write(address byte, data []byte) error
}

// ReplyHandler is called in the polling context when an ACK or NACK frame
// is received.
type ReplyHandler interface {
	HandleReply(*Frame)
}

// HandleReplyFunc is func type of ReplyHandler.
type HandleReplyFunc func(*Frame)

// HandleReply implements ReplyHandler.
func (f HandleReplyFunc) HandleReply(frame *Frame) {
	f(frame)
}

// Stats are the counters of a Session.
type Stats struct {
	Frames         uint64
	Acks           uint64
	Nacks          uint64
	ChecksumErrors uint64
	LengthErrors   uint64
	UnknownOpcodes uint64
	StoreErrors    uint64
	Timeouts       uint64
	Overruns       uint64
	TransmitErrors uint64
}

// Session serves one link: it drains received bytes, parses frames,
// executes requests against a Store and transmits replies.
//
// OnByteReceived is the only method for the receiving context. PollTick and
// State must be called from a single polling context. Send and Stats are
// safe to call from anywhere.
type Session struct {
	store   Store
	writer  io.Writer
	queue   *ByteQueue
	parser  Parser
	guard   TimeoutGuard
	replies ReplyHandler

	sendLock sync.Mutex

	frames         atomic.Uint64
	acks           atomic.Uint64
	nacks          atomic.Uint64
	checksumErrors atomic.Uint64
	lengthErrors   atomic.Uint64
	unknownOpcodes atomic.Uint64
	storeErrors    atomic.Uint64
	transmitErrors atomic.Uint64
}

// Option configures a Session.
type Option func(*Session)

// WithQueueSize sets the number of ByteQueue slots.
func WithQueueSize(size int) Option {
	return func(s *Session) {
		s.queue = NewByteQueue(size)
	}
}

// WithTimeout sets the TimeoutGuard threshold.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.guard.Threshold = d
	}
}

// WithReplyHandler receives ACK and NACK frames.
func WithReplyHandler(h ReplyHandler) Option {
	return func(s *Session) {
		s.replies = h
	}
}

// NewSession creates a Session. store may be nil for a session which only
// issues requests, in which case received requests are rejected.
func NewSession(store Store, w io.Writer, opts ...Option) *Session {
	s := &Session{store: store, writer: w}
	s.guard.Threshold = DefaultTimeout
	for _, opt := range opts {
		opt(s)
	}
	if s.queue == nil {
		s.queue = NewByteQueue(DefaultQueueSize)
	}
	return s
}

// Init prepares the session for the first byte. It must be called before
// the receiving context starts.
func (s *Session) Init() {
	s.queue.Reset()
	s.parser.Reset()
}

// OnByteReceived hands a received byte to the polling context. It never
// blocks, and returns false if the byte was dropped on a full queue.
func (s *Session) OnByteReceived(b byte) bool {
	return s.queue.Enqueue(b)
}

// PollTick drains received bytes through the parser, replies to completed
// frames, then drops a stalled partial frame.
func (s *Session) PollTick(now time.Time) error {
	var errs fx.AggregatedError
	for {
		b, ok := s.queue.Dequeue()
		if !ok {
			break
		}
		pr := s.parser.Feed(b, now)
		if glog.V(4) {
			glog.Infof("RX 0x%02X -> %s", b, pr.State)
		}
		errs.Add(s.react(pr))
	}
	s.guard.Poll(&s.parser, now)
	return errs.Aggregate()
}

// Poll implements framework.Poller.
func (s *Session) Poll(now time.Time) error {
	return s.PollTick(now)
}

// State gets the parser state.
func (s *Session) State() ParserState {
	return s.parser.State()
}

// Stats gets a snapshot of the counters.
func (s *Session) Stats() Stats {
	return Stats{
		Frames:         s.frames.Load(),
		Acks:           s.acks.Load(),
		Nacks:          s.nacks.Load(),
		ChecksumErrors: s.checksumErrors.Load(),
		LengthErrors:   s.lengthErrors.Load(),
		UnknownOpcodes: s.unknownOpcodes.Load(),
		StoreErrors:    s.storeErrors.Load(),
		Timeouts:       s.guard.Timeouts(),
		Overruns:       s.queue.Overruns(),
		TransmitErrors: s.transmitErrors.Load(),
	}
}

// Send transmits an encoded packet.
func (s *Session) Send(pkt Packet) error {
	s.sendLock.Lock()
	defer s.sendLock.Unlock()
	if _, err := pkt.WriteTo(s.writer); err != nil {
		s.transmitErrors.Add(1)
		return fmt.Errorf("transmit: %w", err)
	}
	return nil
}

func (s *Session) react(pr ParseResult) error {
	switch pr.Outcome {
	case OutcomeFrame:
		return s.dispatch(pr.Frame)
	case OutcomeChecksumError:
		s.checksumErrors.Add(1)
		glog.Warning("invalid checksum, dropping frame")
		return s.nack()
	case OutcomeLengthTooLarge:
		s.lengthErrors.Add(1)
		glog.Warning("length exceeds buffer, dropping frame")
		return s.nack()
	}
	return nil
}

func (s *Session) dispatch(f *Frame) error {
	s.frames.Add(1)
	if glog.V(2) {
		glog.Infof("RX %s", f)
	}
	switch f.Opcode {
	case OpWrite:
		if err := s.write(f); err != nil {
			s.storeErrors.Add(1)
			glog.Warningf("%s failed: %v", f.Opcode, err)
			return s.nack()
		}
		return s.ack(f.Address, f.Payload)
	case OpRead:
		data, err := s.read(f)
		if err != nil {
			s.storeErrors.Add(1)
			glog.Warningf("%s failed: %v", f.Opcode, err)
			return s.nack()
		}
		return s.ack(f.Address, data)
	case OpAck, OpNack:
		if h := s.replies; h != nil {
			h.HandleReply(f)
		}
		return nil
	}
	s.unknownOpcodes.Add(1)
	glog.Warningf("unknown opcode 0x%02X", byte(f.Opcode))
	return s.nack()
}

func (s *Session) write(f *Frame) error {
	if s.store == nil {
		return ErrUnknownOpcode
	}
	return s.store.Write(f.Address, f.Payload)
}

// read expects a single payload byte with the number of bytes to read.
func (s *Session) read(f *Frame) ([]byte, error) {
	if s.store == nil {
		return nil, ErrUnknownOpcode
	}
	if len(f.Payload) != 1 || f.Payload[0] > MaxPayload {
		return nil, ErrMalformedRequest
	}
	return s.store.Read(f.Address, int(f.Payload[0]))
}

func (s *Session) ack(address byte, payload []byte) error {
	pkt, err := Ack(address, payload)
	if err != nil {
		return s.nack()
	}
	s.acks.Add(1)
	if glog.V(2) {
		glog.Infof("TX %s", &Frame{Opcode: OpAck, Address: address, Payload: payload})
	}
	return s.Send(pkt)
}

func (s *Session) nack() error {
	s.nacks.Add(1)
	glog.V(2).Info("TX NACK")
	return s.Send(Nack())
}
