package link

import (
	"fmt"
	"time"
)

// ParserState is the state of frame reception.
type ParserState int

const (
	// StateWaitStart waits for the start marker.
	StateWaitStart ParserState = iota
	// StateReadOpcode waits for the opcode.
	StateReadOpcode
	// StateReadAddress waits for the address.
	StateReadAddress
	// StateReadLength waits for the payload length.
	StateReadLength
	// StateReadPayload receives payload bytes.
	StateReadPayload
	// StateReadChecksum waits for the trailing checksum.
	StateReadChecksum
)

// String implements fmt.Stringer.
func (s ParserState) String() string {
	switch s {
	case StateWaitStart:
		return "WaitStart"
	case StateReadOpcode:
		return "ReadOpcode"
	case StateReadAddress:
		return "ReadAddress"
	case StateReadLength:
		return "ReadLength"
	case StateReadPayload:
		return "ReadPayload"
	case StateReadChecksum:
		return "ReadChecksum"
	}
	return fmt.Sprintf("ParserState(%d)", int(s))
}

// Outcome is what one parsing step produced.
type Outcome int

const (
	// OutcomeIncomplete means more bytes are needed.
	OutcomeIncomplete Outcome = iota
	// OutcomeFrame means a valid frame was received.
	OutcomeFrame
	// OutcomeChecksumError means the frame was dropped on checksum mismatch.
	OutcomeChecksumError
	// OutcomeLengthTooLarge means the frame was aborted on an oversized length.
	OutcomeLengthTooLarge
)

// Err maps rejected outcomes to errors.
func (o Outcome) Err() error {
	switch o {
	case OutcomeChecksumError:
		return ErrChecksumMismatch
	case OutcomeLengthTooLarge:
		return ErrLengthTooLarge
	}
	return nil
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeIncomplete:
		return "Incomplete"
	case OutcomeFrame:
		return "Frame"
	case OutcomeChecksumError:
		return "ChecksumError"
	case OutcomeLengthTooLarge:
		return "LengthTooLarge"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	Outcome Outcome
	State   ParserState
	// Frame is set only when Outcome is OutcomeFrame.
	Frame *Frame
}

// Parser parses bytes received, one at a time. The zero value is ready
// to receive.
type Parser struct {
	state    ParserState
	opcode   byte
	address  byte
	length   byte
	index    byte
	sum      Checksum
	payload  [MaxPayload]byte
	lastByte time.Time
}

// State gets the current state.
func (p *Parser) State() ParserState {
	return p.state
}

// LastByte returns when the last byte was consumed.
func (p *Parser) LastByte() time.Time {
	return p.lastByte
}

// Reset resets the internal state of parser.
func (p *Parser) Reset() {
	*p = Parser{}
}

// Abort drops the frame in progress, if any.
func (p *Parser) Abort() {
	p.state, p.index = StateWaitStart, 0
}

// Feed consumes one byte received at now.
func (p *Parser) Feed(b byte, now time.Time) (pr ParseResult) {
	p.lastByte = now
	pr.Outcome, pr.Frame = p.parseByte(b)
	pr.State = p.state
	return
}

func (p *Parser) parseByte(b byte) (Outcome, *Frame) {
	switch p.state {
	case StateWaitStart:
		if b == StartMarker {
			p.sum, p.index = 0, 0
			p.state = StateReadOpcode
		}
	case StateReadOpcode:
		p.opcode, p.sum = b, p.sum.Update(b)
		p.state = StateReadAddress
	case StateReadAddress:
		p.address, p.sum = b, p.sum.Update(b)
		p.state = StateReadLength
	case StateReadLength:
		p.length, p.sum = b, p.sum.Update(b)
		if b > MaxPayload {
			p.Abort()
			return OutcomeLengthTooLarge, nil
		}
		p.index = 0
		if b == 0 {
			p.state = StateReadChecksum
		} else {
			p.state = StateReadPayload
		}
	case StateReadPayload:
		p.payload[p.index], p.sum = b, p.sum.Update(b)
		p.index++
		if p.index >= p.length {
			p.state = StateReadChecksum
		}
	case StateReadChecksum:
		p.state = StateWaitStart
		if Checksum(b) != p.sum {
			return OutcomeChecksumError, nil
		}
		return OutcomeFrame, p.frame()
	}
	return OutcomeIncomplete, nil
}

func (p *Parser) frame() *Frame {
	f := &Frame{
		Opcode:  Opcode(p.opcode),
		Address: p.address,
		Payload: make([]byte, p.length),
	}
	copy(f.Payload, p.payload[:p.length])
	return f
}
