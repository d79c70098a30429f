package link

import (
	"errors"
	"fmt"
)

var (
	// ErrChecksumMismatch indicates the trailing checksum byte doesn't match.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrLengthTooLarge indicates the declared payload length exceeds MaxPayload.
	ErrLengthTooLarge = errors.New("length too large")
	// ErrUnknownOpcode indicates the opcode is not a request the session serves.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrPayloadTooLarge is returned when encoding more than MaxPayload bytes.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrMalformedRequest indicates a request whose payload doesn't fit its opcode.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrNoReply indicates no reply was received from peer in time.
	ErrNoReply = errors.New("no reply")
	// ErrUnexpectedReply indicates a reply doesn't match the request.
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// NackError is returned by Client when peer replies NACK.
type NackError struct {
	Request Opcode
	Address byte
}

// Error implements error.
func (e *NackError) Error() string {
	return fmt.Sprintf("%s 0x%02X rejected by peer", e.Request, e.Address)
}
