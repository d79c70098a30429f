package link

import "fmt"

// Opcode selects the operation of a frame.
type Opcode byte

// Opcodes
const (
	OpWrite Opcode = 0x02
	OpRead  Opcode = 0x55
	OpAck   Opcode = 0xCC
	OpNack  Opcode = 0x33
)

// Framing
const (
	// StartMarker begins every frame and is excluded from checksum.
	StartMarker byte = 0xAA
	// BufferSize is the capacity of the frame working buffer.
	BufferSize = 64
	// headerSize covers marker, opcode, address and length.
	headerSize = 4
	// MaxPayload is the largest payload a frame may carry.
	MaxPayload = BufferSize - headerSize - 1
	// MaxFrameSize is the largest encoded frame.
	MaxFrameSize = headerSize + MaxPayload + 1
)

// IsValid indicates the opcode is one of the known opcodes.
func (o Opcode) IsValid() bool {
	switch o {
	case OpWrite, OpRead, OpAck, OpNack:
		return true
	}
	return false
}

// IsReply indicates the opcode is ACK or NACK.
func (o Opcode) IsReply() bool {
	return o == OpAck || o == OpNack
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	switch o {
	case OpWrite:
		return "WRITE"
	case OpRead:
		return "READ"
	case OpAck:
		return "ACK"
	case OpNack:
		return "NACK"
	}
	return fmt.Sprintf("OP(0x%02X)", byte(o))
}
