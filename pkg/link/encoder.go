package link

import "io"

// Packet is an encoded outbound frame. It has a fixed maximum size so
// encoding never allocates.
type Packet struct {
	buf [MaxFrameSize]byte
	n   int
}

// Bytes returns the encoded bytes. The slice aliases the Packet.
func (p *Packet) Bytes() []byte {
	return p.buf[:p.n]
}

// Len returns the number of encoded bytes.
func (p *Packet) Len() int {
	return p.n
}

// WriteTo writes encoded bytes in a single Write call.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.buf[:p.n])
	return int64(n), err
}

// Encode builds a frame: marker, opcode, address, length, payload, checksum.
func Encode(op Opcode, address byte, payload []byte) (pkt Packet, err error) {
	if len(payload) > MaxPayload {
		err = ErrPayloadTooLarge
		return
	}
	l := byte(len(payload))
	pkt.buf[0], pkt.buf[1], pkt.buf[2], pkt.buf[3] = StartMarker, byte(op), address, l
	copy(pkt.buf[headerSize:], payload)
	pkt.n = headerSize + int(l)
	pkt.buf[pkt.n] = byte(ChecksumOf(op, address, payload))
	pkt.n++
	return
}

// Ack encodes an ACK echoing address and carrying payload.
func Ack(address byte, payload []byte) (Packet, error) {
	return Encode(OpAck, address, payload)
}

// Nack encodes a NACK with zero address and empty payload.
func Nack() Packet {
	pkt, _ := Encode(OpNack, 0, nil)
	return pkt
}
