package link

import (
	"bytes"
	"fmt"
	"io"
)

// Frame contains the information of a parsed frame.
type Frame struct {
	Opcode  Opcode
	Address byte
	Payload []byte
}

// Len returns the value of the length field.
func (f *Frame) Len() byte {
	return byte(len(f.Payload))
}

// Bytes returns encoded bytes for sending.
// It panics if payload exceeds MaxPayload.
func (f *Frame) Bytes() []byte {
	pkt, err := Encode(f.Opcode, f.Address, f.Payload)
	if err != nil {
		panic(err)
	}
	return append([]byte(nil), pkt.Bytes()...)
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	pkt, err := Encode(f.Opcode, f.Address, f.Payload)
	if err != nil {
		return 0, err
	}
	return pkt.WriteTo(w)
}

// String formats the frame for debug output.
func (f *Frame) String() string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s addr=0x%02X len=%d", f.Opcode, f.Address, len(f.Payload))
	if len(f.Payload) > 0 {
		w.WriteString(" data=")
		for n, b := range f.Payload {
			if n > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(&w, "%02X", b)
		}
	}
	return w.String()
}
