// Package link provides the MCU-to-MCU framed serial protocol.
package link

// The protocol is communicated between two microcontrollers (or a host and a
// microcontroller) over a byte-oriented serial link. One side issues WRITE
// and READ requests against an addressable memory region, the other side
// replies with ACK carrying data, or NACK when a request is rejected.
//
// Wire format:
//
//	0xAA | opcode | address | length | payload... | checksum
//
// The checksum is the XOR of opcode, address, length and all payload bytes.
//
// Received bytes are handed from the receiving context to the polling
// context through a lock-free single-producer/single-consumer ByteQueue.
// A Session drains the queue, runs the Parser and transmits replies, and a
// TimeoutGuard resynchronizes the Parser when a frame stalls.
