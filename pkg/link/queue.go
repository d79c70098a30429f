package link

import "sync/atomic"

// DefaultQueueSize is the default number of slots of a ByteQueue.
const DefaultQueueSize = 128

// ByteQueue is a fixed-capacity single-producer/single-consumer byte queue.
//
// Enqueue must only be called from the producer (the receiving context) and
// Dequeue only from the consumer (the polling context). head is written by
// the producer only and tail by the consumer only, so no lock is needed.
// When full, the incoming byte is dropped and counted as an overrun.
type ByteQueue struct {
	buf      []byte
	mask     uint32
	head     atomic.Uint32
	tail     atomic.Uint32
	overruns atomic.Uint64
}

// NewByteQueue creates a ByteQueue with size slots rounded up to a power of
// two. One slot is kept free to tell full from empty.
func NewByteQueue(size int) *ByteQueue {
	n := uint32(2)
	for int(n) < size {
		n <<= 1
	}
	return &ByteQueue{buf: make([]byte, n), mask: n - 1}
}

// Enqueue appends a byte. It returns false and counts an overrun if the queue
// is full.
func (q *ByteQueue) Enqueue(b byte) bool {
	head := q.head.Load()
	next := (head + 1) & q.mask
	if next == q.tail.Load() {
		q.overruns.Add(1)
		return false
	}
	q.buf[head] = b
	// publish the byte before the index.
	q.head.Store(next)
	return true
}

// Dequeue removes the oldest byte.
func (q *ByteQueue) Dequeue() (byte, bool) {
	tail := q.tail.Load()
	if tail == q.head.Load() {
		return 0, false
	}
	b := q.buf[tail]
	q.tail.Store((tail + 1) & q.mask)
	return b, true
}

// Len returns the number of queued bytes.
func (q *ByteQueue) Len() int {
	return int((q.head.Load() - q.tail.Load()) & q.mask)
}

// Cap returns the number of bytes the queue holds when full.
func (q *ByteQueue) Cap() int {
	return len(q.buf) - 1
}

// Overruns returns the number of bytes dropped because the queue was full.
func (q *ByteQueue) Overruns() uint64 {
	return q.overruns.Load()
}

// Reset discards queued bytes. Neither context may be running.
func (q *ByteQueue) Reset() {
	q.head.Store(0)
	q.tail.Store(0)
}
