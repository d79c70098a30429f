package link

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteQueueSize(t *testing.T) {
	testCases := []struct {
		size int
		cap  int
	}{
		{0, 1},
		{2, 1},
		{8, 7},
		{9, 15},
		{DefaultQueueSize, DefaultQueueSize - 1},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.cap, NewByteQueue(tc.size).Cap(), "size %d", tc.size)
	}
}

func TestByteQueueFIFO(t *testing.T) {
	q := NewByteQueue(8)
	_, ok := q.Dequeue()
	require.False(t, ok)

	// wrap around a few times.
	for round := 0; round < 5; round++ {
		for i := 0; i < 5; i++ {
			require.True(t, q.Enqueue(byte(round*10+i)))
		}
		require.Equal(t, 5, q.Len())
		for i := 0; i < 5; i++ {
			b, ok := q.Dequeue()
			require.True(t, ok)
			require.Equal(t, byte(round*10+i), b)
		}
		require.Equal(t, 0, q.Len())
	}
	require.Zero(t, q.Overruns())
}

func TestByteQueueDropNewest(t *testing.T) {
	q := NewByteQueue(8)
	for i := 0; i < q.Cap(); i++ {
		require.True(t, q.Enqueue(byte(i)))
	}
	require.Equal(t, q.Cap(), q.Len())

	for n := 1; n <= 3; n++ {
		require.False(t, q.Enqueue(0xff))
		require.Equal(t, uint64(n), q.Overruns())
	}

	for i := 0; i < q.Cap(); i++ {
		b, ok := q.Dequeue()
		require.True(t, ok)
		require.Equal(t, byte(i), b)
	}
	_, ok := q.Dequeue()
	require.False(t, ok)

	require.True(t, q.Enqueue(0x42))
	require.Equal(t, uint64(3), q.Overruns())
}

func TestByteQueueConcurrent(t *testing.T) {
	const total = 100000
	q := NewByteQueue(16)
	go func() {
		for i := 0; i < total; i++ {
			for !q.Enqueue(byte(i)) {
				runtime.Gosched()
			}
		}
	}()
	for i := 0; i < total; i++ {
		var b byte
		var ok bool
		for b, ok = q.Dequeue(); !ok; b, ok = q.Dequeue() {
			runtime.Gosched()
		}
		require.Equal(t, byte(i), b, "byte %d", i)
	}
}

func TestByteQueueReset(t *testing.T) {
	q := NewByteQueue(4)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Reset()
	require.Equal(t, 0, q.Len())
	_, ok := q.Dequeue()
	require.False(t, ok)
}
