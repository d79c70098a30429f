package link

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/mculink/pkg/store"
)

type chunkReader struct {
	chunks [][]byte
	errs   []error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	err := r.errs[0]
	r.chunks, r.errs = r.chunks[1:], r.errs[1:]
	return n, err
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

type wakeCounter struct {
	n int
}

func (w *wakeCounter) TriggerNext() { w.n++ }

func TestPortReadLoop(t *testing.T) {
	pkt := mustEncode(t, OpWrite, 0x20, 0xDE, 0xAD, 0xBE)
	r := &chunkReader{
		chunks: [][]byte{pkt[:3], nil, pkt[3:]},
		errs:   []error{nil, timeoutErr{}, nil},
	}
	var out bytes.Buffer
	s := NewSession(store.NewMemStore(store.DefaultSize), &out)
	wake := &wakeCounter{}
	p := NewPort(r, s)
	p.waker = wake

	require.True(t, os.IsTimeout(timeoutErr{}))
	err := p.Run(context.Background())
	require.Equal(t, io.EOF, err)
	require.Equal(t, 2, wake.n)

	require.NoError(t, s.PollTick(time.Now()))
	ack, err := Ack(0x20, []byte{0xDE, 0xAD, 0xBE})
	require.NoError(t, err)
	require.Equal(t, ack.Bytes(), out.Bytes())
}

type blockingReader struct {
	closed chan struct{}
}

func (r *blockingReader) Read([]byte) (int, error) {
	<-r.closed
	return 0, io.ErrClosedPipe
}

func (r *blockingReader) Close() error {
	close(r.closed)
	return nil
}

func TestPortCancel(t *testing.T) {
	r := &blockingReader{closed: make(chan struct{})}
	p := NewPort(r, NewSession(nil, io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx)
	}()
	cancel()
	select {
	case err := <-errCh:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("port didn't stop")
	}
}

func TestPortDropsReadAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &chunkReader{
		chunks: [][]byte{mustEncode(t, OpWrite, 0x20, 0x01)},
		errs:   []error{nil},
	}
	s := NewSession(store.NewMemStore(store.DefaultSize), io.Discard)
	p := NewPort(r, s)
	wake := &wakeCounter{}
	p.waker = wake

	require.Equal(t, context.Canceled, p.readLoop(ctx))
	require.Zero(t, s.queue.Len())
	require.Zero(t, wake.n)
}
