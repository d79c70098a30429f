package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeoutGuard(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var g TimeoutGuard
	var p Parser

	// idle parser never times out.
	require.False(t, g.Poll(&p, t0.Add(time.Hour)))

	p.Feed(StartMarker, t0)
	p.Feed(byte(OpWrite), t0)
	p.Feed(0x20, t0)
	p.Feed(0x03, t0)
	p.Feed(0xDE, t0)
	require.Equal(t, StateReadPayload, p.State())

	require.False(t, g.Poll(&p, t0.Add(DefaultTimeout)))
	require.Equal(t, StateReadPayload, p.State())
	require.True(t, g.Poll(&p, t0.Add(DefaultTimeout+time.Millisecond)))
	require.Equal(t, StateWaitStart, p.State())
	require.Equal(t, uint64(1), g.Timeouts())

	// partial payload doesn't leak into the next frame.
	pkt, err := Encode(OpWrite, 0x20, []byte{1, 2, 3})
	require.NoError(t, err)
	var pr ParseResult
	for _, b := range pkt.Bytes() {
		pr = p.Feed(b, t0.Add(time.Second))
	}
	require.Equal(t, OutcomeFrame, pr.Outcome)
	require.Equal(t, []byte{1, 2, 3}, pr.Frame.Payload)
}

func TestTimeoutGuardThreshold(t *testing.T) {
	t0 := time.Unix(1000, 0)
	g := TimeoutGuard{Threshold: 5 * time.Millisecond}
	var p Parser
	p.Feed(StartMarker, t0)
	require.False(t, g.Poll(&p, t0.Add(5*time.Millisecond)))
	p.Feed(byte(OpRead), t0.Add(5*time.Millisecond))
	require.False(t, g.Poll(&p, t0.Add(9*time.Millisecond)))
	require.True(t, g.Poll(&p, t0.Add(11*time.Millisecond)))
	require.False(t, g.Poll(&p, t0.Add(time.Second)))
	require.Equal(t, uint64(1), g.Timeouts())
}
