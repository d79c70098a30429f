package link

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type parserTestStep struct {
	in    []byte
	final ParseResult
}

type parserTestSteps struct {
	steps []parserTestStep
}

func parserSteps() *parserTestSteps {
	return &parserTestSteps{}
}

// on feeds bytes which leave the parser in state.
func (b *parserTestSteps) on(state ParserState, in ...byte) *parserTestSteps {
	b.steps = append(b.steps, parserTestStep{in: in, final: ParseResult{State: state}})
	return b
}

func (b *parserTestSteps) frame(op Opcode, address byte, payload ...byte) *parserTestSteps {
	if payload == nil {
		payload = []byte{}
	}
	b.steps[len(b.steps)-1].final = ParseResult{
		Outcome: OutcomeFrame,
		State:   StateWaitStart,
		Frame:   &Frame{Opcode: op, Address: address, Payload: payload},
	}
	return b
}

func (b *parserTestSteps) rejected(o Outcome) *parserTestSteps {
	b.steps[len(b.steps)-1].final = ParseResult{Outcome: o, State: StateWaitStart}
	return b
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		steps *parserTestSteps
	}{
		{
			name: "write frame",
			steps: parserSteps().
				on(StateReadOpcode, 0xAA).
				on(StateReadAddress, 0x02).
				on(StateReadLength, 0x20).
				on(StateReadPayload, 0x03, 0xDE, 0xAD).
				on(StateReadChecksum, 0xBE).
				on(StateWaitStart, 0xEC).frame(OpWrite, 0x20, 0xDE, 0xAD, 0xBE),
		},
		{
			name: "checksum mismatch",
			steps: parserSteps().
				on(StateReadChecksum, 0xAA, 0x02, 0x20, 0x03, 0xDE, 0xAD, 0xBE).
				on(StateWaitStart, 0x00).rejected(OutcomeChecksumError).
				on(StateReadOpcode, 0xAA),
		},
		{
			name: "empty payload",
			steps: parserSteps().
				on(StateReadLength, 0xAA, 0x33, 0x00).
				on(StateReadChecksum, 0x00).
				on(StateWaitStart, 0x33).frame(OpNack, 0),
		},
		{
			name: "skip bytes before marker",
			steps: parserSteps().
				on(StateWaitStart, 0x00, 0x55, 0xCC, 0xFF).
				on(StateReadChecksum, 0xAA, 0xCC, 0x10, 0x00).
				on(StateWaitStart, 0xDC).frame(OpAck, 0x10),
		},
		{
			name: "marker inside frame is data",
			steps: parserSteps().
				on(StateReadChecksum, 0xAA, 0xAA, 0xAA, 0x01, 0xAA).
				on(StateWaitStart, 0xAA^0xAA^0x01^0xAA).frame(Opcode(0xAA), 0xAA, 0xAA),
		},
		{
			name: "length too large",
			steps: parserSteps().
				on(StateReadLength, 0xAA, 0x02, 0x00).
				on(StateWaitStart, MaxPayload+1).rejected(OutcomeLengthTooLarge).
				on(StateWaitStart, 0x01, 0x02).
				on(StateReadChecksum, 0xAA, 0x55, 0x01, 0x01, 0x04).
				on(StateWaitStart, 0x55^0x01^0x01^0x04).frame(OpRead, 0x01, 0x04),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser Parser
			now := time.Now()
			for n, s := range tc.steps.steps {
				var pr ParseResult
				for i, b := range s.in {
					pr = parser.Feed(b, now)
					if i+1 < len(s.in) {
						require.Equalf(t, OutcomeIncomplete, pr.Outcome, "step[%d][%d] outcome mismatch", n, i)
						require.Nilf(t, pr.Frame, "step[%d][%d] unexpected frame", n, i)
					}
				}
				require.Equalf(t, s.final, pr, "step[%d] final mismatch", n)
			}
		})
	}
}

func TestParserRoundTrip(t *testing.T) {
	for l := 0; l <= MaxPayload; l++ {
		payload := make([]byte, l)
		for i := range payload {
			payload[i] = byte(i*7 + l)
		}
		pkt, err := Encode(OpWrite, byte(l), payload)
		require.NoError(t, err)

		var parser Parser
		var pr ParseResult
		for _, b := range pkt.Bytes() {
			pr = parser.Feed(b, time.Time{})
		}
		require.Equal(t, OutcomeFrame, pr.Outcome, "length %d", l)
		require.Equal(t, OpWrite, pr.Frame.Opcode)
		require.Equal(t, byte(l), pr.Frame.Address)
		require.Equal(t, byte(l), pr.Frame.Len())
		require.Equal(t, payload, pr.Frame.Payload)
	}
}

func TestParserPayloadCorruption(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x7f, 0x80, 0xAA, 0xff}
	pkt, err := Encode(OpWrite, 0x20, payload)
	require.NoError(t, err)
	for i := range payload {
		for _, flip := range []byte{0x01, 0x80, 0xff} {
			t.Run(fmt.Sprintf("%d^%02x", i, flip), func(t *testing.T) {
				raw := append([]byte(nil), pkt.Bytes()...)
				raw[headerSize+i] ^= flip
				var parser Parser
				var pr ParseResult
				for _, b := range raw {
					pr = parser.Feed(b, time.Time{})
					require.Nil(t, pr.Frame)
				}
				require.Equal(t, OutcomeChecksumError, pr.Outcome)
				require.Equal(t, StateWaitStart, parser.State())
			})
		}
	}
}

func TestParserRejectsAllOversizedLengths(t *testing.T) {
	for l := MaxPayload + 1; l <= 0xff; l++ {
		var parser Parser
		for _, b := range []byte{StartMarker, byte(OpWrite), 0x00} {
			parser.Feed(b, time.Time{})
		}
		pr := parser.Feed(byte(l), time.Time{})
		require.Equal(t, OutcomeLengthTooLarge, pr.Outcome)
		require.Equal(t, StateWaitStart, pr.State)
		require.Equal(t, ErrLengthTooLarge, pr.Outcome.Err())
		// next byte is not taken as payload.
		pr = parser.Feed(0x01, time.Time{})
		require.Equal(t, ParseResult{State: StateWaitStart}, pr)
	}
}

func TestParserLastByte(t *testing.T) {
	var parser Parser
	t0 := time.Unix(100, 0)
	parser.Feed(0x00, t0)
	require.Equal(t, t0, parser.LastByte())
	parser.Feed(StartMarker, t0.Add(time.Millisecond))
	require.Equal(t, t0.Add(time.Millisecond), parser.LastByte())
	parser.Feed(byte(OpRead), t0.Add(2*time.Millisecond))
	require.Equal(t, t0.Add(2*time.Millisecond), parser.LastByte())
}

func TestParserAbort(t *testing.T) {
	var parser Parser
	for _, b := range []byte{StartMarker, byte(OpWrite), 0x00, 0x03, 0x01} {
		parser.Feed(b, time.Time{})
	}
	require.Equal(t, StateReadPayload, parser.State())
	parser.Abort()
	require.Equal(t, StateWaitStart, parser.State())

	pkt, err := Encode(OpWrite, 0x01, []byte{9})
	require.NoError(t, err)
	var pr ParseResult
	for _, b := range pkt.Bytes() {
		pr = parser.Feed(b, time.Time{})
	}
	require.Equal(t, OutcomeFrame, pr.Outcome)
	require.Equal(t, []byte{9}, pr.Frame.Payload)
}

func TestOutcome(t *testing.T) {
	require.NoError(t, OutcomeIncomplete.Err())
	require.NoError(t, OutcomeFrame.Err())
	require.Equal(t, ErrChecksumMismatch, OutcomeChecksumError.Err())
	require.Equal(t, ErrLengthTooLarge, OutcomeLengthTooLarge.Err())
	require.Equal(t, "ChecksumError", OutcomeChecksumError.String())
	require.Equal(t, "ReadPayload", StateReadPayload.String())
}
