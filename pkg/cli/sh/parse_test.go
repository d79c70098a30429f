package sh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByte(t *testing.T) {
	tests := []struct {
		in  string
		out byte
		ok  bool
	}{
		{"0x20", 0x20, true},
		{"32", 32, true},
		{"255", 255, true},
		{"0xff", 0xff, true},
		{"256", 0, false},
		{"-1", 0, false},
		{"addr", 0, false},
	}
	for _, test := range tests {
		v, err := ParseByte(test.in)
		if !test.ok {
			assert.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.out, v, test.in)
	}
}

func TestParseHex(t *testing.T) {
	data, err := ParseHex("DE", "ad", "0xBEEF", "1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x01}, data)

	data, err = ParseHex()
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = ParseHex("XY")
	assert.Error(t, err)
}

func TestFormatHex(t *testing.T) {
	assert.Equal(t, "DE AD", FormatHex([]byte{0xde, 0xad}))
	assert.Equal(t, "(empty)", FormatHex(nil))
}
