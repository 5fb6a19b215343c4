package amxd

import (
	"encoding/binary"
	"testing"

	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrozenFieldPadding(t *testing.T) {
	tests := []struct {
		payloadLen int
		padding    int
	}{
		{0, 0},
		{1, 3},
		{2, 2},
		{3, 1},
		{4, 0},
		{5, 3},
		{8, 0},
	}

	for _, tt := range tests {
		payload := make([]byte, tt.payloadLen)
		for i := range payload {
			payload[i] = 0xAB
		}

		field := EncodeFrozenField("test", payload)

		assert.Equal(t, 0, len(field)%4, "payload length %d", tt.payloadLen)
		assert.Equal(t, common.FieldHeaderLength+tt.payloadLen+tt.padding, len(field))
		assert.Equal(t, "test", string(field[:4]))
		assert.Equal(t, uint32(len(field)), binary.BigEndian.Uint32(field[4:8]), "length counts header and padding")
		assert.Equal(t, payload, field[8:8+tt.payloadLen])
		assert.Equal(t, make([]byte, tt.padding), field[8+tt.payloadLen:])
	}
}

func TestEncodeHeaderFieldIsUnpadded(t *testing.T) {
	field := EncodeHeaderField("ptch", []byte{1, 2, 3})

	require.Len(t, field, 11)
	assert.Equal(t, "ptch", string(field[:4]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(field[4:8]))
	assert.Equal(t, []byte{1, 2, 3}, field[8:])
}

func TestEncodeFrozenFieldPadless(t *testing.T) {
	field := EncodeFrozenFieldPadless("mx@c", []byte{1, 2, 3, 4, 5})

	require.Len(t, field, 13)
	assert.Equal(t, uint32(13), binary.BigEndian.Uint32(field[4:8]))
}

func TestEncodeFieldCustomConfig(t *testing.T) {
	// padding without overhead rounds the payload alone
	cfg := FieldConfig{BigEndian: false, LengthIncludesHeader: false, Pad: true}
	field := EncodeField("abcd", []byte{1}, cfg)

	require.Len(t, field, 12)
	assert.Equal(t, uint32(4), binary.LittleEndian.Uint32(field[4:8]))
	assert.Equal(t, 12, cfg.EncodedLength(1))
}

func TestEncodeFieldPanicsOnBadTag(t *testing.T) {
	assert.Panics(t, func() { EncodeFrozenField("abc", nil) })
	assert.Panics(t, func() { EncodeHeaderField("abcde", nil) })
}

func TestDecodeFieldRoundTrip(t *testing.T) {
	for _, cfg := range []FieldConfig{HeaderField, FrozenField, FrozenFieldPadless} {
		encoded := EncodeField("fnam", []byte("helper.js\x00"), cfg)
		encoded = append(encoded, 0xFF) // trailing data is left alone

		tag, payload, n, err := DecodeField(encoded, cfg)
		require.NoError(t, err)
		assert.Equal(t, "fnam", tag)
		assert.Equal(t, len(encoded)-1, n)
		assert.Equal(t, []byte("helper.js\x00"), payload[:10])
	}
}

func TestDecodeFieldTruncated(t *testing.T) {
	_, _, _, err := DecodeField([]byte("type"), FrozenField)
	assert.ErrorIs(t, err, common.ErrCorruptField)

	field := EncodeFrozenField("type", []byte("JSON"))
	_, _, _, err = DecodeField(field[:len(field)-1], FrozenField)
	assert.ErrorIs(t, err, common.ErrCorruptField)

	// a frozen length smaller than its own header is invalid
	bad := []byte{'t', 'y', 'p', 'e', 0, 0, 0, 4}
	_, _, _, err = DecodeField(bad, FrozenField)
	assert.ErrorIs(t, err, common.ErrCorruptField)
}
