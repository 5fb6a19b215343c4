package amxd

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/beam-cloud/maxbuild/pkg/common"
)

// FieldConfig selects how a field's length integer is written.
type FieldConfig struct {
	BigEndian            bool
	LengthIncludesHeader bool
	Pad                  bool
}

var (
	// HeaderField is used for the three outermost fields: ampf, meta and ptch.
	HeaderField = FieldConfig{BigEndian: false, LengthIncludesHeader: false, Pad: false}

	// FrozenField is used for every field nested inside the patch body.
	FrozenField = FieldConfig{BigEndian: true, LengthIncludesHeader: true, Pad: true}

	// FrozenFieldPadless is only used for the mx@c frozen header.
	FrozenFieldPadless = FieldConfig{BigEndian: true, LengthIncludesHeader: true, Pad: false}
)

func (c FieldConfig) byteOrder() binary.ByteOrder {
	if c.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (c FieldConfig) overhead() int {
	if c.LengthIncludesHeader {
		return common.FieldHeaderLength
	}
	return 0
}

// padding returns the number of zero bytes appended after a payload of length n.
func (c FieldConfig) padding(n int) int {
	rem := (n + c.overhead()) % common.FieldAlignment
	if rem == 0 || !c.Pad {
		return 0
	}
	return common.FieldAlignment - rem
}

// EncodedLength returns the total number of bytes EncodeField emits for a payload of length n.
func (c FieldConfig) EncodedLength(n int) int {
	return common.FieldHeaderLength + n + c.padding(n)
}

// EncodeField writes tag, length, payload and padding. The tag must be exactly
// four bytes and the resulting length must fit in 32 bits; anything else is a
// programming error and panics.
func EncodeField(tag string, payload []byte, cfg FieldConfig) []byte {
	if len(tag) != common.TagLength {
		panic(fmt.Sprintf("amxd: field tag %q is not %d bytes", tag, common.TagLength))
	}

	padding := cfg.padding(len(payload))
	length := uint64(len(payload)) + uint64(padding) + uint64(cfg.overhead())
	if length > math.MaxUint32 {
		panic(fmt.Sprintf("amxd: field %q length %d overflows 32 bits", tag, length))
	}

	buf := make([]byte, common.FieldHeaderLength, cfg.EncodedLength(len(payload)))
	copy(buf, tag)
	cfg.byteOrder().PutUint32(buf[common.TagLength:], uint32(length))
	buf = append(buf, payload...)
	buf = append(buf, make([]byte, padding)...)
	return buf
}

func EncodeHeaderField(tag string, payload []byte) []byte {
	return EncodeField(tag, payload, HeaderField)
}

func EncodeFrozenField(tag string, payload []byte) []byte {
	return EncodeField(tag, payload, FrozenField)
}

func EncodeFrozenFieldPadless(tag string, payload []byte) []byte {
	return EncodeField(tag, payload, FrozenFieldPadless)
}

func encodeUint32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

// DecodeField reads one field from the start of buf. For frozen fields the
// returned payload still carries any trailing padding. n is the number of
// bytes the field occupies in buf.
func DecodeField(buf []byte, cfg FieldConfig) (tag string, payload []byte, n int, err error) {
	if len(buf) < common.FieldHeaderLength {
		return "", nil, 0, fmt.Errorf("%w: %d bytes left, need a field header", common.ErrCorruptField, len(buf))
	}

	tag = string(buf[:common.TagLength])
	length := uint64(cfg.byteOrder().Uint32(buf[common.TagLength:common.FieldHeaderLength]))

	total := length
	if !cfg.LengthIncludesHeader {
		total += common.FieldHeaderLength
	}
	if total < common.FieldHeaderLength || total > uint64(len(buf)) {
		return tag, nil, 0, fmt.Errorf("%w: %q declares %d bytes, %d available", common.ErrCorruptField, tag, total, len(buf))
	}

	return tag, buf[common.FieldHeaderLength:total], int(total), nil
}

// expectField decodes one field and checks its tag.
func expectField(buf []byte, tag string, cfg FieldConfig) ([]byte, int, error) {
	got, payload, n, err := DecodeField(buf, cfg)
	if err != nil {
		return nil, 0, &common.BuildError{Op: "decode", Field: tag, Err: err}
	}
	if got != tag {
		return nil, 0, &common.BuildError{Op: "decode", Field: tag, Err: fmt.Errorf("%w: found %q", common.ErrCorruptField, got)}
	}
	return payload, n, nil
}
