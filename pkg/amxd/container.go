package amxd

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/beam-cloud/maxbuild/pkg/common"
)

// FooterLocation is the absolute offset of the footer within the patch body.
func FooterLocation(blob []byte) uint64 {
	return uint64(len(blob)) + common.FrozenHeaderLength
}

// BuildContainer assembles the complete frozen device: the ampf, meta and ptch
// header fields, where ptch holds the frozen header, the packed blob and the footer.
func BuildContainer(deviceType common.DeviceType, meta uint32, blob []byte, footer []byte) ([]byte, error) {
	if !deviceType.Valid() {
		return nil, &common.BuildError{Op: "build container", Field: common.TagDeviceType, Err: fmt.Errorf("%w: %d", common.ErrUnknownDeviceType, int(deviceType))}
	}

	bodyLength := uint64(common.FrozenHeaderLength) + uint64(len(blob)) + uint64(len(footer))
	if bodyLength > math.MaxUint32 {
		return nil, &common.BuildError{Op: "build container", Field: common.TagPatch, Err: common.ErrFieldTooLarge}
	}

	body := make([]byte, 0, bodyLength)
	body = append(body, buildFrozenHeader(FooterLocation(blob))...)
	body = append(body, blob...)
	body = append(body, footer...)

	metaBytes := binary.LittleEndian.AppendUint32(nil, meta)

	out := make([]byte, 0, 3*common.FieldHeaderLength+common.TagLength+len(metaBytes)+len(body))
	out = append(out, EncodeHeaderField(common.TagDeviceType, []byte(deviceType.Tag()))...)
	out = append(out, EncodeHeaderField(common.TagMeta, metaBytes)...)
	out = append(out, EncodeHeaderField(common.TagPatch, body)...)
	return out, nil
}

// buildFrozenHeader is always exactly FrozenHeaderLength bytes.
func buildFrozenHeader(footerLocation uint64) []byte {
	return EncodeFrozenFieldPadless(common.TagFrozenHeader, binary.BigEndian.AppendUint64(nil, footerLocation))
}
