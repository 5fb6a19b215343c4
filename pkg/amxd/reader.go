package amxd

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/tidwall/btree"
)

// Device is a decoded frozen device.
type Device struct {
	Type           common.DeviceType
	Meta           uint32
	FooterLocation uint64
	Body           []byte // ptch payload; file offsets index into it
	Files          []common.DeviceFile

	index *btree.BTree
}

func newIndex() *btree.BTree {
	compare := func(a, b interface{}) bool {
		return a.(*common.DeviceFile).FileName < b.(*common.DeviceFile).FileName
	}
	return btree.New(compare)
}

// Get returns the directory entry with the given file name, or nil.
func (d *Device) Get(name string) *common.DeviceFile {
	item := d.index.Get(&common.DeviceFile{FileName: name})
	if item == nil {
		return nil
	}
	return item.(*common.DeviceFile)
}

// Names returns the packed file names in lexical order.
func (d *Device) Names() []string {
	names := make([]string, 0, d.index.Len())
	d.index.Ascend(nil, func(item interface{}) bool {
		names = append(names, item.(*common.DeviceFile).FileName)
		return true
	})
	return names
}

// MainFile returns the entry flagged as the main patcher, or nil.
func (d *Device) MainFile() *common.DeviceFile {
	for i := range d.Files {
		if d.Files[i].IsMain() {
			return &d.Files[i]
		}
	}
	return nil
}

// FileData returns the packed contents of the named file.
func (d *Device) FileData(name string) ([]byte, error) {
	file := d.Get(name)
	if file == nil {
		return nil, &common.BuildError{Op: "read", Path: name, Err: common.ErrFileNotFound}
	}
	return d.Body[file.DataOffset:file.End()], nil
}

// ParseContainer decodes a frozen device produced by BuildContainer.
func ParseContainer(data []byte) (*Device, error) {
	device := &Device{index: newIndex()}

	payload, n, err := expectField(data, common.TagDeviceType, HeaderField)
	if err != nil {
		return nil, err
	}
	device.Type, err = common.DeviceTypeFromTag(string(payload))
	if err != nil {
		return nil, &common.BuildError{Op: "decode", Field: common.TagDeviceType, Err: err}
	}
	data = data[n:]

	payload, n, err = expectField(data, common.TagMeta, HeaderField)
	if err != nil {
		return nil, err
	}
	if len(payload) != 4 {
		return nil, &common.BuildError{Op: "decode", Field: common.TagMeta, Err: fmt.Errorf("%w: %d byte payload", common.ErrCorruptField, len(payload))}
	}
	device.Meta = binary.LittleEndian.Uint32(payload)
	data = data[n:]

	device.Body, n, err = expectField(data, common.TagPatch, HeaderField)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, &common.BuildError{Op: "decode", Field: common.TagPatch, Err: fmt.Errorf("%w: %d trailing bytes", common.ErrCorruptField, len(data)-n)}
	}

	if err := device.parseBody(); err != nil {
		return nil, err
	}
	return device, nil
}

func (d *Device) parseBody() error {
	payload, n, err := expectField(d.Body, common.TagFrozenHeader, FrozenFieldPadless)
	if err != nil {
		return err
	}
	if n != common.FrozenHeaderLength || len(payload) != 8 {
		return &common.BuildError{Op: "decode", Field: common.TagFrozenHeader, Err: common.ErrFileHeaderMismatch}
	}

	d.FooterLocation = binary.BigEndian.Uint64(payload)
	if d.FooterLocation < common.FrozenHeaderLength || d.FooterLocation > uint64(len(d.Body)) {
		return &common.BuildError{
			Op:    "decode",
			Field: common.TagFrozenHeader,
			Err:   fmt.Errorf("%w: footer location %d outside patch body of %d bytes", common.ErrFileHeaderMismatch, d.FooterLocation, len(d.Body)),
		}
	}

	footer := d.Body[d.FooterLocation:]
	entries, n, err := expectField(footer, common.TagDirectory, FrozenField)
	if err != nil {
		return err
	}
	if n != len(footer) {
		return &common.BuildError{Op: "decode", Field: common.TagDirectory, Err: fmt.Errorf("%w: %d trailing bytes", common.ErrCorruptField, len(footer)-n)}
	}

	for len(entries) > 0 {
		if isPadding(entries) {
			break
		}

		record, n, err := expectField(entries, common.TagDirEntry, FrozenField)
		if err != nil {
			return err
		}
		entries = entries[n:]

		file, err := decodeDirEntry(record)
		if err != nil {
			return err
		}
		if uint64(file.DataOffset) < common.FrozenHeaderLength || file.End() > d.FooterLocation {
			return &common.BuildError{
				Op:    "decode",
				Path:  file.FileName,
				Field: common.TagFileOffset,
				Err:   fmt.Errorf("%w: data [%d, %d) outside packed blob", common.ErrCorruptField, file.DataOffset, file.End()),
			}
		}
		d.Files = append(d.Files, file)
	}

	for i := range d.Files {
		d.index.Set(&d.Files[i])
	}
	return nil
}

func decodeDirEntry(record []byte) (common.DeviceFile, error) {
	var file common.DeviceFile

	for len(record) > 0 {
		if isPadding(record) {
			break
		}

		tag, payload, n, err := DecodeField(record, FrozenField)
		if err != nil {
			return file, &common.BuildError{Op: "decode", Field: common.TagDirEntry, Err: err}
		}
		record = record[n:]

		if tag == common.TagFileName {
			if i := bytes.IndexByte(payload, 0); i >= 0 {
				payload = payload[:i]
			}
			file.FileName = string(payload)
			continue
		}

		if len(payload) < 4 {
			return file, &common.BuildError{Op: "decode", Field: tag, Err: fmt.Errorf("%w: %d byte payload", common.ErrCorruptField, len(payload))}
		}

		switch tag {
		case common.TagFileType:
			file.FileType = string(payload[:4])
		case common.TagFileSize:
			file.DataSize = binary.BigEndian.Uint32(payload)
		case common.TagFileOffset:
			file.DataOffset = binary.BigEndian.Uint32(payload)
		case common.TagFileFlag:
			file.Flag = common.FileFlag(binary.BigEndian.Uint32(payload))
		case common.TagFileModified:
			file.ModifiedTime = common.FromLegacyTimestamp(binary.BigEndian.Uint32(payload))
		case common.TagFileVersion:
		default:
			return file, &common.BuildError{Op: "decode", Field: tag, Err: fmt.Errorf("%w: unknown directory field", common.ErrCorruptField)}
		}
	}

	if file.FileName == "" {
		return file, &common.BuildError{Op: "decode", Field: common.TagFileName, Err: common.ErrMissingFileName}
	}
	return file, nil
}

// isPadding reports whether buf is a short run of alignment zeros.
func isPadding(buf []byte) bool {
	if len(buf) >= common.FieldHeaderLength {
		return false
	}
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
