package amxd

import (
	"fmt"
	"math"

	"github.com/beam-cloud/maxbuild/pkg/common"
)

// BuildFooter encodes the directory: one dire record per file, in packing
// order, wrapped in a single dlst field.
func BuildFooter(files []common.DeviceFile) ([]byte, error) {
	var buf []byte
	for i := range files {
		entry, err := encodeDirEntry(&files[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, entry...)
	}

	if uint64(FrozenField.EncodedLength(len(buf))) > math.MaxUint32 {
		return nil, &common.BuildError{Op: "build footer", Field: common.TagDirectory, Err: common.ErrFieldTooLarge}
	}
	return EncodeFrozenField(common.TagDirectory, buf), nil
}

func encodeDirEntry(file *common.DeviceFile) ([]byte, error) {
	if file.FileName == "" {
		return nil, &common.BuildError{Op: "build footer", Field: common.TagFileName, Err: common.ErrMissingFileName}
	}
	if len(file.FileType) != common.TagLength {
		return nil, &common.BuildError{
			Op:    "build footer",
			Path:  file.FileName,
			Field: common.TagFileType,
			Err:   fmt.Errorf("%w: type code %q is not %d bytes", common.ErrCorruptField, file.FileType, common.TagLength),
		}
	}

	name := make([]byte, 0, len(file.FileName)+1)
	name = append(name, file.FileName...)
	name = append(name, 0)

	var buf []byte
	buf = append(buf, EncodeFrozenField(common.TagFileType, []byte(file.FileType))...)
	buf = append(buf, EncodeFrozenField(common.TagFileName, name)...)
	buf = append(buf, EncodeFrozenField(common.TagFileSize, encodeUint32(file.DataSize))...)
	buf = append(buf, EncodeFrozenField(common.TagFileOffset, encodeUint32(file.DataOffset))...)
	buf = append(buf, EncodeFrozenField(common.TagFileFlag, encodeUint32(uint32(file.Flag)))...)
	buf = append(buf, EncodeFrozenField(common.TagFileModified, encodeUint32(common.LegacyTimestamp(file.ModifiedTime)))...)
	buf = append(buf, EncodeFrozenField(common.TagFileVersion, encodeUint32(common.FileVersion))...)

	return EncodeFrozenField(common.TagDirEntry, buf), nil
}
