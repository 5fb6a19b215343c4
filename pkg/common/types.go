package common

import "time"

// DeviceFile describes one file packed into a frozen device.
type DeviceFile struct {
	FileType     string // 4-character type code
	FileName     string
	DataSize     uint32
	DataOffset   uint32 // relative to the start of the patch body
	Flag         FileFlag
	ModifiedTime time.Time
}

// IsMain returns true if the file is the device's main patcher.
func (f *DeviceFile) IsMain() bool {
	return f.Flag == FlagMainFile
}

// End returns the offset one past the file's last byte.
func (f *DeviceFile) End() uint64 {
	return uint64(f.DataOffset) + uint64(f.DataSize)
}

// DeviceData is the packed blob together with the files indexing into it.
type DeviceData struct {
	Data  []byte
	Files []DeviceFile
}

// TotalSize returns the packed blob length.
func (d *DeviceData) TotalSize() int {
	return len(d.Data)
}
