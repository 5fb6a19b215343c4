package common

import (
	"fmt"
	"strings"
	"time"
)

// Outer (header) field tags.
const (
	TagDeviceType = "ampf"
	TagMeta       = "meta"
	TagPatch      = "ptch"
)

// Frozen field tags nested inside the patch body.
const (
	TagFrozenHeader = "mx@c"
	TagDirectory    = "dlst"
	TagDirEntry     = "dire"
	TagFileType     = "type"
	TagFileName     = "fnam"
	TagFileSize     = "sz32"
	TagFileOffset   = "of32"
	TagFileFlag     = "flag"
	TagFileModified = "mdat"
	TagFileVersion  = "vers"
)

const (
	// TagLength is the size of every field tag.
	TagLength = 4

	// FieldHeaderLength is tag plus the 4-byte length integer.
	FieldHeaderLength = 8

	// FrozenHeaderLength is the size of the mx@c field that opens the patch body.
	// Every data offset recorded in the directory is biased by it.
	FrozenHeaderLength = 16

	// FieldAlignment is the boundary padded frozen fields are rounded up to.
	FieldAlignment = 4

	// FileVersion is written to every vers field.
	FileVersion uint32 = 0

	// LegacyEpochOffset is the number of seconds between 1904-01-01 and 1970-01-01.
	LegacyEpochOffset int64 = 2082844800
)

// Template layout: ampf(12) + meta(12) + ptch tag/length(8) precede the patcher JSON.
const (
	TemplateMetaOffset = 20
	TemplateBodyOffset = 32
)

type DeviceType int

const (
	AudioEffect DeviceType = iota
	MidiEffect
	Instrument
	MidiToolGenerator
	MidiToolTransformer
)

var deviceTypeTags = map[DeviceType]string{
	AudioEffect:         "aaaa",
	MidiEffect:          "mmmm",
	Instrument:          "iiii",
	MidiToolGenerator:   "nagg",
	MidiToolTransformer: "natt",
}

var deviceTypeNames = map[DeviceType]string{
	AudioEffect:         "audio-fx",
	MidiEffect:          "midi-fx",
	Instrument:          "instrument",
	MidiToolGenerator:   "note-generator",
	MidiToolTransformer: "note-transformer",
}

// DeviceTypes lists every device type in declaration order.
var DeviceTypes = []DeviceType{AudioEffect, MidiEffect, Instrument, MidiToolGenerator, MidiToolTransformer}

// Tag returns the 4-character ampf payload for the device type.
func (d DeviceType) Tag() string {
	return deviceTypeTags[d]
}

func (d DeviceType) String() string {
	if name, ok := deviceTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DeviceType(%d)", int(d))
}

func (d DeviceType) Valid() bool {
	_, ok := deviceTypeTags[d]
	return ok
}

// ParseDeviceType accepts the command line name of a device type (e.g. "audio-fx").
func ParseDeviceType(name string) (DeviceType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range DeviceTypes {
		if deviceTypeNames[d] == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDeviceType, name)
}

// DeviceTypeFromTag maps an ampf payload back to its device type.
func DeviceTypeFromTag(tag string) (DeviceType, error) {
	for _, d := range DeviceTypes {
		if deviceTypeTags[d] == tag {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: tag %q", ErrUnknownDeviceType, tag)
}

type FileFlag uint32

const (
	FlagNone     FileFlag = 0
	FlagJSFile   FileFlag = 8
	FlagMainFile FileFlag = 17
)

func (f FileFlag) String() string {
	switch f {
	case FlagNone:
		return "none"
	case FlagJSFile:
		return "js"
	case FlagMainFile:
		return "main"
	default:
		return fmt.Sprintf("FileFlag(%d)", uint32(f))
	}
}

// LegacyTimestamp converts t to seconds since 1904-01-01, truncated to 32 bits.
func LegacyTimestamp(t time.Time) uint32 {
	return uint32(t.Unix() + LegacyEpochOffset)
}

// FromLegacyTimestamp is the inverse of LegacyTimestamp for dates between 1970 and 2040.
func FromLegacyTimestamp(ts uint32) time.Time {
	return time.Unix(int64(ts)-LegacyEpochOffset, 0).UTC()
}
