package maxbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beam-cloud/maxbuild/pkg/amxd"
	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/rs/zerolog/log"
)

// Entry is the printable form of one directory record.
type Entry struct {
	Name     string    `json:"name" yaml:"name"`
	Type     string    `json:"type" yaml:"type"`
	Size     uint32    `json:"size" yaml:"size"`
	Offset   uint32    `json:"offset" yaml:"offset"`
	Flag     string    `json:"flag" yaml:"flag"`
	Modified time.Time `json:"modified" yaml:"modified"`
}

// Summary describes a frozen device without its packed contents.
type Summary struct {
	DeviceType     string  `json:"device_type" yaml:"device_type"`
	Meta           uint32  `json:"meta" yaml:"meta"`
	FooterLocation uint64  `json:"footer_location" yaml:"footer_location"`
	Files          []Entry `json:"files" yaml:"files"`
}

// Open reads and decodes a frozen device from disk.
func Open(path string) (*amxd.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &common.BuildError{Op: "read", Path: path, Err: err}
	}

	d, err := amxd.ParseContainer(data)
	if err != nil {
		return nil, &common.BuildError{Op: "inspect", Path: path, Err: err}
	}
	return d, nil
}

// Inspect summarizes the device at path in directory order.
func Inspect(path string) (*Summary, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		DeviceType:     d.Type.String(),
		Meta:           d.Meta,
		FooterLocation: d.FooterLocation,
		Files:          make([]Entry, 0, len(d.Files)),
	}
	for _, f := range d.Files {
		summary.Files = append(summary.Files, Entry{
			Name:     f.FileName,
			Type:     f.FileType,
			Size:     f.DataSize,
			Offset:   f.DataOffset,
			Flag:     f.Flag.String(),
			Modified: f.ModifiedTime,
		})
	}
	return summary, nil
}

// Extract writes every packed file of the device at path into outputDir.
// With names given, only those files are extracted.
func Extract(path string, outputDir string, names ...string) ([]string, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		for _, f := range d.Files {
			names = append(names, f.FileName)
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &common.BuildError{Op: "extract", Path: outputDir, Err: err}
	}

	written := make([]string, 0, len(names))
	for _, name := range names {
		if name != filepath.Base(name) || name == "." || name == ".." {
			return written, &common.BuildError{Op: "extract", Path: name, Err: fmt.Errorf("%w: unsafe file name", common.ErrCorruptField)}
		}

		contents, err := d.FileData(name)
		if err != nil {
			return written, err
		}

		target := filepath.Join(outputDir, name)
		if err := os.WriteFile(target, contents, 0644); err != nil {
			return written, &common.BuildError{Op: "extract", Path: target, Err: err}
		}

		log.Info().Msgf("extracted %s (%d bytes)", target, len(contents))
		written = append(written, target)
	}

	return written, nil
}
