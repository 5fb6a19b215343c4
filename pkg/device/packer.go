package device

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beam-cloud/maxbuild/pkg/common"
	log "github.com/rs/zerolog/log"
)

// Clock returns the modification time recorded for packed files.
type Clock func() time.Time

const jsExtension = "js"

type Packer struct {
	Classify common.Classifier
	Now      Clock
}

func NewPacker() *Packer {
	return &Packer{
		Classify: common.ClassifyExtension,
		Now:      time.Now,
	}
}

// Pack concatenates the main file and the other files, in that order, into one
// blob. Offsets are biased by the frozen header that precedes the blob in the
// patch body.
func (p *Packer) Pack(mainFile string, otherFiles []string) (*common.DeviceData, error) {
	data := &common.DeviceData{
		Files: make([]common.DeviceFile, 0, len(otherFiles)+1),
	}

	// Every file in one build shares the same timestamp.
	now := p.now()
	seen := make(map[string]string, len(otherFiles)+1)

	if err := p.addFile(data, mainFile, common.FlagMainFile, now, seen); err != nil {
		return nil, err
	}

	for _, path := range otherFiles {
		flag := common.FlagNone
		if strings.EqualFold(common.FileExtension(path), jsExtension) {
			flag = common.FlagJSFile
		}

		if err := p.addFile(data, path, flag, now, seen); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func (p *Packer) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Packer) classify(extension string) common.FileType {
	if p.Classify == nil {
		return common.ClassifyExtension(extension)
	}
	return p.Classify(extension)
}

func (p *Packer) addFile(data *common.DeviceData, path string, flag common.FileFlag, now time.Time, seen map[string]string) error {
	name := filepath.Base(path)
	if path == "" || name == "." || name == string(filepath.Separator) {
		return &common.BuildError{Op: "pack", Path: path, Err: common.ErrMissingFileName}
	}

	extension := common.FileExtension(path)
	if extension == "" {
		return &common.BuildError{Op: "pack", Path: path, Err: common.ErrMissingExtension}
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return &common.BuildError{Op: "read", Path: path, Err: err}
	}

	offset := uint64(len(data.Data)) + common.FrozenHeaderLength
	if uint64(len(contents)) > math.MaxUint32 || offset > math.MaxUint32 {
		return &common.BuildError{
			Op:   "pack",
			Path: path,
			Err:  fmt.Errorf("%w: %d bytes at offset %d", common.ErrFieldTooLarge, len(contents), offset),
		}
	}

	if previous, ok := seen[name]; ok {
		log.Warn().Msgf("duplicate file name %s: %s shadows %s", name, path, previous)
	}
	seen[name] = path

	log.Info().
		Str("path", path).
		Int("size", len(contents)).
		Uint64("offset", offset).
		Msg("packing file")

	data.Data = append(data.Data, contents...)

	fileType := p.classify(extension)
	data.Files = append(data.Files, common.DeviceFile{
		FileType:     common.PadTypeCode(fileType.Code),
		FileName:     name,
		DataSize:     uint32(len(contents)),
		DataOffset:   uint32(offset),
		Flag:         flag,
		ModifiedTime: now,
	})

	return nil
}
