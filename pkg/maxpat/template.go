package maxpat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	log "github.com/rs/zerolog/log"
)

const stagingDirName = "maxbuild"

type PreprocessOptions struct {
	// TempDir overrides os.TempDir() as the staging root.
	TempDir  string
	Classify common.Classifier
}

// Template is a preprocessed patcher staged on disk, ready to be packed as
// the device's main file.
type Template struct {
	Path string
	Meta uint32
	Dir  string
}

// Cleanup removes the staging directory.
func (t *Template) Cleanup() error {
	if t == nil || t.Dir == "" {
		return nil
	}
	return os.RemoveAll(t.Dir)
}

// ReadMeta returns the little-endian metadata value stored in the template header.
func ReadMeta(data []byte) (uint32, error) {
	if len(data) < common.TemplateMetaOffset+4 {
		return 0, fmt.Errorf("%w: %d bytes", common.ErrTemplateTooShort, len(data))
	}
	return binary.LittleEndian.Uint32(data[common.TemplateMetaOffset : common.TemplateMetaOffset+4]), nil
}

// Preprocess reads the template at templatePath, lists includes in its project
// contents and writes the result to a fresh staging directory.
func Preprocess(templatePath string, includes []string, opts PreprocessOptions) (*Template, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, &common.BuildError{Op: "read template", Path: templatePath, Err: err}
	}

	meta, err := ReadMeta(data)
	if err != nil {
		return nil, &common.BuildError{Op: "read template", Path: templatePath, Field: common.TagMeta, Err: err}
	}
	if !bytes.Equal(data[:common.TagLength], []byte(common.TagDeviceType)) {
		log.Warn().Msgf("template %s does not start with an %s field", templatePath, common.TagDeviceType)
	}

	patcher, err := parsePatcher(data)
	if err != nil {
		return nil, &common.BuildError{Op: "parse template", Path: templatePath, Err: err}
	}

	classify := opts.Classify
	if classify == nil {
		classify = common.ClassifyExtension
	}
	if err := setProjectContents(patcher, BuildProjectContents(includes, classify)); err != nil {
		return nil, &common.BuildError{Op: "parse template", Path: templatePath, Err: err}
	}

	encoded, err := encodePatcher(patcher)
	if err != nil {
		return nil, &common.BuildError{Op: "encode template", Path: templatePath, Err: err}
	}

	root := opts.TempDir
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, stagingDirName, uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &common.BuildError{Op: "stage template", Path: dir, Err: err}
	}

	t := &Template{
		Path: filepath.Join(dir, filepath.Base(templatePath)),
		Meta: meta,
		Dir:  dir,
	}
	if err := os.WriteFile(t.Path, encoded, 0644); err != nil {
		_ = t.Cleanup()
		return nil, &common.BuildError{Op: "stage template", Path: t.Path, Err: err}
	}

	log.Debug().Str("path", t.Path).Uint32("meta", meta).Msg("template staged")
	return t, nil
}

// parsePatcher decodes the JSON body that sits between the template header
// and its trailing NUL byte.
func parsePatcher(data []byte) (map[string]interface{}, error) {
	if len(data) <= common.TemplateBodyOffset {
		return nil, fmt.Errorf("%w: %d bytes", common.ErrTemplateTooShort, len(data))
	}

	body := data[common.TemplateBodyOffset : len(data)-1]
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not a single JSON value", common.ErrInvalidTemplate)
	}

	r := bytes.NewReader(body)
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var patcher map[string]interface{}
	if err := dec.Decode(&patcher); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTemplate, err)
	}

	rest, err := io.ReadAll(io.MultiReader(dec.Buffered(), r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidTemplate, err)
	}
	if len(bytes.Trim(rest, " \t\r\n\x00")) > 0 {
		return nil, fmt.Errorf("%w: %d bytes after the patcher object", common.ErrInvalidTemplate, len(rest))
	}
	return patcher, nil
}

func setProjectContents(patcher map[string]interface{}, contents *ProjectContents) error {
	inner, ok := patcher["patcher"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: missing patcher object", common.ErrInvalidTemplate)
	}
	project, ok := inner["project"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: missing patcher.project object", common.ErrInvalidTemplate)
	}
	project["contents"] = contents
	return nil
}

func encodePatcher(patcher map[string]interface{}) ([]byte, error) {
	encoded, err := json.MarshalIndentWithOption(patcher, "", "  ", json.DisableHTMLEscape())
	if err != nil {
		return nil, err
	}
	return append(encoded, 0), nil
}
