package maxpat

import (
	"path/filepath"

	"github.com/beam-cloud/maxbuild/pkg/common"
)

// ProjectFile is one entry of a patcher project's contents.
type ProjectFile struct {
	Kind  string `json:"kind"`
	Local uint8  `json:"local"`
}

func NewProjectFile(kind string) ProjectFile {
	return ProjectFile{Kind: kind, Local: 1}
}

// ProjectContents lists the files embedded in a device, keyed by file name.
type ProjectContents struct {
	Patchers  map[string]ProjectFile `json:"patchers"`
	Media     map[string]ProjectFile `json:"media"`
	Code      map[string]ProjectFile `json:"code"`
	Data      map[string]ProjectFile `json:"data"`
	Externals map[string]ProjectFile `json:"externals,omitempty"`
	Other     map[string]ProjectFile `json:"other,omitempty"`
}

func NewProjectContents() *ProjectContents {
	return &ProjectContents{
		Patchers: make(map[string]ProjectFile),
		Media:    make(map[string]ProjectFile),
		Code:     make(map[string]ProjectFile),
		Data:     make(map[string]ProjectFile),
	}
}

// Add files the entry under the section its file type belongs to.
func (c *ProjectContents) Add(name string, ft common.FileType) {
	section := c.section(ft.Section)
	if *section == nil {
		*section = make(map[string]ProjectFile)
	}
	(*section)[name] = NewProjectFile(ft.Kind)
}

func (c *ProjectContents) section(s common.ProjectSection) *map[string]ProjectFile {
	switch s {
	case common.SectionPatchers:
		return &c.Patchers
	case common.SectionMedia:
		return &c.Media
	case common.SectionCode:
		return &c.Code
	case common.SectionExternals:
		return &c.Externals
	case common.SectionOther:
		return &c.Other
	default:
		return &c.Data
	}
}

// Len returns the number of listed files.
func (c *ProjectContents) Len() int {
	return len(c.Patchers) + len(c.Media) + len(c.Code) + len(c.Data) + len(c.Externals) + len(c.Other)
}

// BuildProjectContents classifies every include by extension.
func BuildProjectContents(includes []string, classify common.Classifier) *ProjectContents {
	contents := NewProjectContents()
	for _, path := range includes {
		contents.Add(filepath.Base(path), classify(common.FileExtension(path)))
	}
	return contents
}
