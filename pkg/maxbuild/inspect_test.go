package maxbuild

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	f := newFixture(t)
	output := filepath.Join(t.TempDir(), "device.amxd")

	_, err := Build(context.Background(), f.options(output, common.MidiEffect))
	require.NoError(t, err)
	return output
}

func TestInspect(t *testing.T) {
	path := buildFixture(t)

	summary, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "midi-fx", summary.DeviceType)
	assert.Equal(t, uint32(1), summary.Meta)
	require.Len(t, summary.Files, 3)

	assert.Equal(t, "Synth.amxd", summary.Files[0].Name)
	assert.Equal(t, common.FlagMainFile.String(), summary.Files[0].Flag)
	assert.Equal(t, uint32(16), summary.Files[0].Offset)

	assert.Equal(t, "helper.js", summary.Files[1].Name)
	assert.Equal(t, common.FlagJSFile.String(), summary.Files[1].Flag)
	assert.Equal(t, uint32(len("post('hi');")), summary.Files[1].Size)

	assert.Equal(t, "knob.svg", summary.Files[2].Name)
	assert.Equal(t, fixedTime, summary.Files[2].Modified)
}

func TestInspectCorrupt(t *testing.T) {
	path := buildFixture(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	truncated := filepath.Join(t.TempDir(), "truncated.amxd")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-3], 0644))

	_, err = Inspect(truncated)
	assert.ErrorIs(t, err, common.ErrCorruptField)

	_, err = Inspect(filepath.Join(t.TempDir(), "missing.amxd"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract(t *testing.T) {
	path := buildFixture(t)
	outDir := filepath.Join(t.TempDir(), "out")

	written, err := Extract(path, outDir)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	js, err := os.ReadFile(filepath.Join(outDir, "helper.js"))
	require.NoError(t, err)
	assert.Equal(t, "post('hi');", string(js))

	svg, err := os.ReadFile(filepath.Join(outDir, "knob.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(svg))
}

func TestExtractSelected(t *testing.T) {
	path := buildFixture(t)
	outDir := t.TempDir()

	written, err := Extract(path, outDir, "knob.svg")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(outDir, "knob.svg")}, written)

	_, err = os.Stat(filepath.Join(outDir, "helper.js"))
	assert.True(t, os.IsNotExist(err))

	_, err = Extract(path, outDir, "nope.txt")
	assert.ErrorIs(t, err, common.ErrFileNotFound)

	_, err = Extract(path, outDir, "../escape.js")
	assert.Error(t, err)
}
