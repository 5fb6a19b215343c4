package maxbuild

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/beam-cloud/maxbuild/pkg/amxd"
	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/beam-cloud/maxbuild/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

type fixture struct {
	template string
	includes []string
	tempDir  string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	body := `{"patcher": {"fileversion": 1, "project": {"version": 1, "contents": {}}}}`
	var buf []byte
	buf = append(buf, amxd.EncodeHeaderField("ampf", []byte("aaaa"))...)
	buf = append(buf, amxd.EncodeHeaderField("meta", binary.LittleEndian.AppendUint32(nil, 1))...)
	buf = append(buf, amxd.EncodeHeaderField("ptch", append([]byte(body), 0))...)

	template := filepath.Join(dir, "Synth.amxd")
	require.NoError(t, os.WriteFile(template, buf, 0644))

	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "ui"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "helper.js"), []byte("post('hi');"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "ui", "knob.svg"), []byte("<svg/>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".DS_Store"), []byte("junk"), 0644))

	staging := filepath.Join(dir, "staging")
	require.NoError(t, os.MkdirAll(staging, 0755))

	return fixture{template: template, includes: []string{src}, tempDir: staging}
}

func (f fixture) options(output string, dt common.DeviceType) BuildOptions {
	return BuildOptions{
		TemplatePath: f.template,
		OutputPath:   output,
		Includes:     f.includes,
		DeviceType:   dt,
		TempDir:      f.tempDir,
		Now:          fixedClock,
	}
}

func TestSetLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error", "disabled", "off"} {
		assert.NoError(t, SetLogLevel(level), level)
	}
	assert.Error(t, SetLogLevel("loud"))
	require.NoError(t, SetLogLevel("info"))
}

func TestBuildEndToEnd(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(t.TempDir(), "out.amxd")
	m := metrics.NewMetrics()

	opts := f.options(output, common.Instrument)
	opts.Metrics = m

	result, err := Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, output, result.Location)
	assert.Equal(t, uint32(1), result.Meta)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, result.Size, len(data))
	assert.Equal(t, "ampf", string(data[0:4]))
	assert.Equal(t, "iiii", string(data[8:12]))

	d, err := amxd.ParseContainer(data)
	require.NoError(t, err)
	assert.Equal(t, common.Instrument, d.Type)
	assert.Equal(t, uint32(1), d.Meta)
	assert.Equal(t, result.FooterLocation, d.FooterLocation)
	assert.Equal(t, []string{"Synth.amxd", "helper.js", "knob.svg"}, d.Names())

	main := d.MainFile()
	require.NotNil(t, main)
	assert.Equal(t, "Synth.amxd", main.FileName)
	assert.Equal(t, "JSON", main.FileType)
	assert.Equal(t, uint32(common.FrozenHeaderLength), main.DataOffset)
	assert.Equal(t, fixedTime, main.ModifiedTime)

	staged, err := d.FileData("Synth.amxd")
	require.NoError(t, err)
	assert.Contains(t, string(staged), `"helper.js"`)
	assert.Contains(t, string(staged), `"knob.svg"`)
	assert.Equal(t, byte(0), staged[len(staged)-1])

	js := d.Get("helper.js")
	require.NotNil(t, js)
	assert.Equal(t, common.FlagJSFile, js.Flag)
	assert.Equal(t, "TEXT", js.FileType)
	assert.Equal(t, main.End(), uint64(js.DataOffset))

	svg := d.Get("knob.svg")
	require.NotNil(t, svg)
	assert.Equal(t, common.FlagNone, svg.Flag)
	assert.Equal(t, "svg ", svg.FileType)

	assert.Nil(t, d.Get(".DS_Store"))

	entries, err := os.ReadDir(filepath.Join(f.tempDir, "maxbuild"))
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory is removed")

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap["maxbuild_files_packed_total"])
	assert.Equal(t, int64(1), snap["maxbuild_js_files_total"])
	assert.Equal(t, int64(1), snap["maxbuild_builds_total"])
	assert.Equal(t, int64(0), snap["maxbuild_build_failures_total"])
	assert.Equal(t, int64(len(data)), snap["maxbuild_container_bytes_total"])
}

func TestBuildDefaultMetricsCoverEveryStage(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(t.TempDir(), "out.amxd")

	result, err := Build(context.Background(), f.options(output, common.AudioEffect))
	require.NoError(t, err)
	require.NotNil(t, result.Metrics)

	m := result.Metrics
	assert.Equal(t, int64(3), m.FilesPackedTotal)
	assert.Equal(t, int64(1), m.BuildsTotal)
	assert.Equal(t, int64(result.Size), m.ContainerBytesTotal)
	for _, stage := range []string{"collect", "preprocess", "pack", "encode", "write"} {
		assert.Contains(t, m.StageDurationNs, stage)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "first.amxd")
	second := filepath.Join(dir, "second.amxd")

	_, err := Build(context.Background(), f.options(first, common.AudioEffect))
	require.NoError(t, err)
	_, err = Build(context.Background(), f.options(second, common.AudioEffect))
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildDeviceTypes(t *testing.T) {
	f := newFixture(t)

	for _, dt := range common.DeviceTypes {
		out, result, err := BuildDevice(f.options("", dt))
		require.NoError(t, err, dt.String())
		assert.Equal(t, dt.Tag(), string(out[8:12]))
		assert.Equal(t, dt, result.DeviceType)
	}
}

func TestBuildFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	output := filepath.Join(t.TempDir(), "out.amxd")
	m := metrics.NewMetrics()

	opts := f.options(output, common.MidiEffect)
	opts.Includes = append(opts.Includes, filepath.Join(t.TempDir(), "missing"))
	opts.Metrics = m

	_, err := Build(context.Background(), opts)
	assert.ErrorIs(t, err, common.ErrFileNotFound)

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, int64(1), m.BuildFailuresTotal)
}

func TestBuildRejectsExtensionlessInclude(t *testing.T) {
	f := newFixture(t)
	noExt := filepath.Join(t.TempDir(), "README")
	require.NoError(t, os.WriteFile(noExt, []byte("docs"), 0644))

	opts := f.options(filepath.Join(t.TempDir(), "out.amxd"), common.AudioEffect)
	opts.Includes = append(opts.Includes, noExt)

	_, err := Build(context.Background(), opts)
	assert.ErrorIs(t, err, common.ErrMissingExtension)

	entries, err := os.ReadDir(filepath.Join(f.tempDir, "maxbuild"))
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory is removed on failure")
}

func TestBuildOptionErrors(t *testing.T) {
	f := newFixture(t)

	_, err := Build(context.Background(), f.options("", common.AudioEffect))
	assert.Error(t, err)

	opts := f.options(filepath.Join(t.TempDir(), "out.amxd"), common.DeviceType(99))
	_, err = Build(context.Background(), opts)
	assert.ErrorIs(t, err, common.ErrUnknownDeviceType)

	opts = f.options(filepath.Join(t.TempDir(), "out.amxd"), common.AudioEffect)
	opts.TemplatePath = ""
	_, err = Build(context.Background(), opts)
	assert.Error(t, err)
}

func TestEncodeMatchesComponents(t *testing.T) {
	data := &common.DeviceData{
		Data: []byte("hello"),
		Files: []common.DeviceFile{{
			FileType:     "JSON",
			FileName:     "main.amxd",
			DataSize:     5,
			DataOffset:   16,
			Flag:         common.FlagMainFile,
			ModifiedTime: fixedTime,
		}},
	}

	out, footerSize, err := Encode(common.MidiToolGenerator, 3, data)
	require.NoError(t, err)

	footer, err := amxd.BuildFooter(data.Files)
	require.NoError(t, err)
	assert.Equal(t, len(footer), footerSize)

	expected, err := amxd.BuildContainer(common.MidiToolGenerator, 3, data.Data, footer)
	require.NoError(t, err)
	assert.Equal(t, expected, out)
}
