package maxbuild

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beam-cloud/maxbuild/pkg/amxd"
	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/beam-cloud/maxbuild/pkg/device"
	"github.com/beam-cloud/maxbuild/pkg/maxpat"
	"github.com/beam-cloud/maxbuild/pkg/metrics"
	"github.com/beam-cloud/maxbuild/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel configures the logging verbosity for the maxbuild library.
// Valid levels: "debug", "info", "warn", "error", "disabled"
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

type BuildOptions struct {
	TemplatePath string
	OutputPath   string
	Includes     []string
	DeviceType   common.DeviceType

	// TempDir is the staging root for the preprocessed template.
	TempDir  string
	Now      device.Clock
	Classify common.Classifier
	S3       storage.S3StorageOpts
	Metrics  *metrics.Metrics
}

type BuildResult struct {
	Location       string
	DeviceType     common.DeviceType
	Meta           uint32
	Files          []common.DeviceFile
	BlobSize       int
	FooterLocation uint64
	Size           int

	// Metrics is the collector the build recorded into.
	Metrics *metrics.Metrics
}

// Build produces a frozen device from a template and its includes and writes
// it to opts.OutputPath. Nothing is written unless every stage succeeds.
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if opts.OutputPath == "" {
		return nil, errors.New("output path not provided")
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.NewMetrics()
	}
	opts.Metrics = m

	out, result, err := BuildDevice(opts)
	if err != nil {
		m.RecordBuild(err)
		return nil, err
	}

	start := time.Now()
	output, err := storage.NewOutputStorage(ctx, storage.OutputStorageOpts{Path: opts.OutputPath, S3: opts.S3})
	if err == nil {
		err = output.Write(ctx, out)
	}
	m.RecordStage("write", time.Since(start))
	m.RecordBuild(err)
	if err != nil {
		return nil, &common.BuildError{Op: "write", Path: opts.OutputPath, Err: err}
	}

	result.Location = output.Location()
	log.Info().Msgf("device written to %s (%d bytes, %d files)", result.Location, result.Size, len(result.Files))
	return result, nil
}

// BuildDevice runs every stage except the final write and returns the encoded device.
func BuildDevice(opts BuildOptions) ([]byte, *BuildResult, error) {
	if opts.TemplatePath == "" {
		return nil, nil, errors.New("template path not provided")
	}
	if !opts.DeviceType.Valid() {
		return nil, nil, fmt.Errorf("%w: %d", common.ErrUnknownDeviceType, int(opts.DeviceType))
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.NewMetrics()
	}
	classify := opts.Classify
	if classify == nil {
		classify = common.ClassifyExtension
	}

	log.Info().Msgf("building %s device from %s", opts.DeviceType, opts.TemplatePath)

	start := time.Now()
	includes, err := device.CollectIncludes(opts.Includes)
	if err != nil {
		return nil, nil, err
	}
	m.RecordStage("collect", time.Since(start))

	start = time.Now()
	tmpl, err := maxpat.Preprocess(opts.TemplatePath, includes, maxpat.PreprocessOptions{
		TempDir:  opts.TempDir,
		Classify: classify,
	})
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := tmpl.Cleanup(); err != nil {
			log.Warn().Err(err).Msgf("unable to remove staging directory %s", tmpl.Dir)
		}
	}()
	m.RecordStage("preprocess", time.Since(start))

	start = time.Now()
	packer := &device.Packer{Classify: classify, Now: opts.Now}
	data, err := packer.Pack(tmpl.Path, includes)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range data.Files {
		m.RecordPackedFile(f.FileName, int64(f.DataSize), f.Flag == common.FlagJSFile)
	}
	m.RecordStage("pack", time.Since(start))

	start = time.Now()
	out, footerSize, err := Encode(opts.DeviceType, tmpl.Meta, data)
	if err != nil {
		return nil, nil, err
	}
	m.RecordContainer(int64(footerSize), int64(len(out)))
	m.RecordStage("encode", time.Since(start))

	return out, &BuildResult{
		DeviceType:     opts.DeviceType,
		Meta:           tmpl.Meta,
		Files:          data.Files,
		BlobSize:       data.TotalSize(),
		FooterLocation: amxd.FooterLocation(data.Data),
		Size:           len(out),
		Metrics:        m,
	}, nil
}

// Encode builds the footer for data and assembles the container around it.
// It also returns the footer size.
func Encode(deviceType common.DeviceType, meta uint32, data *common.DeviceData) ([]byte, int, error) {
	footer, err := amxd.BuildFooter(data.Files)
	if err != nil {
		return nil, 0, err
	}

	out, err := amxd.BuildContainer(deviceType, meta, data.Data, footer)
	if err != nil {
		return nil, 0, err
	}
	return out, len(footer), nil
}
