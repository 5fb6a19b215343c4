package commands

import (
	"github.com/beam-cloud/maxbuild/pkg/common"
	"github.com/beam-cloud/maxbuild/pkg/maxbuild"
	"github.com/beam-cloud/maxbuild/pkg/metrics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type BuildCmdOptions struct {
	TemplatePath string
	OutputPath   string
	Includes     []string
	DeviceType   string
}

var buildOpts = &BuildCmdOptions{}

var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a frozen device from a template and its dependencies",
	RunE:  runBuild,
}

func init() {
	BuildCmd.Flags().StringVarP(&buildOpts.TemplatePath, "template", "t", "", "Template device (.amxd)")
	BuildCmd.Flags().StringVarP(&buildOpts.OutputPath, "output", "o", "", "Output path or s3://bucket/key")
	BuildCmd.Flags().StringArrayVarP(&buildOpts.Includes, "include", "i", nil, "File or directory to pack (repeatable)")
	BuildCmd.Flags().StringVarP(&buildOpts.DeviceType, "device-type", "d", common.AudioEffect.String(), "audio-fx, midi-fx, instrument, note-generator or note-transformer")
	BuildCmd.MarkFlagRequired("template")
	BuildCmd.MarkFlagRequired("output")
}

func runBuild(cmd *cobra.Command, args []string) error {
	deviceType, err := common.ParseDeviceType(buildOpts.DeviceType)
	if err != nil {
		return err
	}

	m := metrics.NewMetrics()
	result, err := maxbuild.Build(cmd.Context(), maxbuild.BuildOptions{
		TemplatePath: buildOpts.TemplatePath,
		OutputPath:   buildOpts.OutputPath,
		Includes:     buildOpts.Includes,
		DeviceType:   deviceType,
		TempDir:      config.GetString(keyTempDir),
		S3:           s3Options(),
		Metrics:      m,
	})
	if err != nil {
		return err
	}

	m.LogSummary()
	log.Info().Msgf("built %s device %s", result.DeviceType, result.Location)
	return nil
}
