package commands

import (
	"github.com/beam-cloud/maxbuild/pkg/maxbuild"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type ExtractCmdOptions struct {
	InputFile  string
	OutputPath string
}

var extractOpts = &ExtractCmdOptions{}

var ExtractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract packed files from a frozen device",
	RunE:  runExtract,
}

func init() {
	ExtractCmd.Flags().StringVarP(&extractOpts.InputFile, "input", "i", "", "Frozen device to extract")
	ExtractCmd.Flags().StringVarP(&extractOpts.OutputPath, "output", "o", ".", "Output directory for the extraction")
	ExtractCmd.MarkFlagRequired("input")
}

func runExtract(cmd *cobra.Command, args []string) error {
	written, err := maxbuild.Extract(extractOpts.InputFile, extractOpts.OutputPath, args...)
	if err != nil {
		return err
	}

	log.Info().Msgf("extracted %d files to %s", len(written), extractOpts.OutputPath)
	return nil
}
