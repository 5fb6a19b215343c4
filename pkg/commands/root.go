package commands

import (
	"fmt"
	"strings"

	"github.com/beam-cloud/maxbuild/pkg/maxbuild"
	"github.com/beam-cloud/maxbuild/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "MAXBUILD"

const (
	keyLogLevel         = "log-level"
	keyTempDir          = "temp-dir"
	keyS3Region         = "s3-region"
	keyS3Endpoint       = "s3-endpoint"
	keyS3ForcePathStyle = "s3-force-path-style"
)

type RootOptions struct {
	ConfigFile string
}

var rootOpts = &RootOptions{}

// config layers MAXBUILD_* environment variables and the --config file over flag defaults.
var config = viper.New()

var RootCmd = &cobra.Command{
	Use:               "maxbuild",
	Short:             "Build and inspect frozen Max for Live devices",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVarP(&rootOpts.ConfigFile, "config", "c", "", "YAML config file")
	flags.String(keyLogLevel, "info", "Log level (debug, info, warn, error, disabled)")
	flags.String(keyTempDir, "", "Staging directory for preprocessed templates")
	flags.String(keyS3Region, "", "Region for s3:// outputs")
	flags.String(keyS3Endpoint, "", "Custom endpoint for s3:// outputs")
	flags.Bool(keyS3ForcePathStyle, false, "Use path-style addressing for s3:// outputs")

	for _, key := range []string{keyLogLevel, keyTempDir, keyS3Region, keyS3Endpoint, keyS3ForcePathStyle} {
		config.BindPFlag(key, flags.Lookup(key))
	}

	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()

	RootCmd.AddCommand(BuildCmd, InspectCmd, ExtractCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if rootOpts.ConfigFile != "" {
		config.SetConfigFile(rootOpts.ConfigFile)
		config.SetConfigType("yaml")
		if err := config.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file %s: %w", rootOpts.ConfigFile, err)
		}
	}

	return maxbuild.SetLogLevel(config.GetString(keyLogLevel))
}

func s3Options() storage.S3StorageOpts {
	return storage.S3StorageOpts{
		Region:         config.GetString(keyS3Region),
		Endpoint:       config.GetString(keyS3Endpoint),
		ForcePathStyle: config.GetBool(keyS3ForcePathStyle),
	}
}

// Execute runs the root command with os.Args.
func Execute() error {
	return RootCmd.Execute()
}
