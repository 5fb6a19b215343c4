package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/beam-cloud/maxbuild/pkg/maxbuild"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type InspectCmdOptions struct {
	Format string
}

var inspectOpts = &InspectCmdOptions{}

var InspectCmd = &cobra.Command{
	Use:   "inspect <device.amxd>",
	Short: "List the files packed into a frozen device",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	InspectCmd.Flags().StringVarP(&inspectOpts.Format, "format", "f", "text", "Output format: text, yaml or json")
}

func runInspect(cmd *cobra.Command, args []string) error {
	summary, err := maxbuild.Inspect(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch inspectOpts.Format {
	case "text":
		return writeSummaryText(out, summary)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q: must be one of: text, yaml, json", inspectOpts.Format)
	}
}

func writeSummaryText(out io.Writer, summary *maxbuild.Summary) error {
	fmt.Fprintf(out, "type: %s\nmeta: %d\nfooter: %d\n\n", summary.DeviceType, summary.Meta, summary.FooterLocation)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tOFFSET\tFLAG\tMODIFIED")
	for _, f := range summary.Files {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", f.Name, f.Type, f.Size, f.Offset, f.Flag, f.Modified.Format(time.RFC3339))
	}
	return w.Flush()
}
