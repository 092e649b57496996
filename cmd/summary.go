package cmd

import (
	"fmt"
	"io"

	"github.com/TFMV/lazywalk/internal/pathfilter"
	lazywalk "github.com/TFMV/lazywalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [path]",
	Short: "Summarize storage usage below a directory",
	Long: `Summarize storage usage: file and directory counts, total size,
size per extension and the largest files.

Examples:
  lazywalk summary /path/to/directory
  lazywalk summary --top=20 --exclude-name=.git /path/to/directory
  lazywalk summary --ext=go,md --output-file=report.json /path/to/repo`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSummaryConfig()
		if err != nil {
			return err
		}
		return runSummary(cmd.OutOrStdout(), rootPath(args), cfg)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().Int("top", 10, "Number of largest files to list")
	summaryCmd.Flags().String("output-file", "", "Write the report as JSON to this file")
	summaryCmd.Flags().StringSlice("ext", nil, "Only count files with these extensions")
	summaryCmd.Flags().Bool("skip-hidden", false, "Skip dot-prefixed entries and their contents")
	addTraversalFlags(summaryCmd, "summary")

	for _, name := range []string{"top", "output-file", "ext", "skip-hidden"} {
		viper.BindPFlag("summary."+name, summaryCmd.Flags().Lookup(name))
	}
}

type summaryConfig struct {
	walkConfig
	Top        int
	OutputFile string
	Extensions []string
	SkipHidden bool
}

func loadSummaryConfig() (summaryConfig, error) {
	wc, err := loadWalkConfig("summary")
	if err != nil {
		return summaryConfig{}, err
	}
	return summaryConfig{
		walkConfig: wc,
		Top:        viper.GetInt("summary.top"),
		OutputFile: viper.GetString("summary.output-file"),
		Extensions: viper.GetStringSlice("summary.ext"),
		SkipHidden: viper.GetBool("summary.skip-hidden"),
	}, nil
}

func (c summaryConfig) options(root string) (lazywalk.Options, error) {
	o, err := c.walkConfig.options(root)
	if err != nil {
		return o, err
	}
	if c.SkipHidden {
		o = o.WithFilter(lazywalk.Hidden{})
	}
	if len(c.Extensions) > 0 {
		o = o.WithEntryFilter(pathfilter.NewExtensions(c.Extensions...))
	}
	return o, nil
}

func runSummary(out io.Writer, root string, cfg summaryConfig) error {
	opts, err := cfg.options(root)
	if err != nil {
		return err
	}
	report := lazywalk.Summarize(opts.Walker(), cfg.Top)

	if cfg.OutputFile != "" {
		if err := report.SaveToFile(cfg.OutputFile); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "Report saved to %s\n", cfg.OutputFile)
		return err
	}
	_, err = fmt.Fprint(out, report.String())
	return err
}
