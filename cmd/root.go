package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	lazywalk "github.com/TFMV/lazywalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	version = "0.1.0"

	// logger is replaced in PersistentPreRunE once flags are parsed.
	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lazywalk [options] [path]",
	Short: "Lazily walk a directory tree",
	Long: `lazywalk lists the contents of a directory tree one entry at a time.
Directories are only read when an entry from them is needed, so piping
into head or stopping early does no more I/O than necessary.

Examples:
  lazywalk /src --files-only --exclude-name=.git --exclude-name=node_modules
  lazywalk /src --max-depth=2 --format=json
  lazywalk /src --follow-symlinks --detect-cycles --stats`,
	Version:      version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadListConfig()
		if err != nil {
			return err
		}
		return runList(cmd.OutOrStdout(), cmd.ErrOrStderr(), rootPath(args), cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.lazywalk.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging of skipped paths")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	addTraversalFlags(rootCmd, "walk")
	rootCmd.Flags().Bool("files-only", false, "Only print non-directories")
	rootCmd.Flags().Bool("dirs-only", false, "Only print directories")
	rootCmd.Flags().Bool("skip-hidden", false, "Skip dot-prefixed entries and their contents")
	rootCmd.Flags().String("format", "text", "Output format (text|json)")
	rootCmd.Flags().Bool("stats", false, "Print traversal statistics to stderr when done")
	rootCmd.MarkFlagsMutuallyExclusive("files-only", "dirs-only")

	viper.BindPFlag("walk.files-only", rootCmd.Flags().Lookup("files-only"))
	viper.BindPFlag("walk.dirs-only", rootCmd.Flags().Lookup("dirs-only"))
	viper.BindPFlag("walk.skip-hidden", rootCmd.Flags().Lookup("skip-hidden"))
	viper.BindPFlag("walk.format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("walk.stats", rootCmd.Flags().Lookup("stats"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".lazywalk" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".lazywalk")
	}

	// LAZYWALK_WALK_MAX_DEPTH overrides walk.max-depth, and so on.
	viper.SetEnvPrefix("lazywalk")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogger builds the process logger. Skipped paths are only reported
// at debug level, which --verbose turns on.
func setupLogger() error {
	level := lazywalk.LogLevelWarn
	if viper.GetBool("verbose") {
		level = lazywalk.LogLevelDebug
	}
	l, err := lazywalk.NewLogger(level)
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	logger = l
	return nil
}

func rootPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// listConfig is the resolved configuration of the list command.
type listConfig struct {
	walkConfig
	FilesOnly  bool
	DirsOnly   bool
	SkipHidden bool
	Format     string
	Stats      bool
}

func loadListConfig() (listConfig, error) {
	wc, err := loadWalkConfig("walk")
	if err != nil {
		return listConfig{}, err
	}
	cfg := listConfig{
		walkConfig: wc,
		FilesOnly:  viper.GetBool("walk.files-only"),
		DirsOnly:   viper.GetBool("walk.dirs-only"),
		SkipHidden: viper.GetBool("walk.skip-hidden"),
		Format:     viper.GetString("walk.format"),
		Stats:      viper.GetBool("walk.stats"),
	}
	return cfg, cfg.validate()
}

func (c listConfig) validate() error {
	var errs []error
	if c.FilesOnly && c.DirsOnly {
		errs = append(errs, errors.New("files-only and dirs-only are mutually exclusive"))
	}
	if c.Format != "text" && c.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid format: %s", c.Format))
	}
	return errors.Join(errs...)
}

func (c listConfig) options(root string) (lazywalk.Options, error) {
	o, err := c.walkConfig.options(root)
	if err != nil {
		return o, err
	}
	if c.SkipHidden {
		o = o.WithFilter(lazywalk.Hidden{})
	}
	if c.FilesOnly {
		o = o.FilesOnly()
	}
	if c.DirsOnly {
		o = o.DirectoriesOnly()
	}
	return o, nil
}

// listedEntry is the JSON form of one entry.
type listedEntry struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Symlink bool   `json:"symlink,omitempty"`
}

func runList(out, errOut io.Writer, root string, cfg listConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	opts, err := cfg.options(root)
	if err != nil {
		return err
	}

	w := opts.Walker()
	enc := json.NewEncoder(out)
	for e := range w.All() {
		if cfg.Format == "json" {
			if err := enc.Encode(listedEntry{Path: e.Path(), Kind: e.Kind().String(), Symlink: e.IsSymlink()}); err != nil {
				return fmt.Errorf("error writing entry: %w", err)
			}
			continue
		}
		if _, err := fmt.Fprintln(out, e.Path()); err != nil {
			return fmt.Errorf("error writing entry: %w", err)
		}
	}

	if cfg.Stats {
		return writeStats(errOut, cfg.Format, w.Stats())
	}
	return nil
}

func writeStats(w io.Writer, format string, s lazywalk.Stats) error {
	if format == "json" {
		return json.NewEncoder(w).Encode(struct {
			Stats lazywalk.Stats `json:"stats"`
		}{s})
	}
	_, err := fmt.Fprintf(w, "Listed: %d dirs (%d unreadable), Yielded: %d, Pruned: %d, Hidden: %d, Symlinks skipped: %d, Unresolved: %d\n",
		s.DirsListed, s.ListErrors, s.Yielded, s.Pruned, s.Hidden, s.SymlinksDenied, s.ResolveErrors)
	return err
}
