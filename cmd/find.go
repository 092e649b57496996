package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"time"

	lazywalk "github.com/TFMV/lazywalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var findCmd = &cobra.Command{
	Use:   "find [options] [path]",
	Short: "Find files with advanced filtering",
	Long: `Find files with advanced filtering capabilities.
Supports pattern matching, time-based filtering and size constraints.
Can execute commands for each matched file or format output using templates.

Template placeholders: {} {base} {dir} {size} {time} {kind}, and quoted
forms {""} {"base"} {"dir"} {"size"} {"time"}.

Examples:
  lazywalk find /path/to/search --name="*.go"
  lazywalk find /path/to/search --regex=".*\\.txt$" --larger-than=1MB
  lazywalk find /path/to/search --exec="echo Processing: {}"
  lazywalk find /path/to/search --format="{base} ({size} bytes)"
  lazywalk find /path/to/search --older-than=7d --exclude-name=vendor`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootPath(args)
		opts, err := loadFindOptions(root)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runFind(ctx, cmd.OutOrStdout(), root, opts)
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	// Pattern matching options
	findCmd.Flags().StringP("name", "n", "", "Match by base name (supports ** and {a,b})")
	findCmd.Flags().StringP("path", "p", "", "Match by path relative to the root")
	findCmd.Flags().StringP("regex", "r", "", "Match full path by regular expression")

	// Time-based filtering
	findCmd.Flags().String("older-than", "", "Files older than this duration (e.g. 7d, 24h, 30m)")
	findCmd.Flags().String("newer-than", "", "Files newer than this duration (e.g. 7d, 24h, 30m)")

	// Size-based filtering
	findCmd.Flags().String("larger-than", "", "Files larger than this size (e.g. 1MB, 500KB)")
	findCmd.Flags().String("smaller-than", "", "Files smaller than this size (e.g. 1MB, 500KB)")

	// Execution options
	findCmd.Flags().String("exec", "", "Command to execute for each match")
	findCmd.Flags().String("format", "", "Format string for output")

	// Traversal options
	addTraversalFlags(findCmd, "find")
	findCmd.Flags().Bool("include-hidden", false, "Include hidden files")
	findCmd.Flags().Bool("include-dirs", false, "Report matching directories as well as files")

	for _, name := range []string{
		"name", "path", "regex", "older-than", "newer-than", "larger-than", "smaller-than",
		"exec", "format", "include-hidden", "include-dirs",
	} {
		viper.BindPFlag("find."+name, findCmd.Flags().Lookup(name))
	}
}

func loadFindOptions(root string) (lazywalk.FindOptions, error) {
	wc, err := loadWalkConfig("find")
	if err != nil {
		return lazywalk.FindOptions{}, err
	}
	exclude, err := wc.filters(root)
	if err != nil {
		return lazywalk.FindOptions{}, err
	}

	opts := lazywalk.NewFindOptions()
	opts.NamePattern = viper.GetString("find.name")
	opts.PathPattern = viper.GetString("find.path")
	opts.MaxDepth = wc.MaxDepth
	opts.DepthMode = wc.DepthMode
	opts.FollowSymlinks = wc.FollowSymlinks
	opts.DetectCycles = wc.DetectCycles
	opts.IncludeHidden = viper.GetBool("find.include-hidden")
	opts.IncludeDirs = viper.GetBool("find.include-dirs")
	opts.ExecCmd = viper.GetString("find.exec")
	opts.PrintFormat = viper.GetString("find.format")
	opts.Exclude = exclude
	opts.Logger = logger

	// Parse regex pattern
	if regexStr := viper.GetString("find.regex"); regexStr != "" {
		opts.RegexPattern, err = regexp.Compile(regexStr)
		if err != nil {
			return opts, fmt.Errorf("invalid regex pattern: %w", err)
		}
	}

	// Parse time durations
	if s := viper.GetString("find.older-than"); s != "" {
		if opts.OlderThan, err = parseDuration(s); err != nil {
			return opts, fmt.Errorf("invalid older-than value: %w", err)
		}
	}
	if s := viper.GetString("find.newer-than"); s != "" {
		if opts.NewerThan, err = parseDuration(s); err != nil {
			return opts, fmt.Errorf("invalid newer-than value: %w", err)
		}
	}

	// Parse size constraints
	if s := viper.GetString("find.larger-than"); s != "" {
		if opts.LargerSize, err = parseSize(s); err != nil {
			return opts, fmt.Errorf("invalid larger-than value: %w", err)
		}
	}
	if s := viper.GetString("find.smaller-than"); s != "" {
		if opts.SmallerSize, err = parseSize(s); err != nil {
			return opts, fmt.Errorf("invalid smaller-than value: %w", err)
		}
	}
	return opts, nil
}

// runFind writes one line per match to out, or runs the exec template.
func runFind(ctx context.Context, out io.Writer, root string, opts lazywalk.FindOptions) error {
	if opts.ExecCmd != "" {
		return lazywalk.FindWithExec(ctx, root, opts, opts.ExecCmd)
	}
	return lazywalk.Find(ctx, root, opts, func(ctx context.Context, msg lazywalk.FindMessage) error {
		line := msg.Path
		if opts.PrintFormat != "" {
			line = msg.Format(opts.PrintFormat)
		}
		_, err := fmt.Fprintln(out, line)
		return err
	})
}

// parseDuration parses a duration string with support for days (d)
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(n * 24 * float64(time.Hour)), nil
	}

	// Use standard duration parsing for other units
	return time.ParseDuration(s)
}

var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// parseSize parses a size string with support for B, KB, MB, GB, TB
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	multiplier := int64(1)
	for _, u := range sizeUnits {
		if rest, ok := strings.CutSuffix(s, u.suffix); ok {
			s, multiplier = strings.TrimSpace(rest), u.multiplier
			break
		}
	}

	size, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if size < 0 {
		return 0, fmt.Errorf("negative size: %s", s)
	}
	return int64(size * float64(multiplier)), nil
}
