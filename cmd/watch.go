package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	lazywalk "github.com/TFMV/lazywalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch for filesystem changes",
	Long: `Watch for filesystem changes and perform actions when files are created, modified, or deleted.

With --recursive, every directory the traversal flags admit is registered,
so --exclude, --exclude-name and --max-depth limit what is watched.

Examples:
  lazywalk watch /path/to/watch
  lazywalk watch --events=create,modify --exec="echo Changed: {}" /path/to/watch
  lazywalk watch --format="{base} was {event} at {time}" /path/to/watch
  lazywalk watch --recursive --exclude-name=node_modules /path/to/watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootPath(args)
		opts, err := loadWatchOptions(root)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes...\n", root)
		fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to exit.")

		return runWatch(ctx, cmd.OutOrStdout(), root, opts,
			viper.GetString("watch.exec"), viper.GetString("watch.format"))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSlice("events", []string{}, "Events to watch for (create, modify, delete, rename, chmod)")
	watchCmd.Flags().Bool("recursive", false, "Watch subdirectories recursively")
	watchCmd.Flags().String("exec", "", "Command to execute when an event occurs")
	watchCmd.Flags().String("format", "", "Format string for output ({event} plus the find placeholders)")
	watchCmd.Flags().Duration("timeout", 0, "Duration to watch before exiting (e.g., 1h, 30m)")
	watchCmd.Flags().Bool("include-hidden", false, "Include hidden files and directories")
	addTraversalFlags(watchCmd, "watch")

	for _, name := range []string{"events", "recursive", "exec", "format", "timeout", "include-hidden"} {
		viper.BindPFlag("watch."+name, watchCmd.Flags().Lookup(name))
	}
}

func loadWatchOptions(root string) (lazywalk.WatchOptions, error) {
	wc, err := loadWalkConfig("watch")
	if err != nil {
		return lazywalk.WatchOptions{}, err
	}
	exclude, err := wc.filters(root)
	if err != nil {
		return lazywalk.WatchOptions{}, err
	}

	opts := lazywalk.NewWatchOptions()
	opts.Recursive = viper.GetBool("watch.recursive")
	opts.MaxDepth = wc.MaxDepth
	opts.DepthMode = wc.DepthMode
	opts.FollowSymlinks = wc.FollowSymlinks
	opts.IncludeHidden = viper.GetBool("watch.include-hidden")
	opts.Exclude = exclude
	opts.Timeout = viper.GetDuration("watch.timeout")
	opts.Logger = logger

	for _, e := range viper.GetStringSlice("watch.events") {
		// StringSlice flags may still carry a comma list from config files.
		for _, name := range strings.Split(e, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			ev, err := lazywalk.ParseWatchEvent(name)
			if err != nil {
				return opts, err
			}
			opts.Events = append(opts.Events, ev)
		}
	}
	return opts, nil
}

// runWatch blocks until ctx is done or the timeout elapses, writing one
// line per event to out unless an exec template is given.
func runWatch(ctx context.Context, out io.Writer, root string, opts lazywalk.WatchOptions, execCmd, format string) error {
	if execCmd != "" {
		return lazywalk.WatchWithExec(ctx, root, opts, execCmd)
	}
	return lazywalk.Watch(ctx, root, opts, func(ctx context.Context, msg lazywalk.WatchMessage) error {
		line := fmt.Sprintf("%s: %s", strings.ToUpper(string(msg.Event)), msg.Path)
		if format != "" {
			line = msg.Format(format)
		}
		_, err := fmt.Fprintln(out, line)
		return err
	})
}
