package cmd

import (
	"fmt"
	"strings"

	"github.com/TFMV/lazywalk/internal/pathfilter"
	lazywalk "github.com/TFMV/lazywalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var traversalFlags = []string{"follow-symlinks", "max-depth", "depth-mode", "detect-cycles", "exclude", "exclude-name"}

// addTraversalFlags registers the flags every walking command shares and
// binds them under prefix.
func addTraversalFlags(cmd *cobra.Command, prefix string) {
	f := cmd.Flags()
	f.Bool("follow-symlinks", false, "Follow symbolic links")
	f.IntP("max-depth", "d", lazywalk.Unbounded, "Maximum directory depth to descend (-1 for unlimited)")
	f.String("depth-mode", "branch", "How max-depth is counted (branch|global)")
	f.Bool("detect-cycles", false, "Do not revisit directories reached through followed links")
	f.StringSlice("exclude", nil, "Glob patterns to prune, relative to the root")
	f.StringSlice("exclude-name", nil, "Base names to prune (e.g. .git)")

	for _, name := range traversalFlags {
		viper.BindPFlag(prefix+"."+name, f.Lookup(name))
	}
}

// walkConfig is the traversal policy shared by every command.
type walkConfig struct {
	FollowSymlinks bool
	MaxDepth       int
	DepthMode      lazywalk.DepthMode
	DetectCycles   bool
	Exclude        []string
	ExcludeNames   []string
}

func loadWalkConfig(prefix string) (walkConfig, error) {
	mode, err := parseDepthMode(viper.GetString(prefix + ".depth-mode"))
	if err != nil {
		return walkConfig{}, err
	}
	return walkConfig{
		FollowSymlinks: viper.GetBool(prefix + ".follow-symlinks"),
		MaxDepth:       viper.GetInt(prefix + ".max-depth"),
		DepthMode:      mode,
		DetectCycles:   viper.GetBool(prefix + ".detect-cycles"),
		Exclude:        viper.GetStringSlice(prefix + ".exclude"),
		ExcludeNames:   viper.GetStringSlice(prefix + ".exclude-name"),
	}, nil
}

func parseDepthMode(s string) (lazywalk.DepthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "branch":
		return lazywalk.DepthPerBranch, nil
	case "global":
		return lazywalk.DepthGlobal, nil
	default:
		return 0, fmt.Errorf("invalid depth-mode: %s (expected branch or global)", s)
	}
}

// filters builds the pruning filters for a walk rooted at root.
func (c walkConfig) filters(root string) ([]lazywalk.PathFilter, error) {
	var filters []lazywalk.PathFilter
	if len(c.Exclude) > 0 {
		g, err := pathfilter.NewGlob(root, c.Exclude...)
		if err != nil {
			return nil, err
		}
		filters = append(filters, g)
	}
	if len(c.ExcludeNames) > 0 {
		filters = append(filters, pathfilter.NewNames(c.ExcludeNames...))
	}
	return filters, nil
}

func (c walkConfig) options(root string) (lazywalk.Options, error) {
	filters, err := c.filters(root)
	if err != nil {
		return lazywalk.Options{}, err
	}
	o := lazywalk.New(root).
		WithMaxDepth(c.MaxDepth).
		WithDepthMode(c.DepthMode).
		WithFilters(filters...).
		WithLogger(logger)
	if c.FollowSymlinks {
		o = o.FollowSymlinks()
	}
	if c.DetectCycles {
		o = o.WithCycleDetection()
	}
	return o, nil
}
