package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadmap/pkg/buildinfo"
	"github.com/matzehuels/roadmap/pkg/cache"
	"github.com/matzehuels/roadmap/pkg/config"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "roadmap"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// flagKeys maps flag names to the config keys they override. A flag only
// takes effect through config.Load when it was set on the command line.
var flagKeys = map[string]string{
	"algorithm":     "layout.algorithm",
	"node-width":    "layout.node_width",
	"node-height":   "layout.node_height",
	"seed":          "layout.seed",
	"cache-backend": "cache.backend",
	"cache-dir":     "cache.dir",
	"addr":          "server.addr",
	"rate-limit":    "server.rate_limit",
	"history-limit": "server.history_limit",
	"nats-url":      "events.nats_url",
	"log-level":     "log.level",
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the effective configuration of the running command.
func (c *CLI) Config() config.Config {
	return c.cfg
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Roadmap analyzes and lays out dependency graphs of work items",
		Long: `Roadmap reads a roadmap graph (projects, epics, features, tasks and
milestones connected by dependencies), reports its structure (cycles, depth,
critical path, isolated items), computes hierarchical or force-directed
layouts, and renders them with Graphviz. 'roadmap serve' exposes the same
operations plus an undoable editing session over HTTP.`,
		Version:           buildinfo.Get().Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig merges defaults, the config file, the environment and the
// flags of the command being run.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{
		Path:     c.configPath,
		Flags:    cmd.Flags(),
		FlagKeys: flagKeys,
	})
	if err != nil {
		return err
	}
	c.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "log level")
	}
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	c.Logger.Debug("config loaded", "path", c.configPath, "cache", cfg.Cache.Backend, "algorithm", cfg.Layout.Algorithm)
	return nil
}

// addLayoutFlags registers the flags that override the [layout] section.
func addLayoutFlags(cmd *cobra.Command) {
	d := config.Default().Layout
	cmd.Flags().StringP("algorithm", "a", d.Algorithm, "layout algorithm: hierarchical, force-directed")
	cmd.Flags().Float64("node-width", d.NodeWidth, "node box width")
	cmd.Flags().Float64("node-height", d.NodeHeight, "node box height")
	cmd.Flags().Uint64("seed", d.Seed, "random seed for the force-directed layout")
}

// addCacheFlags registers the flags that override the [cache] section.
func addCacheFlags(cmd *cobra.Command, noCache *bool) {
	cmd.Flags().BoolVar(noCache, "no-cache", false, "disable caching")
	cmd.Flags().String("cache-backend", "", "cache backend: file, badger, redis, none")
	cmd.Flags().String("cache-dir", "", "cache directory for the file and badger backends")
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(ctx, c.cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the backend selected by cfg.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Redis)
	case config.BackendBadger:
		dir, err := backendDir(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewBadgerCache(dir)
	default:
		dir, err := backendDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// backendDir is the on-disk location of the file or badger cache.
func backendDir(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	if cfg.Backend == config.BackendBadger {
		return filepath.Join(dir, "badger"), nil
	}
	return dir, nil
}

// pipelineOptions builds pipeline options from the effective config.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Algorithm: c.cfg.Layout.Algorithm,
		Layout:    c.cfg.Layout.Options(),
		Logger:    c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/roadmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// outputPath derives an output file from the input: graph.json with suffix
// ".layout.json" becomes graph.layout.json.
func outputPath(input, suffix string) string {
	if input == "-" {
		return "roadmap" + suffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
