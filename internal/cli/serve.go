package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/roadmap/internal/server"
	"github.com/matzehuels/roadmap/pkg/dag"
	"github.com/matzehuels/roadmap/pkg/editor"
	"github.com/matzehuels/roadmap/pkg/events"
	"github.com/matzehuels/roadmap/pkg/pipeline"
	"github.com/matzehuels/roadmap/pkg/telemetry"
	"github.com/matzehuels/roadmap/pkg/watch"
)

// telemetryShutdownTimeout bounds exporter flushing on exit.
const telemetryShutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		graphPath string
		follow    bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with an editing session",
		Long: `Run the roadmap HTTP API.

Stateless endpoints analyze, lay out and render posted graphs. An editing
session (optionally seeded from --graph) supports node and edge edits,
applying a layout, and undo/redo; every change is streamed on /v1/events
and, when events.nats_url is set, published to NATS.

With --watch the session is reloaded whenever the --graph file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if follow && graphPath == "" {
				return fmt.Errorf("--watch needs --graph")
			}
			return c.runServe(cmd.Context(), graphPath, follow, noCache)
		},
	}

	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "graph file to seed the editing session")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "reload the session when the graph file changes")
	cmd.Flags().String("addr", "", "listen address (default from config: server.addr)")
	cmd.Flags().Float64("rate-limit", 0, "requests per second per client, 0 disables")
	cmd.Flags().Int("history-limit", 0, "undo steps kept by the editing session")
	cmd.Flags().String("nats-url", "", "publish editor events to this NATS server")
	addLayoutFlags(cmd)
	addCacheFlags(cmd, &noCache)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, graphPath string, follow, noCache bool) error {
	cfg := c.cfg
	logger := c.Logger

	// Telemetry
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()
	hooks, err := telemetry.NewHooks(nil)
	if err != nil {
		return fmt.Errorf("create telemetry hooks: %w", err)
	}
	telemetry.Register(hooks)

	// Events
	broker := events.NewBroker(logger)
	defer broker.Close()
	publishers := events.Multi{broker}
	if cfg.Events.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.Events.NATSURL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer np.Close()
		publishers = append(publishers, np)
		logger.Info("publishing events to NATS", "url", cfg.Events.NATSURL)
	}

	// Editing session
	var seed *dag.DAG
	if graphPath != "" {
		if seed, err = pipeline.LoadGraph(graphPath); err != nil {
			return err
		}
		logger.Info("loaded graph", "path", graphPath, "nodes", seed.NodeCount(), "edges", seed.EdgeCount())
	}
	ed := editor.New(seed, editor.Options{
		HistoryLimit: cfg.Server.HistoryLimit,
		Publisher:    publishers,
		Logger:       logger,
		Layout:       cfg.Layout.Options(),
	})

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(server.Options{
		Editor:         ed,
		Runner:         runner,
		Broker:         broker,
		Pipeline:       c.pipelineOptions(),
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.Burst,
		MetricsHandler: telemetry.MetricsHandler(),
		Logger:         logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if follow {
		g.Go(func() error {
			return watch.File(gctx, graphPath, watch.Options{Logger: logger}, func(ev watch.Event) {
				c.reloadSession(gctx, ed, graphPath, ev)
			})
		})
	}
	return g.Wait()
}

// reloadSession replaces the editor's graph with the file's new contents.
// A graph that fails to load leaves the session unchanged.
func (c *CLI) reloadSession(ctx context.Context, ed *editor.Editor, path string, ev watch.Event) {
	if ev.Removed {
		c.Logger.Warn("graph file removed; keeping current session", "path", path)
		return
	}
	g, err := pipeline.LoadGraph(path)
	if err != nil {
		c.Logger.Error("reload failed", "path", path, "error", err)
		return
	}
	if err := ed.Replace(ctx, g, path); err != nil {
		c.Logger.Error("reload failed", "path", path, "error", err)
		return
	}
	c.Logger.Info("session reloaded", "path", path, "nodes", g.NodeCount(), "edges", g.EdgeCount())
}
