// Command ls-dome shows an image catalog as a rotatable sphere gallery in the
// terminal or in a desktop window.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-dome/internal/catalog"
	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
	"github.com/litescript/ls-dome/internal/logging"
	"github.com/litescript/ls-dome/internal/state"
	"github.com/litescript/ls-dome/internal/ui"
	"github.com/litescript/ls-dome/internal/version"
)

const (
	defaultCatalog = "examples/projects.json"
	minWatch       = 250 * time.Millisecond
	maxWatch       = 5 * time.Minute
)

// options are the flags shared by every command.
type options struct {
	catalogPath string
	logLevel    string
	logFile     string
	watch       time.Duration
	flags       catalog.Flags
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "ls-dome",
		Short: "Sphere image gallery for the terminal",
		Long: `ls-dome - sphere image gallery

Shows the images of a catalog file on the inside of a sphere.

Controls:
  Mouse drag   - Rotate the sphere
  Click        - Open a tile
  Arrows/hjkl  - Rotate
  Enter        - Open the front tile, or follow the open tile's link
  Esc          - Close the open tile
  Tab          - Switch between the dome and the tile list
  q            - Quit`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.catalogPath, "catalog", "c", defaultCatalog, "Catalog file (JSON)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	pf.IntVar(&opts.flags.Segments, "segments", 0, "Azimuthal segments (overrides the catalog)")
	pf.Float64Var(&opts.flags.MinRadius, "min-radius", 0, "Minimum sphere radius in pixels")
	pf.Float64Var(&opts.flags.Sensitivity, "sensitivity", 0, "Drag pixels per degree of rotation")
	pf.Float64Var(&opts.flags.Dampening, "dampening", 0, "Inertia dampening in [0,1]")
	pf.StringVar(&opts.flags.FitBasis, "fit-basis", "", "Radius basis (auto, min, max, width, height)")
	pf.BoolVar(&opts.flags.NoGrayscale, "no-grayscale", false, "Show tiles in color")
	pf.Float64Var(&opts.flags.OpenedWidth, "opened-width", 0, "Width of the enlarged tile in pixels")
	pf.Float64Var(&opts.flags.OpenedHeight, "opened-height", 0, "Height of the enlarged tile in pixels")
	cmd.Flags().DurationVar(&opts.watch, "watch", 0, "Reload the catalog when it changes, polling at this interval (e.g. 2s)")

	cmd.AddCommand(
		newWindowCmd(opts),
		newSnapshotCmd(opts),
		newLayoutCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// logger builds the command logger. With stderr taken by a full screen UI,
// logs go to the log file or nowhere.
func (o *options) logger(fullscreen bool) (*logging.Logger, func(), error) {
	log := logging.New(logging.ParseLevel(o.logLevel))
	if o.logFile == "" {
		if fullscreen {
			log.SetOutput(io.Discard)
		}
		return log, func() {}, nil
	}
	f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, func() { f.Close() }, nil
}

// load reads the catalog and resolves the effective gallery configuration.
func (o *options) load() (*catalog.Catalog, dome.Config, time.Duration, error) {
	start := time.Now()
	c, err := catalog.Load(o.catalogPath)
	if err != nil {
		return nil, dome.Config{}, 0, err
	}
	cfg, err := c.Resolve(o.flags)
	if err != nil {
		return nil, dome.Config{}, 0, err
	}
	return c, cfg, time.Since(start), nil
}

func runTUI(ctx context.Context, opts *options) error {
	log, closeLog, err := opts.logger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	c, cfg, took, err := opts.load()
	if err != nil {
		return err
	}

	stateCfg := state.DefaultConfig()
	if opts.watch > 0 {
		stateCfg.WatchInterval = clampWatch(opts.watch)
	}
	stateMgr := state.NewManager(stateCfg)
	stateMgr.Update(c, took, nil)

	g := dome.New(cfg, c.Tiles,
		dome.WithLogger(log.Named("dome")),
		dome.WithEventHandler(stateMgr.Record),
		dome.WithNavigator(func(t dome.PlacedTile) {
			log.Info("link %s (%s)", t.LinkURL, t.ImageRef)
		}),
	)
	defer g.Close()

	cache := imagery.NewCache(nil)
	model := ui.New(stateMgr, g, cache)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	go preload(ctx, cache, c.Tiles, log, p)
	if opts.watch > 0 {
		go watchCatalog(ctx, opts, stateMgr, cache, c.ModTime, log, p)
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// preload loads the catalog images in the background and reports failures.
func preload(ctx context.Context, cache *imagery.Cache, tiles []dome.TileRecord, log *logging.Logger, p *tea.Program) {
	refs := refsOf(tiles)
	failed := cache.Preload(ctx, refs)
	if failed > 0 {
		log.Warn("%d of %d images failed to load", failed, len(refs))
	}
	p.Send(ui.ImagesMsg{Failed: failed})
}

// watchCatalog reloads the catalog file when it changes and pushes the new
// snapshot to the UI.
func watchCatalog(ctx context.Context, opts *options, stateMgr *state.Manager, cache *imagery.Cache, since time.Time, log *logging.Logger, p *tea.Program) {
	log.Debug("watching %s every %v", opts.catalogPath, stateMgr.WatchInterval())
	catalog.Watch(ctx, opts.catalogPath, stateMgr.WatchInterval(), since, func(c *catalog.Catalog, err error) {
		if err != nil {
			log.Error("reload failed: %v", err)
			stateMgr.Update(nil, 0, err)
			p.Send(ui.ErrorMsg{Error: err})
			return
		}
		cfg, err := c.Resolve(opts.flags)
		if err != nil {
			log.Error("reload failed: %v", err)
			stateMgr.Update(nil, 0, err)
			p.Send(ui.ErrorMsg{Error: err})
			return
		}
		log.Info("catalog reloaded: %d tiles", len(c.Tiles))
		stateMgr.Update(c, 0, nil)
		p.Send(ui.CatalogMsg{Snapshot: stateMgr.Snapshot(), Config: &cfg})
		go preload(ctx, cache, c.Tiles, log, p)
	})
}

func clampWatch(d time.Duration) time.Duration {
	if d < minWatch {
		return minWatch
	}
	if d > maxWatch {
		return maxWatch
	}
	return d
}
