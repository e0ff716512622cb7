package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/litescript/ls-dome/internal/catalog"
	"github.com/litescript/ls-dome/internal/dome"
	"github.com/litescript/ls-dome/internal/imagery"
	"github.com/litescript/ls-dome/internal/snapshot"
	"github.com/litescript/ls-dome/internal/version"
	"github.com/litescript/ls-dome/internal/window"
)

func newWindowCmd(opts *options) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "window",
		Short: "Open the gallery in a desktop window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log, closeLog, err := opts.logger(false)
			if err != nil {
				return err
			}
			defer closeLog()

			c, cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			g := dome.New(cfg, c.Tiles,
				dome.WithLogger(log.Named("dome")),
				dome.WithNavigator(func(t dome.PlacedTile) {
					fmt.Println(t.LinkURL)
				}),
			)

			cache := imagery.NewCache(nil)
			go func() {
				if failed := cache.Preload(ctx, refsOf(c.Tiles)); failed > 0 {
					log.Warn("%d images failed to load", failed)
				}
			}()

			return window.Run(ctx, g, cache, log.Named("window"), window.Options{
				Title:  "ls-dome: " + c.Path,
				Width:  width,
				Height: height,
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Initial window width")
	cmd.Flags().IntVar(&height, "height", 0, "Initial window height")
	return cmd
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var (
		out           string
		format        string
		width, height float64
		spin, tilt    float64
		dragX, dragY  float64
		focus         string
		progress      float64
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render one frame of the gallery to an image file",
		Example: `  ls-dome snapshot --out dome.webp --spin 30
  ls-dome snapshot --out open.png --focus images/a.jpg --progress 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := opts.logger(false)
			if err != nil {
				return err
			}
			defer closeLog()

			f, err := snapshot.FormatFor(format, out)
			if err != nil {
				return err
			}
			c, cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			g := dome.New(cfg, c.Tiles, dome.WithLogger(log.Named("dome")))
			defer g.Close()

			shot := snapshot.Shot{
				Size:     dome.Size{Width: width, Height: height},
				Rotation: dome.Orientation{Tilt: tilt, Spin: spin},
				Drag:     dome.Point{X: dragX, Y: dragY},
				Focus:    -1,
				Progress: progress,
			}
			if focus != "" {
				shot.Focus = g.FindTile(focus)
				if shot.Focus < 0 {
					shot.Focus = g.FindTile(catalog.ResolveRef(focus, filepath.Dir(c.Path)))
				}
				if shot.Focus < 0 {
					return fmt.Errorf("no tile shows %q", focus)
				}
			}
			v, err := snapshot.Capture(g, shot)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			img := snapshot.NewRenderer(imagery.NewCache(nil)).Render(ctx, v)
			if err := snapshot.WriteFile(out, img, f); err != nil {
				return err
			}
			log.Info("wrote %s (%dx%d, %d tiles)", out, img.Bounds().Dx(), img.Bounds().Dy(), len(v.Tiles))
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&out, "out", "o", "dome.png", "Output file")
	fl.StringVar(&format, "format", "", "Image format (png, webp); defaults to the output extension")
	fl.Float64Var(&width, "width", 1200, "Frame width in pixels")
	fl.Float64Var(&height, "height", 800, "Frame height in pixels")
	fl.Float64Var(&spin, "spin", 0, "Sphere spin in degrees")
	fl.Float64Var(&tilt, "tilt", 0, "Sphere tilt in degrees")
	fl.Float64Var(&dragX, "drag-x", 0, "Horizontal drag in pixels applied before capture")
	fl.Float64Var(&dragY, "drag-y", 0, "Vertical drag in pixels applied before capture")
	fl.StringVar(&focus, "focus", "", "Image reference of the tile to enlarge")
	fl.Float64Var(&progress, "progress", 0, "Stop the enlarge transition part way, in (0,1)")
	fl.DurationVar(&timeout, "timeout", 30*time.Second, "Time limit for loading images")
	return cmd
}

func newLayoutCmd(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the placed tiles of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			l := dome.BuildLayout(c.Tiles, cfg.Segments)

			out := cmd.OutOrStdout()
			lo := layoutOptions{All: all}
			if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				lo.Color = true
				if w, _, err := term.GetSize(int(f.Fd())); err == nil {
					lo.Width = w
				}
			}
			return writeLayout(out, l, lo)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every slot instead of one row per image")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ls-dome %s\n", version.Version)
		},
	}
}

func refsOf(tiles []dome.TileRecord) []string {
	refs := make([]string, 0, len(tiles))
	for _, t := range tiles {
		refs = append(refs, t.ImageRef)
	}
	return refs
}
