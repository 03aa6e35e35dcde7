// Command mosaic compiles images and Geometrize shape lists into primitive scenes.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/setanarut/mosaic"
	"github.com/setanarut/mosaic/utils"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type outputFlags struct {
	out     string
	format  utils.Format
	preview string
	width   int
}

func (o *outputFlags) register(cmd *cobra.Command) {
	o.format = utils.FormatJSON
	cmd.Flags().StringVarP(&o.out, "out", "o", "-", "scene output file, - for stdout")
	cmd.Flags().VarP(&o.format, "format", "f", "scene format: json or yaml")
	cmd.Flags().StringVar(&o.preview, "preview", "", "write a PNG preview of the scene")
	cmd.Flags().IntVar(&o.width, "preview-width", 512, "preview width in pixels")
}

func (o *outputFlags) write(cmd *cobra.Command, prims []mosaic.Primitive) error {
	if err := o.writeScene(cmd.OutOrStdout(), prims); err != nil {
		return err
	}
	if o.preview == "" {
		return nil
	}
	img, err := utils.RenderPreview(prims, o.width)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if img == nil {
		mosaic.Logger().Warn("nothing to preview")
		return nil
	}
	return utils.SaveImage(img, o.preview)
}

// writeScene writes to stdout or to the --out file.
func (o *outputFlags) writeScene(stdout io.Writer, prims []mosaic.Primitive) error {
	if o.out == "-" || o.out == "" {
		return utils.WritePrimitives(stdout, prims, o.format)
	}
	f, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := utils.WritePrimitives(f, prims, o.format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "mosaic",
		Short:        "Compile images into mosaics of colored primitives",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			mosaic.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log build stages")
	root.AddCommand(newImageCmd(), newVectorCmd(), newCompareCmd())
	return root
}

type buildFlags struct {
	config        string
	palette       int
	paletteMethod utils.PaletteMethod
	sizing        string
	cellSize      float32
	targetHeight  float32
	quality       float32
	spacing       float32
	tolerance     float64
	coalesce      bool
	order         string
	spanAxis      string
	depth         float32
	lights        bool
}

func (b *buildFlags) register(cmd *cobra.Command) {
	def := mosaic.DefaultOptions()
	fs := cmd.Flags()
	fs.StringVarP(&b.config, "config", "c", "", "TOML options file; flags override it")
	fs.IntVarP(&b.palette, "palette", "p", 0, "snap colors to a palette of this many colors (0 disables)")
	fs.Var(&b.paletteMethod, "palette-method", "palette extraction: dominantcolor or kmeans")
	fs.StringVar(&b.sizing, "sizing", def.Sizing.String(), "grid sizing: height, quality or native")
	fs.Float32Var(&b.cellSize, "cell-size", def.CellSize, "cell edge in scene units")
	fs.Float32Var(&b.targetHeight, "height", def.TargetHeight, "mosaic height in doors")
	fs.Float32Var(&b.quality, "quality", def.Quality, "fraction of the source resolution kept by quality sizing")
	fs.Float32Var(&b.spacing, "spacing", def.Spacing, "gap between cells in scene units")
	fs.Float64VarP(&b.tolerance, "tolerance", "t", def.Tolerance, "per-channel color margin in (0,1]")
	fs.BoolVar(&b.coalesce, "coalesce", def.Coalesce, "coalesce spans into rectangles")
	fs.StringVar(&b.order, "order", def.Order.String(), "coalescing order: horizontal-first or vertical-first")
	fs.StringVar(&b.spanAxis, "span-axis", def.SpanAxis.String(), "span merge direction: horizontal or vertical")
	fs.Float32Var(&b.depth, "depth", def.Depth, "cube thickness, 0 for the cell size")
	fs.BoolVar(&b.lights, "lights", def.Lights, "emit spot lights on a black canvas instead of cubes")
}

// options loads the config file and applies the flags the user set explicitly.
func (b *buildFlags) options(cmd *cobra.Command) (mosaic.Options, error) {
	opt := mosaic.DefaultOptions()
	if b.config != "" {
		// LoadOptions treats a missing file as defaults; a path on the command line must exist.
		if _, err := os.Stat(b.config); err != nil {
			return opt, fmt.Errorf("config: %w", err)
		}
		var err error
		if opt, err = mosaic.LoadOptions(b.config); err != nil {
			return opt, err
		}
	}
	fs := cmd.Flags()
	var errs []error
	if fs.Changed("sizing") {
		errs = append(errs, opt.Sizing.UnmarshalText([]byte(b.sizing)))
	}
	if fs.Changed("order") {
		errs = append(errs, opt.Order.UnmarshalText([]byte(b.order)))
	}
	if fs.Changed("span-axis") {
		errs = append(errs, opt.SpanAxis.UnmarshalText([]byte(b.spanAxis)))
	}
	if err := errors.Join(errs...); err != nil {
		return opt, err
	}
	if fs.Changed("cell-size") {
		opt.CellSize = b.cellSize
	}
	if fs.Changed("height") {
		opt.TargetHeight = b.targetHeight
	}
	if fs.Changed("quality") {
		opt.Quality = b.quality
	}
	if fs.Changed("spacing") {
		opt.Spacing = b.spacing
	}
	if fs.Changed("tolerance") {
		opt.Tolerance = b.tolerance
	}
	if fs.Changed("coalesce") {
		opt.Coalesce = b.coalesce
	}
	if fs.Changed("depth") {
		opt.Depth = b.depth
	}
	if fs.Changed("lights") {
		opt.Lights = b.lights
	}
	return opt, opt.Validate()
}

// build reads the image and runs the builder.
func (b *buildFlags) build(cmd *cobra.Command, path string) (*mosaic.MosaicBuilder, error) {
	opt, err := b.options(cmd)
	if err != nil {
		return nil, err
	}
	img, err := utils.ReadImage(path)
	if err != nil {
		return nil, err
	}
	palette := utils.ExtractPalette(img, b.palette, b.paletteMethod)
	utils.SortPaletteByBrightness(palette)
	mb := mosaic.NewMosaicBuilder(img, palette)
	if err := mb.Build(opt); err != nil {
		return nil, err
	}
	return mb, nil
}

func newImageCmd() *cobra.Command {
	var (
		bf  buildFlags
		of  outputFlags
		rec string
	)
	cmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Compile a raster image into merged cubes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mb, err := bf.build(cmd, args[0])
			if err != nil {
				return err
			}
			if rec != "" {
				if err := utils.SaveImage(mb.Reconstruct(), rec); err != nil {
					return err
				}
			}
			s := mb.Stats()
			mosaic.Logger().Info("compiled image",
				"cells", s.Cells, "spans", s.Spans, "blocks", s.Blocks,
				"reduction", fmt.Sprintf("%.1f%%", s.Reduction*100))
			return of.write(cmd, mb.Primitives())
		},
	}
	bf.register(cmd)
	of.register(cmd)
	cmd.Flags().StringVar(&rec, "reconstruct", "", "write the block raster as PNG")
	return cmd
}

func newVectorCmd() *cobra.Command {
	var (
		of   outputFlags
		size float64
	)
	cmd := &cobra.Command{
		Use:   "vector <shapes.json>",
		Short: "Place a Geometrize JSON shape list on a canvas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shapes, err := utils.ReadShapes(args[0])
			if err != nil {
				return err
			}
			p, err := mosaic.Place(shapes, size)
			if err != nil {
				return err
			}
			if len(p.Skipped) > 0 {
				errs := make([]error, len(p.Skipped))
				for i, s := range p.Skipped {
					errs[i] = fmt.Errorf("shape %d: %w", s.Index, s.Err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d shapes:\n%v\n", len(errs), errors.Join(errs...))
			}
			return of.write(cmd, p.All())
		},
	}
	of.register(cmd)
	cmd.Flags().Float64VarP(&size, "size", "s", 1, "canvas height in doors")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var bf buildFlags
	cmd := &cobra.Command{
		Use:   "compare <file>",
		Short: "Print the block count of both coalescing orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mb, err := bf.build(cmd, args[0])
			if err != nil {
				return err
			}
			h, v := mosaic.CompareOrders(mb.Spans, mb.Options.Tolerance)
			fmt.Fprintf(cmd.OutOrStdout(), "spans             %d\nhorizontal-first  %d\nvertical-first    %d\n",
				len(mb.Spans), h, v)
			return nil
		},
	}
	bf.register(cmd)
	return cmd
}
