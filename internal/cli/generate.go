package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voidshard/roadgraph"
)

// generateOpts are the output files for the generate command; empty is skipped
type generateOpts struct {
	json    string
	geojson string
	wkt     string
	png     string
	rawPNG  string
	stl     string
}

func newGenerateCmd() *cobra.Command {
	world := newWorldOpts()
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Grow a road network & write it out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			g, err := world.generator(cmd, logger)
			if err != nil {
				return err
			}
			return runGenerate(cmd, g, &opts)
		},
	}

	world.addFlags(cmd)
	cmd.Flags().StringVar(&opts.json, "json", "", "write the network as json")
	cmd.Flags().StringVar(&opts.geojson, "geojson", "", "write the network as a geojson FeatureCollection")
	cmd.Flags().StringVar(&opts.wkt, "wkt", "", "write the network as a WKT MULTILINESTRING")
	cmd.Flags().StringVar(&opts.png, "png", "", "write a coloured map")
	cmd.Flags().StringVar(&opts.rawPNG, "raw-png", "", "write the raw encoded map")
	cmd.Flags().StringVar(&opts.stl, "stl", "", "write the road quads as an STL mesh")

	return cmd
}

func runGenerate(cmd *cobra.Command, g *roadgraph.Generator, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	net, err := grow(ctx, g, logger)
	if err != nil {
		return err
	}

	writers := []struct {
		fpath string
		write func(string) error
	}{
		{opts.json, net.SaveJSON},
		{opts.geojson, net.SaveGeoJSON},
		{opts.wkt, net.SaveWKT},
		{opts.stl, net.SaveSTL},
		{opts.png, func(fpath string) error { return saveMap(ctx, g, fpath, false) }},
		{opts.rawPNG, func(fpath string) error { return saveMap(ctx, g, fpath, true) }},
	}
	for _, w := range writers {
		if w.fpath == "" {
			continue
		}
		if err := w.write(w.fpath); err != nil {
			return err
		}
		logger.Info("wrote", "file", w.fpath)
	}

	b := net.Bound()
	fmt.Fprintf(cmd.OutOrStdout(), "edges: %d highways: %d streets: %d intersections: %d bounds: (%.1f, %.1f) -> (%.1f, %.1f)\n",
		net.Len(),
		net.Stats.EdgesByKind[roadgraph.Highway],
		net.Stats.EdgesByKind[roadgraph.Street],
		net.Stats.Intersections,
		b.Min[0], b.Min[1], b.Max[0], b.Max[1],
	)
	return nil
}

// saveMap paints the network & saves it as a png
func saveMap(ctx context.Context, g *roadgraph.Generator, fpath string, raw bool) error {
	prog := newProgress(loggerFromContext(ctx))
	m, err := g.Map()
	if err != nil {
		return err
	}
	if raw {
		err = m.Save(fpath)
	} else {
		err = m.SaveAdv(fpath, roadgraph.DefaultScheme())
	}
	if err != nil {
		return err
	}
	prog.done("Painted map")
	return nil
}
