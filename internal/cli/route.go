package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voidshard/roadgraph"
)

type routeOpts struct {
	from string
	to   string
}

func newRouteCmd() *cobra.Command {
	world := newWorldOpts()
	opts := routeOpts{}

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Grow a road network & find the shortest route between two points",
		Long:  `Both points snap to the nearest road end point before routing.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			g, err := world.generator(cmd, logger)
			if err != nil {
				return err
			}
			return runRoute(cmd, g, &opts)
		},
	}

	world.addFlags(cmd)
	cmd.Flags().StringVar(&opts.from, "from", "", "start point x,y")
	cmd.Flags().StringVar(&opts.to, "to", "", "end point x,y")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runRoute(cmd *cobra.Command, g *roadgraph.Generator, opts *routeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	from, err := parsePoint(opts.from)
	if err != nil {
		return err
	}
	to, err := parsePoint(opts.to)
	if err != nil {
		return err
	}

	net, err := grow(ctx, g, logger)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	router, err := roadgraph.NewRouter(net)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built routing graph of %d vertices", router.Vertices()))

	start, ok := router.Nearest(from)
	if !ok {
		return fmt.Errorf("%w: network is empty", roadgraph.ErrNoRoute)
	}
	end, _ := router.Nearest(to)
	logger.Debug("snapped", "from", start, "to", end)

	length, path, err := router.Route(start, end)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "length: %.2f vertices: %d\n", length, len(path))
	for _, c := range path {
		fmt.Fprintf(out, "%.2f,%.2f\n", c.X, c.Y)
	}
	return nil
}
