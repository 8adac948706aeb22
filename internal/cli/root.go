// Package cli implements the roadgen command-line interface.
//
// roadgen grows a road network over land & population rasters (png/jpeg
// images or uniform values) & writes it out as JSON, GeoJSON, WKT, PNG or
// STL. It can also generate a network & report the shortest route between
// two points on it.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// Execute runs roadgen with os.Args, stopping generation if ctx is cancelled
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// newRootCmd builds the command tree; results go to stdout, logs to stderr
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "roadgen",
		Short:        "roadgen grows city road networks from raster maps",
		Long:         `roadgen lays highways that chase population density, then fills in a grid of streets around them wherever there is land.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(stderr, level)))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newRouteCmd())

	return root
}
