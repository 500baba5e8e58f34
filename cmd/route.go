package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chrisdamba/campussim/internal/factories"
	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Prints the shortest and second-best routes between two locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		cfg, err := models.LoadConfig("")
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		mapConfig := cfg.Map
		if mapConfig == nil || len(mapConfig.Locations) == 0 {
			mapConfig = factories.DefaultCampusMap()
		}
		g, err := factories.BuildGraph(mapConfig)
		if err != nil {
			return err
		}
		return printRoutes(cmd.OutOrStdout(), g, from, to)
	},
}

func printRoutes(w io.Writer, g *graph.Graph, from, to string) error {
	best, err := g.ShortestPath(from, to)
	if err != nil {
		return err
	}
	distance, err := g.PhysicalDistance(from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "shortest     %6.2f min  %s\n", best.Cost, strings.Join(best.Stops, " -> "))

	alt, err := g.SecondBestPath(from, to)
	switch {
	case errors.Is(err, graph.ErrNoAlternatePath):
		fmt.Fprintln(w, "second best  none")
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "second best  %6.2f min  %s\n", alt.Cost, strings.Join(alt.Stops, " -> "))
	}
	fmt.Fprintf(w, "distance     %6.0f m\n", distance)
	return nil
}

func init() {
	routeCmd.Flags().String("from", "", "Start location id")
	routeCmd.Flags().String("to", "", "Destination location id")
	_ = routeCmd.MarkFlagRequired("from")
	_ = routeCmd.MarkFlagRequired("to")
}
