package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TrevorS/circcoords"
	"github.com/TrevorS/circcoords/internal/snapshot"
)

func (c *CLI) newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "List the persistence pairs of a snapshot so generators can be chosen",
		Args:  cobra.ExactArgs(1),
		Example: `  # Most persistent classes first
  circcoords inspect snapshot.yaml

  # Only the five longest-lived classes
  circcoords inspect snapshot.yaml --top 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := snapshot.Read(args[0])
			if err != nil {
				return err
			}
			c.logger.Debug("snapshot read",
				zap.String("snapshot", args[0]),
				zap.Int("pairs", len(f.Diagram)),
				zap.Int("cocycles", len(f.Cocycles)))
			return writeDiagram(cmd.OutOrStdout(), f, c.conf.GetInt("top"))
		},
	}
	cmd.Flags().Int("top", 0, "Show only the N most persistent pairs (0 shows all)")
	return cmd
}

// writeDiagram prints one line per persistence pair, longest lifespan first.
func writeDiagram(w io.Writer, f *snapshot.File, top int) error {
	m, n := len(f.Landmarks), len(f.Points)
	if len(f.DistLandmarkLandmark) > 0 {
		m = len(f.DistLandmarkLandmark)
		if len(f.DistLandmarkData) > 0 {
			n = len(f.DistLandmarkData[0])
		}
	}
	prime := f.FieldPrime
	if prime == 0 {
		prime = circcoords.DefaultFieldPrime
	}
	if _, err := fmt.Fprintf(w, "landmarks: %d  points: %d  field: Z/%d  pairs: %d\n",
		m, n, prime, len(f.Diagram)); err != nil {
		return err
	}

	order := make([]int, len(f.Diagram))
	for i := range order {
		order[i] = i
	}
	lifespan := func(i int) float64 {
		return circcoords.Interval{Birth: f.Diagram[i].Birth, Death: f.Diagram[i].Death}.Lifespan()
	}
	sort.SliceStable(order, func(a, b int) bool { return lifespan(order[a]) > lifespan(order[b]) })
	if top > 0 && top < len(order) {
		order = order[:top]
	}

	if _, err := fmt.Fprintf(w, "%-6s %12s %12s %12s %8s\n", "index", "birth", "death", "lifespan", "edges"); err != nil {
		return err
	}
	for _, i := range order {
		edges := 0
		if i < len(f.Cocycles) {
			edges = len(f.Cocycles[i])
		}
		p := f.Diagram[i]
		if _, err := fmt.Fprintf(w, "%-6d %12.6g %12.6g %12.6g %8d\n", i, p.Birth, p.Death, lifespan(i), edges); err != nil {
			return err
		}
	}
	return nil
}
