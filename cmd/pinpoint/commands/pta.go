package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/cache"
	"github.com/dkellner/pinpoint/internal/pta"
	"github.com/dkellner/pinpoint/internal/pta/ci"
	"github.com/dkellner/pinpoint/internal/pta/cs"
	"github.com/dkellner/pinpoint/internal/report"
)

var (
	flagContext  string
	flagK        int
	flagCacheDir string
	flagNoCache  bool
)

// selectorFor builds the context selector named by --context.
func selectorFor(name string, k int) (cs.Selector, error) {
	switch name {
	case "", "ci":
		return cs.CISelector{}, nil
	case "k-call":
		return cs.KCallSelector{K: k}, nil
	case "k-obj":
		return cs.KObjSelector{K: k}, nil
	case "k-type":
		return cs.KTypeSelector{K: k}, nil
	default:
		return nil, fmt.Errorf("unknown context variant %q (want ci, k-call, k-obj or k-type)", name)
	}
}

var ptaCmd = &cobra.Command{
	Use:   "pta <program.yaml>",
	Short: "Run whole-program points-to analysis",
	Long: `Runs Andersen-style points-to analysis. Without --context the
context-insensitive solver runs; with --context the context-sensitive
solver runs under the chosen selector.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var rep report.PointsToReport
		cacheID := "pta/" + flagContext + "/" + fmt.Sprint(flagK)
		key := cache.Key(data, cacheID)
		store := cache.New(flagCacheDir)
		if !flagNoCache && store.Load(key, &rep) {
			analysis.Debugf("[cache] hit for %s", cacheID)
			return writePointsTo(rep)
		}

		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		if flagContext == "" {
			rep = report.BuildPointsToReport(ci.Solve(p))
		} else {
			selector, err := selectorFor(flagContext, flagK)
			if err != nil {
				return err
			}
			solver := cs.NewSolver(p, pta.NewHeapModel(), selector)
			rep = report.BuildPointsToReport(solver.Solve())
		}
		if !flagNoCache {
			if err := store.Store(key, rep); err != nil {
				analysis.Warnf("[cache] %v", err)
			}
		}
		return writePointsTo(rep)
	},
}

func writePointsTo(rep report.PointsToReport) error {
	if flagJSON {
		return report.WriteJSON(os.Stdout, rep)
	}
	report.WritePointsTo(os.Stdout, rep)
	return nil
}

func init() {
	ptaCmd.Flags().StringVar(&flagContext, "context", "", "context sensitivity: ci, k-call, k-obj or k-type")
	ptaCmd.Flags().IntVar(&flagK, "k", 2, "context depth limit for k-* variants")
	ptaCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "cache directory (default $HOME/.cache/pinpoint)")
	ptaCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "bypass the result cache")
}
