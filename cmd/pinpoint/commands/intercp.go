package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow/constprop"
	"github.com/dkellner/pinpoint/internal/dataflow/inter"
	"github.com/dkellner/pinpoint/internal/pta/ci"
	"github.com/dkellner/pinpoint/internal/report"
)

var intercpCmd = &cobra.Command{
	Use:   "intercp <program.yaml>",
	Short: "Run inter-procedural constant propagation",
	Long: `Runs points-to analysis to resolve the call graph and heap
aliases, builds the inter-procedural CFG, and propagates constants across
call, return and heap edges.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		ptaResult := ci.Solve(p)
		icfg := cfg.BuildICFG(ptaResult.CallGraph())
		solver := inter.NewSolver[*constprop.Fact](inter.NewInterCP(icfg, ptaResult), icfg)
		result := solver.Solve()

		for _, m := range ptaResult.CallGraph().Reachable() {
			rep := report.BuildConstPropReport(icfg.CFGOf(m), result)
			if flagJSON {
				if err := report.WriteJSON(os.Stdout, rep); err != nil {
					return err
				}
				continue
			}
			report.WriteFacts(os.Stdout, rep)
		}
		return nil
	},
}
