package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dkellner/pinpoint/internal/callgraph"
	"github.com/dkellner/pinpoint/internal/report"
)

var chaCmd = &cobra.Command{
	Use:   "cha <program.yaml>",
	Short: "Build the call graph by class-hierarchy analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		g := callgraph.BuildCHA(p)
		rep := report.BuildCallGraphReport(g)
		if flagJSON {
			return report.WriteJSON(os.Stdout, rep)
		}
		report.WriteCallGraph(os.Stdout, rep)
		return nil
	},
}
