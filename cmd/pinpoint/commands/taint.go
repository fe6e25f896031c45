package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkellner/pinpoint/internal/pta"
	"github.com/dkellner/pinpoint/internal/pta/cs"
	"github.com/dkellner/pinpoint/internal/pta/taint"
	"github.com/dkellner/pinpoint/internal/report"
)

var (
	flagTaintConfig  string
	flagTaintContext string
	flagTaintK       int
)

var taintCmd = &cobra.Command{
	Use:   "taint <program.yaml>",
	Short: "Track taint flows from sources to sinks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTaintConfig == "" {
			return fmt.Errorf("--config is required")
		}
		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		config, err := taint.LoadConfig(flagTaintConfig, p)
		if err != nil {
			return err
		}
		selector, err := selectorFor(flagTaintContext, flagTaintK)
		if err != nil {
			return err
		}
		solver := cs.NewSolver(p, pta.NewHeapModel(), selector)
		overlay := taint.New(solver, config)
		solver.Solve()

		rep := report.BuildTaintReport(overlay.Flows())
		if flagJSON {
			return report.WriteJSON(os.Stdout, rep)
		}
		report.WriteTaint(os.Stdout, rep)
		return nil
	},
}

func init() {
	taintCmd.Flags().StringVarP(&flagTaintConfig, "config", "c", "", "taint rules YAML file")
	taintCmd.Flags().StringVar(&flagTaintContext, "context", "ci", "context sensitivity: ci, k-call, k-obj or k-type")
	taintCmd.Flags().IntVar(&flagTaintK, "k", 2, "context depth limit for k-* variants")
}
