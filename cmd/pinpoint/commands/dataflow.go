package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dkellner/pinpoint/internal/cfg"
	"github.com/dkellner/pinpoint/internal/dataflow"
	"github.com/dkellner/pinpoint/internal/dataflow/constprop"
	"github.com/dkellner/pinpoint/internal/dataflow/deadcode"
	"github.com/dkellner/pinpoint/internal/dataflow/livevars"
	"github.com/dkellner/pinpoint/internal/report"
)

var flagMethod string

var constpropCmd = &cobra.Command{
	Use:   "constprop <program.yaml>",
	Short: "Run intra-procedural constant propagation on a method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		m, err := methodByRef(p, flagMethod)
		if err != nil {
			return err
		}
		c := cfg.New(m)
		result := dataflow.Solve[*constprop.Fact](constprop.New(), c)
		rep := report.BuildConstPropReport(c, result)
		if flagJSON {
			return report.WriteJSON(os.Stdout, rep)
		}
		report.WriteFacts(os.Stdout, rep)
		return nil
	},
}

var livevarsCmd = &cobra.Command{
	Use:   "livevars <program.yaml>",
	Short: "Run live-variable analysis on a method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		m, err := methodByRef(p, flagMethod)
		if err != nil {
			return err
		}
		c := cfg.New(m)
		result := dataflow.Solve[*livevars.Fact](livevars.New(), c)
		rep := report.BuildLiveVarsReport(c, result)
		if flagJSON {
			return report.WriteJSON(os.Stdout, rep)
		}
		report.WriteFacts(os.Stdout, rep)
		return nil
	},
}

var deadcodeCmd = &cobra.Command{
	Use:   "deadcode <program.yaml>",
	Short: "Detect dead code in a method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		m, err := methodByRef(p, flagMethod)
		if err != nil {
			return err
		}
		c := cfg.New(m)
		constants := dataflow.Solve[*constprop.Fact](constprop.New(), c)
		live := dataflow.Solve[*livevars.Fact](livevars.New(), c)
		dead := deadcode.Detect(c, constants, live)
		rep := report.BuildDeadCodeReport(m, dead)
		if flagJSON {
			return report.WriteJSON(os.Stdout, rep)
		}
		report.WriteDeadCode(os.Stdout, rep)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{constpropCmd, livevarsCmd, deadcodeCmd} {
		cmd.Flags().StringVarP(&flagMethod, "method", "m", "",
			"method to analyze as Class.method(types); defaults to main")
	}
}
