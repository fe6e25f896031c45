// Package commands provides the CLI commands for the pinpoint analyzer.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkellner/pinpoint/internal/analysis"
	"github.com/dkellner/pinpoint/internal/ir"
	"github.com/dkellner/pinpoint/internal/irload"
)

var (
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pinpoint",
	Short: "Whole-program static analysis over a typed OO IR",
	Long: `pinpoint runs data-flow, call-graph, points-to and taint analyses
over programs expressed in a typed object-oriented IR, loaded from YAML
program files.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		analysis.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(constpropCmd, livevarsCmd, deadcodeCmd, chaCmd, ptaCmd, intercpCmd, taintCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadProgram(path string) (*ir.Program, error) {
	p, err := irload.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	return p, nil
}

// methodByRef resolves "Class.subsignature" method references; an empty
// ref falls back to the program's main method.
func methodByRef(p *ir.Program, ref string) (*ir.Method, error) {
	if ref == "" {
		return p.Main, nil
	}
	class, subsig, ok := strings.Cut(ref, ".")
	if !ok {
		return nil, fmt.Errorf("bad method reference %q (want Class.method(types))", ref)
	}
	return p.MethodAt(class, subsig)
}
