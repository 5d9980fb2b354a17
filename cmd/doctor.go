package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/devworkflows/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the project's rules and generated files for problems",
	Long: `Run diagnostics against .dwf/ and the generated outputs without changing
anything: config and rule validity, duplicate ids, scope format, bridge
availability, link-mode symlinks and whether outputs are in sync with rules.

Exits with status 1 when any check fails.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	checks := doctor.RunAll(commandContext(cmd), env.root, env.logger)
	printChecks(cmd.OutOrStdout(), checks)

	if doctor.Failed(checks) {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

func printChecks(w io.Writer, checks []doctor.Check) {
	failed := 0
	for _, c := range checks {
		mark := "✓"
		switch {
		case c.Skipped:
			mark = "-"
		case !c.Passed:
			mark = "✗"
			failed++
		}
		fmt.Fprintf(w, "%s %s: %s\n", mark, c.Name, c.Message)
	}

	if failed == 0 {
		fmt.Fprintln(w, "\nAll checks passed")
		return
	}
	fmt.Fprintf(w, "\n%d of %d checks failed\n", failed, len(checks))
}
