package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/devworkflows/internal/compiler"
)

var compileCmd = &cobra.Command{
	Use:     "compile",
	Aliases: []string{"c"},
	Short:   "Compile .dwf rules into tool-specific config files",
	Long: `Compile the rules in .dwf/rules into the config file of every tool listed in
.dwf/config.yml. Files shared with hand-written content (CLAUDE.md, GEMINI.md,
copilot instructions) only have their dev-workflows block replaced.

When no rule is active, previously generated content is removed instead.

Examples:
  devw compile                  # Compile for all configured tools
  devw compile --tool claude    # Compile a single tool
  devw compile --dry-run        # Print the result without writing files
  devw compile --verbose        # Show every output and rule warning`,
	RunE: runCompile,
}

var (
	compileTool    string
	compileDryRun  bool
	compileVerbose bool
)

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileTool, "tool", "t", "", "Compile only a specific tool")
	compileCmd.Flags().BoolVar(&compileDryRun, "dry-run", false, "Show output without writing files")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "Show detailed output")
}

func runCompile(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	pipeline := compiler.New(env.logger)
	summary, err := pipeline.Run(commandContext(cmd), compiler.Options{
		Root:   env.root,
		Tool:   compileTool,
		DryRun: compileDryRun,
	})
	if err != nil {
		return err
	}

	printCompileSummary(cmd.OutOrStdout(), summary, compileDryRun, compileVerbose)

	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d output(s) failed to compile", len(failed))
	}
	return nil
}

func printCompileSummary(w io.Writer, summary *compiler.Summary, dryRun, verbose bool) {
	if verbose {
		for _, warning := range summary.RuleWarnings {
			fmt.Fprintf(w, "⚠ %v\n", warning)
		}
	}

	for _, r := range summary.Results {
		switch {
		case !r.Success:
			fmt.Fprintf(w, "✗ %s → %s: %v\n", r.BridgeID, r.OutputPath, r.Err)
		case dryRun:
			fmt.Fprintf(w, "── %s → %s ──\n%s\n", r.BridgeID, r.OutputPath, r.Content)
		case r.Cleaned:
			fmt.Fprintf(w, "✓ %s → %s (cleaned)\n", r.BridgeID, r.OutputPath)
		case verbose || summary.ActiveRuleCount > 0:
			fmt.Fprintf(w, "✓ %s → %s\n", r.BridgeID, r.OutputPath)
		}
	}

	verb := "Compiled"
	if dryRun {
		verb = "Rendered"
	}
	fmt.Fprintf(w, "%s %d active rule(s) for %d output(s) in %s\n",
		verb, summary.ActiveRuleCount, len(summary.Results), summary.Elapsed.Round(time.Microsecond))
	if verbose && summary.HashWritten {
		fmt.Fprintf(w, "Sync hash: %s\n", summary.Hash)
	}
}
