package cmd

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/conneroisu/devworkflows/internal/bridge"
	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/rules"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Show what each configured tool will receive and why",
	Long: `Explain, per configured tool, where its output goes, how it is written and
which rules are included or excluded. Tools with an output size limit also
report how close the rendered rules come to it.

Examples:
  devw explain                  # Explain every configured tool
  devw explain --tool windsurf  # Explain a single tool`,
	RunE: runExplain,
}

var explainTool string

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringVarP(&explainTool, "tool", "t", "", "Explain only a specific tool")
}

func runExplain(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	cfg, err := rules.LoadConfig(env.root)
	if err != nil {
		return err
	}

	tools := cfg.Tools
	if explainTool != "" {
		if !cfg.HasTool(explainTool) {
			return dwferrors.ErrToolNotConfigured(explainTool, cfg.Tools)
		}
		tools = []string{explainTool}
	}

	set, err := rules.LoadRules(commandContext(cmd), env.root, env.logger)
	if err != nil {
		return err
	}

	writeExplain(cmd.OutOrStdout(), cfg, tools, set.Rules)
	return nil
}

func writeExplain(w io.Writer, cfg *rules.ProjectConfig, tools []string, rs []rules.Rule) {
	p := message.NewPrinter(language.English)
	active := rules.Active(rs)
	groups := rules.GroupByScope(active)

	for _, tool := range tools {
		b, ok := bridge.Lookup(tool)
		if !ok {
			fmt.Fprintf(w, "═══ %s ═══\nNo bridge available, skipped by compile\n\n", tool)
			continue
		}

		fmt.Fprintf(w, "═══ %s ═══\n", tool)
		for _, path := range b.OutputPaths() {
			fmt.Fprintf(w, "Output: %s\n", path)
		}
		fmt.Fprintf(w, "Mode: %s\n", modeLabel(cfg.Mode, b))

		fmt.Fprintf(w, "Rules included: %d\n", len(active))
		for _, g := range groups {
			fmt.Fprintf(w, "  %s: %d rules\n", g.Scope, len(g.Rules))
		}

		if excluded := len(rs) - len(active); excluded > 0 {
			fmt.Fprintf(w, "Rules excluded: %d\n", excluded)
			for _, r := range rs {
				switch {
				case r.Severity == rules.SeverityInfo:
					fmt.Fprintf(w, "  - [info] %s (severity: info → excluded from output)\n", r.ID)
				case !r.Enabled:
					fmt.Fprintf(w, "  - [disabled] %s (enabled: false)\n", r.ID)
				}
			}
		}

		if limit := bridge.CharLimit(b); limit > 0 {
			size := utf8.RuneCountInString(bridge.RenderMarkdown(rs))
			if size > limit {
				p.Fprintf(w, "⚠ Output size: %d / %d chars (%s limit), trailing rules will be omitted\n", size, limit, b.ID())
			} else {
				p.Fprintf(w, "Output size: %d / %d chars (%s limit)\n", size, limit, b.ID())
			}
		}

		fmt.Fprintln(w)
	}
}

func modeLabel(mode rules.Mode, b bridge.Bridge) string {
	if b.UsesMarkers() {
		return fmt.Sprintf("%s (with BEGIN/END markers)", mode)
	}
	return fmt.Sprintf("%s (full file, no markers)", mode)
}
