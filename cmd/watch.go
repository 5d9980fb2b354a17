package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/devworkflows/internal/compiler"
	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/rules"
	"github.com/conneroisu/devworkflows/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Recompile whenever rules change",
	Long: `Watch .dwf/ for changes to rules, config and assets and recompile after each
burst of edits. A failed compile is reported and watching continues.

Examples:
  devw watch                    # Watch and compile all configured tools
  devw watch --tool cursor      # Watch and compile a single tool
  DWF_WATCH_DEBOUNCE=500ms devw watch`,
	RunE: runWatch,
}

var watchTool string

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchTool, "tool", "t", "", "Compile only a specific tool")
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	// Fail fast on a bad config or --tool before watching anything.
	cfg, err := rules.LoadConfig(env.root)
	if err != nil {
		return err
	}
	if watchTool != "" && !cfg.HasTool(watchTool) {
		return dwferrors.ErrToolNotConfigured(watchTool, cfg.Tools)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	pipeline := compiler.New(env.logger)
	loop := &watcher.Loop{
		Dir:    env.root,
		Delay:  env.settings.Watch.Debounce,
		Logger: env.logger,
		Compile: func(ctx context.Context) error {
			summary, err := pipeline.Run(ctx, compiler.Options{Root: env.root, Tool: watchTool})
			if err != nil {
				return err
			}
			printCompileSummary(out, summary, false, false)
			if failed := summary.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d output(s) failed to compile", len(failed))
			}
			return nil
		},
	}

	fmt.Fprintln(out, "👀 Watching .dwf for changes... (Press Ctrl+C to stop)")
	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("failed to watch %s: %w", env.root, err)
	}
	fmt.Fprintln(out, "🛑 Stopped watching")
	return nil
}
