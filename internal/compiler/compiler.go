// Package compiler runs one compilation pass: it loads the project config and
// rules, renders them through every selected bridge, merges marker regions,
// writes the results using the configured mode and records the sync hash.
//
// Bridges are processed one after another. A failing or panicking bridge is
// reported in the Summary and never stops the others; configuration errors
// abort the run before anything is written.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/devworkflows/internal/bridge"
	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/logging"
	"github.com/conneroisu/devworkflows/internal/markers"
	"github.com/conneroisu/devworkflows/internal/rules"
	"github.com/conneroisu/devworkflows/internal/synchash"
)

// Options selects what a run does.
type Options struct {
	// Root is the project directory holding .dwf.
	Root string
	// Tool restricts the run to one configured tool id.
	Tool string
	// DryRun renders and merges but writes nothing.
	DryRun bool
}

// Result is the outcome for one (bridge, output path) pair.
type Result struct {
	BridgeID   string
	OutputPath string
	Success    bool
	// Content is what was (or, for dry runs, would be) written.
	Content string
	Err     error
	// Cleaned is set when the run removed generated content instead of writing it.
	Cleaned bool
}

// Summary aggregates a run.
type Summary struct {
	Results         []Result
	ActiveRuleCount int
	RuleWarnings    []error
	Hash            string
	HashWritten     bool
	Elapsed         time.Duration
}

// Failed returns the unsuccessful results.
func (s *Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// Pipeline compiles rules into bridge outputs.
type Pipeline struct {
	bridges []bridge.Bridge
	logger  logging.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBridges replaces the registered bridge set.
func WithBridges(bridges ...bridge.Bridge) Option {
	return func(p *Pipeline) {
		p.bridges = bridges
	}
}

// New creates a pipeline over every registered bridge.
func New(logger logging.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		bridges: bridge.All(),
		logger:  logger.WithComponent("compiler"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one compilation pass.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	cfg, err := rules.LoadConfig(opts.Root)
	if err != nil {
		return nil, err
	}

	tools, err := resolveTools(cfg, opts.Tool)
	if err != nil {
		return nil, err
	}

	set, err := rules.LoadRules(ctx, opts.Root, p.logger)
	if err != nil {
		return nil, err
	}

	active := rules.Active(set.Rules)
	summary := &Summary{
		ActiveRuleCount: len(active),
		RuleWarnings:    set.Warnings.GetAllErrors(),
		Hash:            synchash.Compute(set.Rules),
	}
	cleanup := len(active) == 0 && !opts.DryRun
	strategy := NewStrategy(opts.Root, cfg.Mode)

	for _, id := range tools {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		b, ok := bridge.Find(p.bridges, id)
		if !ok {
			p.logger.Warn(ctx, nil, "No bridge registered for tool, skipping", "tool", id)
			continue
		}

		job := &bridgeJob{
			pipeline: p,
			bridge:   b,
			root:     opts.Root,
			strategy: strategy,
			dryRun:   opts.DryRun,
		}
		var results []Result
		if cleanup {
			results = job.clean(ctx)
		} else {
			results = job.compile(ctx, set.Rules, cfg)
		}
		summary.Results = append(summary.Results, results...)
	}

	if !opts.DryRun && len(summary.Failed()) == 0 {
		if err := synchash.Write(opts.Root, summary.Hash); err != nil {
			return summary, err
		}
		summary.HashWritten = true
	}

	summary.Elapsed = time.Since(start)
	p.logger.Debug(ctx, "Compilation finished",
		"results", len(summary.Results),
		"failed", len(summary.Failed()),
		"active_rules", summary.ActiveRuleCount,
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

// resolveTools returns the configured tools, or only tool when one was
// requested. A requested tool absent from the config is a config error.
func resolveTools(cfg *rules.ProjectConfig, tool string) ([]string, error) {
	if tool == "" {
		return cfg.Tools, nil
	}
	if !cfg.HasTool(tool) {
		return nil, dwferrors.ErrToolNotConfigured(tool, cfg.Tools)
	}
	return []string{tool}, nil
}

// bridgeJob processes one bridge within a run.
type bridgeJob struct {
	pipeline *Pipeline
	bridge   bridge.Bridge
	root     string
	strategy Strategy
	dryRun   bool
}

func (j *bridgeJob) compile(ctx context.Context, rs []rules.Rule, cfg *rules.ProjectConfig) (results []Result) {
	defer j.recoverPanic(ctx, &results)

	outputs, err := j.bridge.Compile(rs, cfg)
	if err != nil {
		return j.failAll(ctx, dwferrors.NewBridgeError(j.bridge.ID(), "compile failed", err))
	}

	for _, out := range outputs {
		results = append(results, j.write(ctx, out))
	}
	return results
}

func (j *bridgeJob) write(ctx context.Context, out bridge.Output) Result {
	result := Result{BridgeID: j.bridge.ID(), OutputPath: out.Path}

	content, err := j.render(ctx, out)
	if err != nil {
		return j.fail(ctx, result, err)
	}
	result.Content = content

	if !j.dryRun {
		if err := j.strategy.Write(out.Path, content); err != nil {
			return j.fail(ctx, result, err)
		}
	}

	result.Success = true
	return result
}

// render merges out into the existing destination for marker bridges.
func (j *bridgeJob) render(ctx context.Context, out bridge.Output) (string, error) {
	if !j.bridge.UsesMarkers() {
		return out.Content, nil
	}

	existing, found, err := readFile(filepath.Join(j.root, out.Path))
	if err != nil {
		return "", err
	}
	if !found {
		return markers.Wrap(out.Content), nil
	}
	if markers.Inspect(existing) == markers.StateUnmatched {
		j.pipeline.logger.Warn(ctx, nil, "Unmatched dev-workflows marker, appending a new block",
			"tool", j.bridge.ID(), "path", out.Path)
	}
	return markers.Merge(existing, out.Content), nil
}

// clean strips generated content from every declared path.
func (j *bridgeJob) clean(ctx context.Context) (results []Result) {
	defer j.recoverPanic(ctx, &results)

	for _, path := range j.bridge.OutputPaths() {
		result := Result{BridgeID: j.bridge.ID(), OutputPath: path}
		cleaned, err := j.cleanPath(path)
		if err != nil {
			results = append(results, j.fail(ctx, result, err))
			continue
		}
		result.Success = true
		result.Cleaned = cleaned
		results = append(results, result)
	}
	return results
}

func (j *bridgeJob) cleanPath(path string) (bool, error) {
	dest := filepath.Join(j.root, path)
	existing, found, err := readFile(dest)
	if err != nil {
		return false, err
	}
	if !found {
		// A link whose cache mirror is gone reads as missing but still
		// occupies the destination.
		if info, err := os.Lstat(dest); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return true, j.strategy.Remove(path)
		}
		return false, nil
	}

	if !j.bridge.UsesMarkers() {
		return true, j.strategy.Remove(path)
	}

	if markers.Inspect(existing) != markers.StatePaired {
		return false, nil
	}
	rest := markers.Remove(existing)
	if strings.TrimSpace(rest) == "" {
		return true, j.strategy.Remove(path)
	}
	return true, j.strategy.Write(path, rest+"\n")
}

// recoverPanic turns a panic inside a bridge into failed results for all of its
// declared paths.
func (j *bridgeJob) recoverPanic(ctx context.Context, results *[]Result) {
	if r := recover(); r != nil {
		*results = j.failAll(ctx, dwferrors.NewBridgeError(j.bridge.ID(), "bridge panicked", fmt.Errorf("%v", r)))
	}
}

func (j *bridgeJob) failAll(ctx context.Context, err error) []Result {
	paths := j.bridge.OutputPaths()
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, j.fail(ctx, Result{BridgeID: j.bridge.ID(), OutputPath: path}, err))
	}
	return results
}

func (j *bridgeJob) fail(ctx context.Context, result Result, err error) Result {
	if !dwferrors.IsBridgeError(err) {
		err = dwferrors.NewBridgeError(j.bridge.ID(), "failed to process output", err).WithPath(result.OutputPath)
	}
	j.pipeline.logger.Error(ctx, err, "Bridge failed", "tool", j.bridge.ID(), "path", result.OutputPath)
	result.Success = false
	result.Err = err
	return result
}
