// Package bridge renders the canonical rule set into the native configuration
// files of each supported AI coding assistant.
//
// The set of bridges is closed and fixed at build time: All returns every
// bridge and Lookup resolves one by its tool id. Bridges are stateless and
// their Compile methods are pure; writing the results is the compiler's job.
//
// Bridges that own files users are expected to edit by hand (CLAUDE.md,
// GEMINI.md, copilot instructions) report UsesMarkers so the compiler merges
// the output into a marker region. Bridges that own their whole output file
// (cursor, windsurf) overwrite it.
package bridge

import (
	"slices"
	"strings"

	"github.com/conneroisu/devworkflows/internal/rules"
)

// Output is one rendered file, keyed by its path relative to the project root.
type Output struct {
	Path    string
	Content string
}

// Bridge converts rules into one tool's configuration files.
type Bridge interface {
	// ID is the tool id used in config.yml.
	ID() string
	// OutputPaths lists every path Compile may produce, relative to the root.
	OutputPaths() []string
	// UsesMarkers reports whether outputs are merged into a marker region.
	UsesMarkers() bool
	// Compile renders the active subset of rules. It performs no I/O.
	Compile(rs []rules.Rule, cfg *rules.ProjectConfig) ([]Output, error)
}

var registry = []Bridge{
	Claude,
	Cursor,
	Gemini,
	Windsurf,
	Copilot,
}

// All returns every registered bridge in canonical order.
func All() []Bridge {
	return slices.Clone(registry)
}

// IDs returns the ids of all registered bridges.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, b := range registry {
		ids[i] = b.ID()
	}
	return ids
}

// Lookup returns the bridge registered for id.
func Lookup(id string) (Bridge, bool) {
	return find(registry, id)
}

func find(bridges []Bridge, id string) (Bridge, bool) {
	for _, b := range bridges {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

// Find resolves id within an explicit bridge list.
func Find(bridges []Bridge, id string) (Bridge, bool) {
	return find(bridges, id)
}

// Limited is implemented by bridges whose target caps the output size.
type Limited interface {
	CharLimit() int
}

// CharLimit returns the output ceiling of b, or 0 when it has none.
func CharLimit(b Bridge) int {
	if l, ok := b.(Limited); ok {
		return l.CharLimit()
	}
	return 0
}

// RenderMarkdown renders the active subset of rs as the shared markdown
// document, without any per-bridge framing or size limit.
func RenderMarkdown(rs []rules.Rule) string {
	return renderMarkdown(rules.Active(rs))
}

// renderMarkdown renders active rules as a "# Project Rules" document with one
// section per scope. Each rule's first line becomes a bullet and continuation
// lines are indented under it.
func renderMarkdown(active []rules.Rule) string {
	lines := []string{"# Project Rules"}

	for _, group := range rules.GroupByScope(active) {
		lines = append(lines, "", "## "+rules.ScopeHeading(group.Scope))
		for _, r := range group.Rules {
			lines = append(lines, renderRule(r)...)
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderRule(r rules.Rule) []string {
	contentLines := strings.Split(r.Content, "\n")
	out := make([]string, 0, len(contentLines)+1)
	out = append(out, "", "- "+contentLines[0])
	for _, line := range contentLines[1:] {
		out = append(out, "  "+line)
	}
	return out
}
