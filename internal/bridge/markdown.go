package bridge

import (
	"github.com/conneroisu/devworkflows/internal/rules"
)

// markdownBridge writes the shared markdown document to a single file that
// users also edit, so it always uses markers.
type markdownBridge struct {
	id   string
	path string
}

var (
	// Claude writes CLAUDE.md.
	Claude Bridge = markdownBridge{id: "claude", path: "CLAUDE.md"}
	// Gemini writes GEMINI.md.
	Gemini Bridge = markdownBridge{id: "gemini", path: "GEMINI.md"}
	// Copilot writes the GitHub Copilot repository instructions.
	Copilot Bridge = markdownBridge{id: "copilot", path: ".github/copilot-instructions.md"}
)

func (b markdownBridge) ID() string            { return b.id }
func (b markdownBridge) OutputPaths() []string { return []string{b.path} }
func (b markdownBridge) UsesMarkers() bool     { return true }

func (b markdownBridge) Compile(rs []rules.Rule, _ *rules.ProjectConfig) ([]Output, error) {
	return []Output{{Path: b.path, Content: renderMarkdown(rules.Active(rs))}}, nil
}
