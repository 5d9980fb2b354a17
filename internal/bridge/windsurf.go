package bridge

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/conneroisu/devworkflows/internal/rules"
)

const (
	windsurfPath = ".windsurf/rules/devworkflows.md"

	// WindsurfCharLimit is the largest rule file Windsurf loads in full.
	WindsurfCharLimit = 6000
)

// windsurfBridge writes a Windsurf workspace rule. Windsurf truncates rule
// files above its character ceiling, so whole rules are dropped instead,
// warnings before errors and later rules before earlier ones.
type windsurfBridge struct {
	limit int
}

// Windsurf writes .windsurf/rules/devworkflows.md.
var Windsurf Bridge = windsurfBridge{limit: WindsurfCharLimit}

func (windsurfBridge) ID() string            { return "windsurf" }
func (windsurfBridge) OutputPaths() []string { return []string{windsurfPath} }
func (windsurfBridge) UsesMarkers() bool     { return false }
func (b windsurfBridge) CharLimit() int      { return b.limit }

func (b windsurfBridge) Compile(rs []rules.Rule, _ *rules.ProjectConfig) ([]Output, error) {
	return []Output{{Path: windsurfPath, Content: b.fit(rules.Active(rs))}}, nil
}

func (b windsurfBridge) fit(active []rules.Rule) string {
	content := renderMarkdown(active)
	if b.limit <= 0 || utf8.RuneCountInString(content) <= b.limit {
		return content
	}

	kept := slices.Clone(active)
	for omitted := 1; len(kept) > 0; omitted++ {
		kept = dropOne(kept)
		content = renderMarkdown(kept) + b.omissionNote(omitted)
		if utf8.RuneCountInString(content) <= b.limit {
			return content
		}
	}
	return content
}

// dropOne removes the last warning rule, or the last rule when no warnings
// remain.
func dropOne(rs []rules.Rule) []rules.Rule {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].Severity == rules.SeverityWarning {
			return slices.Delete(rs, i, i+1)
		}
	}
	return rs[:len(rs)-1]
}

func (b windsurfBridge) omissionNote(n int) string {
	return fmt.Sprintf("\n<!-- %d rule(s) omitted: Windsurf %d character limit -->\n", n, b.limit)
}
