package bridge

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/devworkflows/internal/rules"
)

func makeRule(id, scope, content string) rules.Rule {
	return rules.Rule{
		ID:       id,
		Scope:    scope,
		Severity: rules.SeverityError,
		Content:  content,
		Enabled:  true,
	}
}

var testConfig = &rules.ProjectConfig{
	Version: "0.1",
	Project: rules.Project{Name: "test"},
	Tools:   []string{"claude", "cursor", "gemini", "windsurf", "copilot"},
	Mode:    rules.ModeCopy,
}

func compileOne(t *testing.T, b Bridge, rs []rules.Rule) string {
	t.Helper()
	out, err := b.Compile(rs, testConfig)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, b.OutputPaths()[0], out[0].Path)
	return out[0].Content
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"claude", "cursor", "gemini", "windsurf", "copilot"}, IDs())
	assert.Len(t, All(), 5)

	b, ok := Lookup("copilot")
	require.True(t, ok)
	assert.Equal(t, "copilot", b.ID())

	_, ok = Lookup("vscode")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0] = nil
	b, ok := Lookup("claude")
	require.True(t, ok)
	assert.NotNil(t, b)
}

func TestDescriptors(t *testing.T) {
	testCases := []struct {
		id      string
		path    string
		markers bool
		limit   int
	}{
		{"claude", "CLAUDE.md", true, 0},
		{"cursor", ".cursor/rules/devworkflows.mdc", false, 0},
		{"gemini", "GEMINI.md", true, 0},
		{"windsurf", ".windsurf/rules/devworkflows.md", false, WindsurfCharLimit},
		{"copilot", ".github/copilot-instructions.md", true, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			b, ok := Lookup(tc.id)
			require.True(t, ok)
			assert.Equal(t, []string{tc.path}, b.OutputPaths())
			assert.Equal(t, tc.markers, b.UsesMarkers())
			assert.Equal(t, tc.limit, CharLimit(b))
		})
	}
}

func TestMarkdownRendering(t *testing.T) {
	content := compileOne(t, Claude, []rules.Rule{
		makeRule("named-exports", "architecture", "Always use named exports."),
	})

	expected := "# Project Rules\n\n## Architecture\n\n- Always use named exports.\n"
	assert.Equal(t, expected, content)
}

func TestMultilineContentIsIndented(t *testing.T) {
	content := compileOne(t, Gemini, []rules.Rule{
		makeRule("layers", "architecture", "Keep layers separate.\nDomain never imports infra."),
	})

	assert.Contains(t, content, "- Keep layers separate.\n  Domain never imports infra.\n")
}

func TestScopeOrdering(t *testing.T) {
	content := compileOne(t, Copilot, []rules.Rule{
		makeRule("rule-z", "team:payments", "No raw SQL."),
		makeRule("rule-y", "agent:reviewer", "Be kind."),
		makeRule("rule-a", "architecture", "Named exports."),
		makeRule("rule-b", "conventions", "Kebab case."),
	})

	archIndex := strings.Index(content, "## Architecture")
	convIndex := strings.Index(content, "## Conventions")
	agentIndex := strings.Index(content, "## agent:reviewer")
	teamIndex := strings.Index(content, "## team:payments")

	require.True(t, archIndex >= 0 && convIndex >= 0 && agentIndex >= 0 && teamIndex >= 0)
	assert.Less(t, archIndex, convIndex)
	assert.Less(t, convIndex, agentIndex)
	assert.Less(t, agentIndex, teamIndex)
	assert.NotContains(t, content, "## Team:payments")
}

func TestInactiveRulesAreFiltered(t *testing.T) {
	info := makeRule("rule-b", "architecture", "Skip info.")
	info.Severity = rules.SeverityInfo
	disabled := makeRule("rule-c", "architecture", "Skip disabled.")
	disabled.Enabled = false

	for _, b := range All() {
		t.Run(b.ID(), func(t *testing.T) {
			content := compileOne(t, b, []rules.Rule{
				makeRule("rule-a", "architecture", "Keep this."),
				info,
				disabled,
			})
			assert.Contains(t, content, "Keep this.")
			assert.NotContains(t, content, "Skip info.")
			assert.NotContains(t, content, "Skip disabled.")
		})
	}
}

func TestCursorFrontmatter(t *testing.T) {
	content := compileOne(t, Cursor, []rules.Rule{makeRule("a", "security", "No secrets in code.")})

	require.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "description: Project rules for test, compiled by dev-workflows\nalwaysApply: true\n---\n\n# Project Rules\n")
	assert.Contains(t, content, "## Security")
	assert.Less(t, strings.Index(content, "description:"), strings.Index(content, "alwaysApply:"))
}

func TestCursorFrontmatterWithoutProjectName(t *testing.T) {
	out, err := Cursor.Compile(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out[0].Content, "description: Project rules compiled by dev-workflows")
}

func TestWindsurfUnderLimitIsUnchanged(t *testing.T) {
	rs := []rules.Rule{makeRule("a", "architecture", "Short rule.")}
	assert.Equal(t, renderMarkdown(rs), compileOne(t, Windsurf, rs))
}

func TestWindsurfDropsRulesToFitLimit(t *testing.T) {
	var rs []rules.Rule
	for i := 0; i < 10; i++ {
		r := makeRule(fmt.Sprintf("err-%d", i), "architecture", fmt.Sprintf("Error rule %d %s", i, strings.Repeat("x", 40)))
		rs = append(rs, r)
	}
	warn := makeRule("warn-0", "architecture", "Warning rule "+strings.Repeat("y", 40))
	warn.Severity = rules.SeverityWarning
	rs = append([]rules.Rule{warn}, rs...)

	b := windsurfBridge{limit: 400}
	out, err := b.Compile(rs, testConfig)
	require.NoError(t, err)
	content := out[0].Content

	assert.LessOrEqual(t, utf8.RuneCountInString(content), 400)
	assert.NotContains(t, content, "Warning rule", "warnings are dropped first")
	assert.Contains(t, content, "Error rule 0", "earlier error rules are kept")
	assert.Contains(t, content, "omitted: Windsurf 400 character limit")
}

func TestRenderRuleSingleLine(t *testing.T) {
	assert.Equal(t, []string{"", "- only"}, renderRule(makeRule("x", "testing", "only")))
}
