package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/logging"
)

const validConfig = `version: "0.1"
project:
  name: "test-project"
  description: "fixture"
tools:
  - claude
  - cursor
mode: copy
blocks: []
`

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		check       func(t *testing.T, cfg *ProjectConfig)
	}{
		{
			name:  "valid config",
			input: validConfig,
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, "0.1", cfg.Version)
				assert.Equal(t, "test-project", cfg.Project.Name)
				assert.Equal(t, "fixture", cfg.Project.Description)
				assert.Equal(t, []string{"claude", "cursor"}, cfg.Tools)
				assert.Equal(t, ModeCopy, cfg.Mode)
				assert.Empty(t, cfg.Blocks)
			},
		},
		{
			name:  "link mode and externally owned fields",
			input: "tools: [claude]\nmode: link\nblocks: [typescript-strict]\npulled:\n  - path: a/b\n    version: \"1\"\n  - version: \"2\"\nassets:\n  - type: command\n    name: review\n",
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, ModeLink, cfg.Mode)
				assert.Equal(t, "0.1", cfg.Version)
				assert.Equal(t, []string{"typescript-strict"}, cfg.Blocks)
				require.Len(t, cfg.Pulled, 1)
				assert.Equal(t, "a/b", cfg.Pulled[0].Path)
				require.Len(t, cfg.Assets, 1)
				assert.Equal(t, "review", cfg.Assets[0].Name)
			},
		},
		{
			name:  "non-string tools are dropped",
			input: "tools: [claude, 3, cursor]\nmode: copy\n",
			check: func(t *testing.T, cfg *ProjectConfig) {
				assert.Equal(t, []string{"claude", "cursor"}, cfg.Tools)
			},
		},
		{name: "scalar root", input: "just a string", expectError: true},
		{name: "empty document", input: "", expectError: true},
		{name: "tools not a list", input: "tools: claude\nmode: copy\n", expectError: true},
		{name: "missing mode", input: "tools: [claude]\n", expectError: true},
		{name: "invalid mode", input: "tools: [claude]\nmode: symlink\n", expectError: true},
		{name: "broken yaml", input: ":\ninvalid: [yaml: {broken", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.input))
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, dwferrors.IsConfigError(err))
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.True(t, dwferrors.IsConfigError(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name  string
		raw   interface{}
		issue RecordIssue
		check func(t *testing.T, r Rule)
	}{
		{
			name:  "defaults",
			raw:   map[string]interface{}{"id": "a", "content": "Do it.\n\n"},
			issue: IssueNone,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, "a", r.ID)
				assert.Equal(t, "conventions", r.Scope)
				assert.Equal(t, SeverityError, r.Severity)
				assert.Equal(t, "Do it.", r.Content)
				assert.True(t, r.Enabled)
			},
		},
		{
			name: "explicit fields",
			raw: map[string]interface{}{
				"id": "b", "content": "X", "severity": "info", "enabled": false,
				"tags": []interface{}{"ts", 1}, "sourceBlock": "blk", "source": "registry",
			},
			issue: IssueNone,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, SeverityInfo, r.Severity)
				assert.False(t, r.Enabled)
				assert.Equal(t, []string{"ts"}, r.Tags)
				assert.Equal(t, "blk", r.SourceBlock)
				assert.Equal(t, "registry", r.Source)
			},
		},
		{
			name:  "numeric id",
			raw:   map[string]interface{}{"id": 42, "content": "x"},
			issue: IssueNone,
			check: func(t *testing.T, r Rule) { assert.Equal(t, "42", r.ID) },
		},
		{
			name:  "float id",
			raw:   map[string]interface{}{"id": 1.5, "content": "x"},
			issue: IssueNone,
			check: func(t *testing.T, r Rule) { assert.Equal(t, "1.5", r.ID) },
		},
		{name: "zero id", raw: map[string]interface{}{"id": 0, "content": "x"}, issue: IssueMissingID},
		{name: "boolean id", raw: map[string]interface{}{"id": true, "content": "x"}, issue: IssueMissingID},
		{name: "not a mapping", raw: "oops", issue: IssueNotMapping},
		{name: "missing id", raw: map[string]interface{}{"content": "x"}, issue: IssueMissingID},
		{name: "missing content", raw: map[string]interface{}{"id": "x"}, issue: IssueMissingContent},
		{name: "bad severity", raw: map[string]interface{}{"id": "x", "content": "y", "severity": "critical"}, issue: IssueInvalidSeverity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, issue := ParseRecord(tt.raw, "conventions")
			assert.Equal(t, tt.issue, issue)
			if tt.check != nil {
				tt.check(t, rule)
			}
		})
	}
}

func TestLoadRules(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, ".dwf/rules/conventions.yml", `scope: conventions
rules:
  - id: named-exports
    severity: error
    content: Always use named exports.
  - id: no-barrel
    severity: warning
    content: Avoid barrel files.
  - id: missing-content
  - id: bad
    severity: critical
    content: nope
`)
	writeProjectFile(t, root, ".dwf/rules/architecture.yaml", `rules:
  - id: layers
    content: |
      Keep layers separate.
      Domain never imports infra.
`)
	writeProjectFile(t, root, ".dwf/rules/bad-scope.yml", `scope: Team:Payments
rules:
  - id: skipped
    content: never loaded
`)
	writeProjectFile(t, root, ".dwf/rules/notes.txt", "ignored")

	set, err := LoadRules(context.Background(), root, logging.NewNop())
	require.NoError(t, err)

	require.Len(t, set.Rules, 3)
	assert.Equal(t, "layers", set.Rules[0].ID)
	assert.Equal(t, "architecture", set.Rules[0].Scope, "scope derived from file name")
	assert.Equal(t, "Keep layers separate.\nDomain never imports infra.", set.Rules[0].Content)
	assert.Equal(t, "named-exports", set.Rules[1].ID)
	assert.Equal(t, "no-barrel", set.Rules[2].ID)

	assert.Len(t, set.Files, 3)
	assert.Len(t, set.Warnings.GetAllErrors(), 3, "two dropped records and one skipped file")
}

func TestLoadRulesMissingDirectory(t *testing.T) {
	set, err := LoadRules(context.Background(), t.TempDir(), logging.NewNop())
	require.NoError(t, err)
	assert.Empty(t, set.Rules)
}

func TestLoadRulesSyntaxErrorIsFatal(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, ".dwf/rules/bad.yml", ":\ninvalid: [yaml: {broken")

	_, err := LoadRules(context.Background(), root, logging.NewNop())
	require.Error(t, err)
	assert.True(t, dwferrors.IsConfigError(err))
	assert.Contains(t, err.Error(), "bad.yml")
}

func TestValidScope(t *testing.T) {
	testCases := []struct {
		scope    string
		expected bool
	}{
		{"architecture", true},
		{"team:payments", true},
		{"agent:code-reviewer", true},
		{"pipeline:ci", true},
		{"v2", true},
		{"Team:payments", false},
		{":bad", false},
		{"team:", false},
		{"team:9lives", false},
		{"a:b:c", false},
		{"", false},
		{"kebab-case", false},
	}

	for _, tc := range testCases {
		t.Run(tc.scope, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidScope(tc.scope))
		})
	}
}

func TestActive(t *testing.T) {
	in := []Rule{
		{ID: "a", Severity: SeverityError, Enabled: true},
		{ID: "b", Severity: SeverityInfo, Enabled: true},
		{ID: "c", Severity: SeverityWarning, Enabled: false},
		{ID: "d", Severity: SeverityWarning, Enabled: true},
	}

	active := Active(in)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "d", active[1].ID)
}

func TestGroupByScope(t *testing.T) {
	in := []Rule{
		{ID: "1", Scope: "team:payments"},
		{ID: "2", Scope: "testing"},
		{ID: "3", Scope: "agent:reviewer"},
		{ID: "4", Scope: "architecture"},
		{ID: "5", Scope: "testing"},
	}

	groups := GroupByScope(in)
	var scopes []string
	for _, g := range groups {
		scopes = append(scopes, g.Scope)
	}

	assert.Equal(t, []string{"architecture", "testing", "agent:reviewer", "team:payments"}, scopes)
	require.Len(t, groups[1].Rules, 2)
	assert.Equal(t, "2", groups[1].Rules[0].ID)
	assert.Equal(t, "5", groups[1].Rules[1].ID)
}

func TestScopeHeading(t *testing.T) {
	assert.Equal(t, "Architecture", ScopeHeading("architecture"))
	assert.Equal(t, "Workflow", ScopeHeading("workflow"))
	assert.Equal(t, "team:payments", ScopeHeading("team:payments"))
}

func TestHasTool(t *testing.T) {
	cfg := &ProjectConfig{Tools: []string{"claude", "gemini"}}
	assert.True(t, cfg.HasTool("gemini"))
	assert.False(t, cfg.HasTool("cursor"))
}
