// Package testutils holds fixtures shared by package tests: throwaway
// projects with a .dwf directory and sample rule sets.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/devworkflows/internal/rules"
)

// StandardConfig is a config.yml for a copy-mode project using two tools.
const StandardConfig = `version: "0.1"
project:
  name: "test-project"
tools:
  - claude
  - cursor
mode: copy
blocks: []
`

// StandardRuleFiles provides rule files keyed by file name.
var StandardRuleFiles = map[string]string{
	"architecture.yml": `scope: architecture
rules:
  - id: named-exports
    severity: error
    content: Always use named exports.
  - id: layers
    severity: warning
    content: |
      Keep layers separate.
      Domain code never imports infrastructure.
`,
	"security.yml": `scope: security
rules:
  - id: no-secrets
    content: Never commit secrets.
  - id: threat-model
    severity: info
    content: Consider a threat model for new endpoints.
`,
	"payments.yml": `scope: team:payments
rules:
  - id: money-type
    content: Represent money with the Money type.
  - id: legacy-sql
    enabled: false
    content: Raw SQL is allowed in reports.
`,
}

// CreateTempProject creates a temporary project with an empty .dwf/rules
// directory and, when config is non-empty, a .dwf/config.yml.
func CreateTempProject(t *testing.T, config string) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(rules.RulesPath(root), 0755))
	if config != "" {
		WriteConfig(t, root, config)
	}

	return root
}

// WriteConfig replaces the project's config.yml.
func WriteConfig(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(rules.ConfigPath(root), []byte(content), 0644))
}

// CreateTestRuleFile writes a rule file into .dwf/rules and returns its path.
func CreateTestRuleFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(rules.RulesPath(root), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadFile returns the content of a file relative to root.
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(root, rel))
	require.NoError(t, err)
	return string(raw)
}

// CreateTestRules returns an in-memory rule set mixing built-in and custom
// scopes with one rule of every kind that compiles out.
func CreateTestRules() []rules.Rule {
	return []rules.Rule{
		{ID: "named-exports", Scope: "architecture", Severity: rules.SeverityError, Content: "Always use named exports.", Enabled: true},
		{ID: "layers", Scope: "architecture", Severity: rules.SeverityWarning, Content: "Keep layers separate.", Enabled: true},
		{ID: "no-secrets", Scope: "security", Severity: rules.SeverityError, Content: "Never commit secrets.", Enabled: true},
		{ID: "threat-model", Scope: "security", Severity: rules.SeverityInfo, Content: "Consider a threat model.", Enabled: true},
		{ID: "money-type", Scope: "team:payments", Severity: rules.SeverityError, Content: "Represent money with the Money type.", Enabled: true},
		{ID: "legacy-sql", Scope: "team:payments", Severity: rules.SeverityError, Content: "Raw SQL is allowed in reports.", Enabled: false},
	}
}
