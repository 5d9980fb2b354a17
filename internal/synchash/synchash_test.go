package synchash

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/devworkflows/internal/rules"
)

func makeRule(id, content string) rules.Rule {
	return rules.Rule{
		ID:       id,
		Scope:    "architecture",
		Severity: rules.SeverityError,
		Content:  content,
		Enabled:  true,
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := []rules.Rule{makeRule("a", "one"), makeRule("b", "two")}

	assert.Equal(t, Compute(in), Compute(in))
	assert.Len(t, Compute(in), 64)
}

func TestComputeIsOrderIndependent(t *testing.T) {
	a := makeRule("a", "content a")
	b := makeRule("b", "content b")
	c := makeRule("c", "content c")

	want := Compute([]rules.Rule{a, b, c})
	assert.Equal(t, want, Compute([]rules.Rule{c, a, b}))
	assert.Equal(t, want, Compute([]rules.Rule{b, c, a}))
}

func TestComputeDetectsDrift(t *testing.T) {
	base := []rules.Rule{makeRule("a", "original"), makeRule("b", "other")}
	baseHash := Compute(base)

	testCases := []struct {
		name    string
		mutate  func(r *rules.Rule)
		changes bool
	}{
		{"content", func(r *rules.Rule) { r.Content = "modified" }, true},
		{"id", func(r *rules.Rule) { r.ID = "renamed" }, true},
		{"severity", func(r *rules.Rule) { r.Severity = rules.SeverityWarning }, true},
		{"scope", func(r *rules.Rule) { r.Scope = "security" }, true},
		{"tags only", func(r *rules.Rule) { r.Tags = []string{"x"} }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mutated := append([]rules.Rule(nil), base...)
			tc.mutate(&mutated[0])
			if tc.changes {
				assert.NotEqual(t, baseHash, Compute(mutated))
			} else {
				assert.Equal(t, baseHash, Compute(mutated))
			}
		})
	}
}

func TestComputeIgnoresInactiveRules(t *testing.T) {
	active := makeRule("a", "kept")
	disabled := makeRule("b", "disabled v1")
	disabled.Enabled = false
	info := makeRule("c", "info v1")
	info.Severity = rules.SeverityInfo

	before := Compute([]rules.Rule{active, disabled, info})

	disabled.Content = "disabled v2"
	info.Content = "info v2"
	after := Compute([]rules.Rule{active, disabled, info})

	assert.Equal(t, before, after)
	assert.Equal(t, Compute([]rules.Rule{active}), after)
}

func TestComputeFieldBoundaries(t *testing.T) {
	x := makeRule("ab", "c")
	y := makeRule("a", "bc")
	assert.NotEqual(t, Compute([]rules.Rule{x}), Compute([]rules.Rule{y}))
}

func TestWriteAndRead(t *testing.T) {
	root := t.TempDir()

	_, found, err := Read(root)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, Write(root, "abc123"))

	got, found, err := Read(root)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc123", got)

	_, err = os.Stat(filepath.Join(root, ".dwf", ".cache", "rules.hash"))
	assert.NoError(t, err)
}
