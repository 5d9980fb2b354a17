// Package rules is the canonical rule store. It reads the project
// configuration (.dwf/config.yml) and the per-scope rule files under
// .dwf/rules, validating them into typed Rule and ProjectConfig values.
//
// Invalid records and rule files with an invalid scope are skipped with a
// warning. Malformed configuration and unparseable YAML are fatal and
// reported as config errors.
package rules

import (
	"path/filepath"
	"regexp"
	"slices"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Layout of the .dwf directory relative to the project root.
const (
	DirName    = ".dwf"
	ConfigFile = "config.yml"
	RulesDir   = "rules"
	CacheDir   = ".cache"
	AssetsDir  = "assets"
)

// Severity is the importance of a rule. Info rules are kept in the model but
// never rendered.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// Rule is a single development rule.
type Rule struct {
	ID       string
	Scope    string
	Severity Severity
	Content  string
	Tags     []string
	Enabled  bool

	// Provenance, set by the block installer and pull commands.
	SourceBlock string
	Source      string
}

// Active reports whether the rule is rendered into outputs.
func (r Rule) Active() bool {
	return r.Enabled && r.Severity != SeverityInfo
}

// Active returns the enabled, non-info subset of rules, preserving order.
func Active(rules []Rule) []Rule {
	active := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Active() {
			active = append(active, r)
		}
	}
	return active
}

// Mode selects the write strategy for compiled outputs.
type Mode string

const (
	ModeCopy Mode = "copy"
	ModeLink Mode = "link"
)

// Project identifies the project in config.yml.
type Project struct {
	Name        string
	Description string
}

// PulledEntry records a rule file pulled from the registry.
type PulledEntry struct {
	Path     string `json:"path" yaml:"path"`
	Version  string `json:"version,omitempty" yaml:"version,omitempty"`
	PulledAt string `json:"pulled_at,omitempty" yaml:"pulled_at,omitempty"`
}

// AssetEntry records an installed asset (command, template or hook).
type AssetEntry struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	InstalledAt string `json:"installed_at,omitempty" yaml:"installed_at,omitempty"`
}

// ProjectConfig is the parsed .dwf/config.yml. Blocks, Pulled and Assets are
// owned by other commands and carried through untouched.
type ProjectConfig struct {
	Version string
	Project Project
	Tools   []string
	Mode    Mode
	Blocks  []string
	Pulled  []PulledEntry
	Assets  []AssetEntry
}

// HasTool reports whether id appears in the configured tools list.
func (c *ProjectConfig) HasTool(id string) bool {
	return slices.Contains(c.Tools, id)
}

var scopePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(:[a-z][a-z0-9-]*)?$`)

// BuiltinScopes are rendered first, in this order.
var BuiltinScopes = []string{"architecture", "conventions", "security", "workflow", "testing"}

// ValidScope reports whether scope matches the scope grammar, e.g.
// "architecture" or "team:payments".
func ValidScope(scope string) bool {
	return scopePattern.MatchString(scope)
}

// IsBuiltinScope reports whether scope is one of BuiltinScopes.
func IsBuiltinScope(scope string) bool {
	return slices.Contains(BuiltinScopes, scope)
}

// ScopeHeading returns the section heading for a scope. Built-in scopes are
// title-cased; custom scopes are rendered verbatim.
func ScopeHeading(scope string) string {
	if IsBuiltinScope(scope) {
		return cases.Title(language.English).String(scope)
	}
	return scope
}

// ScopeGroup is the rules of one scope, in input order.
type ScopeGroup struct {
	Scope string
	Rules []Rule
}

// GroupByScope groups rules by scope. Built-in scopes come first in canonical
// order, then custom scopes alphabetically.
func GroupByScope(rules []Rule) []ScopeGroup {
	index := make(map[string]int)
	var groups []ScopeGroup
	for _, r := range rules {
		i, ok := index[r.Scope]
		if !ok {
			i = len(groups)
			index[r.Scope] = i
			groups = append(groups, ScopeGroup{Scope: r.Scope})
		}
		groups[i].Rules = append(groups[i].Rules, r)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return scopeLess(groups[i].Scope, groups[j].Scope)
	})
	return groups
}

func scopeLess(a, b string) bool {
	ai := slices.Index(BuiltinScopes, a)
	bi := slices.Index(BuiltinScopes, b)
	switch {
	case ai >= 0 && bi >= 0:
		return ai < bi
	case ai >= 0:
		return true
	case bi >= 0:
		return false
	default:
		return a < b
	}
}

// ConfigPath returns the path of config.yml under root.
func ConfigPath(root string) string {
	return filepath.Join(root, DirName, ConfigFile)
}

// RulesPath returns the rule file directory under root.
func RulesPath(root string) string {
	return filepath.Join(root, DirName, RulesDir)
}

// CachePath returns the internal cache directory under root.
func CachePath(root string) string {
	return filepath.Join(root, DirName, CacheDir)
}
