// Package doctor validates a project's .dwf directory and generated outputs
// without modifying anything.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conneroisu/devworkflows/internal/bridge"
	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/logging"
	"github.com/conneroisu/devworkflows/internal/rules"
	"github.com/conneroisu/devworkflows/internal/synchash"
)

// Check is the outcome of one diagnostic.
type Check struct {
	Name    string
	Passed  bool
	Skipped bool
	Message string
}

func pass(name, msg string) Check { return Check{Name: name, Passed: true, Message: msg} }
func fail(name, msg string) Check { return Check{Name: name, Message: msg} }
func skip(name, msg string) Check { return Check{Name: name, Passed: true, Skipped: true, Message: msg} }

// ConfigExists checks for .dwf/config.yml.
func ConfigExists(root string) Check {
	const name = "config exists"
	if _, err := os.Stat(rules.ConfigPath(root)); err != nil {
		return fail(name, ".dwf/config.yml not found, run devw init first")
	}
	return pass(name, ".dwf/config.yml found")
}

// ConfigValid parses the config. The config is nil when the check fails.
func ConfigValid(root string) (Check, *rules.ProjectConfig) {
	const name = "config valid"
	cfg, err := rules.LoadConfig(root)
	if err != nil {
		return fail(name, fmt.Sprintf("config.yml is invalid: %v", err)), nil
	}
	return pass(name, fmt.Sprintf("config.yml is valid (%d tools, mode %s)", len(cfg.Tools), cfg.Mode)), cfg
}

// RulesValid loads every rule file. The set is nil when a file cannot be parsed.
func RulesValid(ctx context.Context, root string, logger logging.Logger) (Check, *rules.RuleSet) {
	const name = "rules valid"
	set, err := rules.LoadRules(ctx, root, logger)
	if err != nil {
		return fail(name, err.Error()), nil
	}

	msg := fmt.Sprintf("%d rules in %d files", len(set.Rules), len(set.Files))
	if set.Warnings.HasErrors() {
		msg += fmt.Sprintf(", %d skipped with warnings", len(set.Warnings.GetAllErrors()))
	}
	return pass(name, msg), set
}

// DuplicateIDs reports rule ids that appear in more than one place.
func DuplicateIDs(rs []rules.Rule) Check {
	const name = "unique rule ids"
	scopes := make(map[string][]string)
	for _, r := range rs {
		scopes[r.ID] = append(scopes[r.ID], r.Scope)
	}

	var dups []string
	for id, in := range scopes {
		if len(in) > 1 {
			dups = append(dups, fmt.Sprintf("%s (%s)", id, strings.Join(in, ", ")))
		}
	}
	if len(dups) == 0 {
		return pass(name, "no duplicate rule ids")
	}
	sort.Strings(dups)
	return fail(name, "duplicate rule ids: "+strings.Join(dups, "; "))
}

// ScopeFormat reports malformed scopes on rules and rule files skipped for
// their scope while loading.
func ScopeFormat(rs []rules.Rule, warnings *dwferrors.ErrorCollector) Check {
	const name = "scope format"
	var bad []string
	seen := make(map[string]bool)
	for _, r := range rs {
		if !rules.ValidScope(r.Scope) && !seen[r.Scope] {
			seen[r.Scope] = true
			bad = append(bad, r.Scope)
		}
	}
	if warnings != nil {
		for _, de := range warnings.GetErrorsByType(dwferrors.ErrorTypeValidation) {
			if de.Code == dwferrors.ErrCodeInvalidScope {
				bad = append(bad, fmt.Sprintf("%s in %s", de.Message, de.Path))
			}
		}
	}
	if len(bad) == 0 {
		return pass(name, "all scopes are valid")
	}
	return fail(name, "invalid scopes: "+strings.Join(bad, ", "))
}

// BridgesAvailable checks that every configured tool has a bridge.
func BridgesAvailable(cfg *rules.ProjectConfig) Check {
	const name = "bridges available"
	var missing []string
	for _, tool := range cfg.Tools {
		if _, ok := bridge.Lookup(tool); !ok {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return fail(name, fmt.Sprintf("no bridge for: %s (available: %s)",
			strings.Join(missing, ", "), strings.Join(bridge.IDs(), ", ")))
	}
	return pass(name, fmt.Sprintf("%d tools have bridges", len(cfg.Tools)))
}

// Symlinks checks, in link mode, that every existing output is a symlink
// whose target exists.
func Symlinks(root string, cfg *rules.ProjectConfig) Check {
	const name = "symlinks"
	if cfg.Mode != rules.ModeLink {
		return skip(name, "mode is copy")
	}

	var problems []string
	checked := 0
	for _, tool := range cfg.Tools {
		b, ok := bridge.Lookup(tool)
		if !ok {
			continue
		}
		for _, rel := range b.OutputPaths() {
			dest := filepath.Join(root, rel)
			info, err := os.Lstat(dest)
			if err != nil {
				continue
			}
			checked++
			if info.Mode()&os.ModeSymlink == 0 {
				problems = append(problems, rel+" is not a symlink")
				continue
			}
			if _, err := os.Stat(dest); err != nil {
				problems = append(problems, rel+" is a broken symlink")
			}
		}
	}
	if len(problems) > 0 {
		return fail(name, strings.Join(problems, "; "))
	}
	return pass(name, fmt.Sprintf("%d symlinks valid", checked))
}

// HashSync compares the stored sync hash against the current rules.
func HashSync(root string, rs []rules.Rule) Check {
	const name = "hash sync"
	stored, found, err := synchash.Read(root)
	if err != nil {
		return fail(name, err.Error())
	}
	if !found {
		return skip(name, "no stored hash, run devw compile")
	}
	if stored != synchash.Compute(rs) {
		return fail(name, "rules are out of sync with compiled output, run devw compile")
	}
	return pass(name, "rules are in sync")
}

// RunAll runs every check in order. Checks that depend on an earlier failure
// are skipped.
func RunAll(ctx context.Context, root string, logger logging.Logger) []Check {
	if logger == nil {
		logger = logging.NewNop()
	}

	checks := []Check{ConfigExists(root)}
	if !checks[0].Passed {
		return checks
	}

	configCheck, cfg := ConfigValid(root)
	checks = append(checks, configCheck)
	if cfg == nil {
		return checks
	}

	rulesCheck, set := RulesValid(ctx, root, logger.WithComponent("doctor"))
	checks = append(checks, rulesCheck)
	if set != nil {
		checks = append(checks, DuplicateIDs(set.Rules), ScopeFormat(set.Rules, set.Warnings))
	} else {
		checks = append(checks,
			skip("unique rule ids", "rules could not be loaded"),
			skip("scope format", "rules could not be loaded"))
	}

	checks = append(checks, BridgesAvailable(cfg), Symlinks(root, cfg))

	if set != nil {
		checks = append(checks, HashSync(root, set.Rules))
	} else {
		checks = append(checks, skip("hash sync", "rules could not be loaded"))
	}
	return checks
}

// Failed reports whether any check failed.
func Failed(checks []Check) bool {
	for _, c := range checks {
		if !c.Passed {
			return true
		}
	}
	return false
}
