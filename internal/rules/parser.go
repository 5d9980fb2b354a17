package rules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	dwferrors "github.com/conneroisu/devworkflows/internal/errors"
	"github.com/conneroisu/devworkflows/internal/logging"
)

const defaultVersion = "0.1"

// LoadConfig reads and validates .dwf/config.yml under root.
func LoadConfig(root string) (*ProjectConfig, error) {
	path := ConfigPath(root)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dwferrors.NewConfigError(dwferrors.ErrCodeConfigNotFound,
				".dwf/config.yml not found, run devw init first", err).WithPath(path)
		}
		return nil, dwferrors.NewConfigError(dwferrors.ErrCodeConfigInvalid,
			"failed to read config.yml", err).WithPath(path)
	}
	return ParseConfig(raw)
}

// ParseConfig validates a config.yml document.
func ParseConfig(raw []byte) (*ProjectConfig, error) {
	var parsed interface{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, configErr("invalid config.yml: YAML syntax error", err)
	}

	doc, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, configErr("invalid config.yml: expected an object", nil)
	}

	cfg := &ProjectConfig{Version: defaultVersion}
	if v, ok := doc["version"].(string); ok {
		cfg.Version = v
	}

	if project, ok := doc["project"].(map[string]interface{}); ok {
		cfg.Project.Name = stringField(project, "name")
		cfg.Project.Description = stringField(project, "description")
	}

	tools, ok := doc["tools"].([]interface{})
	if !ok {
		return nil, configErr(`invalid config.yml: "tools" must be an array`, nil)
	}
	cfg.Tools = stringList(tools)

	mode, _ := doc["mode"].(string)
	switch Mode(mode) {
	case ModeCopy, ModeLink:
		cfg.Mode = Mode(mode)
	default:
		return nil, configErr(`invalid config.yml: "mode" must be "copy" or "link"`, nil)
	}

	if blocks, ok := doc["blocks"].([]interface{}); ok {
		cfg.Blocks = stringList(blocks)
	}

	if pulled, ok := doc["pulled"].([]interface{}); ok {
		for _, item := range pulled {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			p := PulledEntry{
				Path:     stringField(entry, "path"),
				Version:  stringField(entry, "version"),
				PulledAt: stringField(entry, "pulled_at"),
			}
			if p.Path != "" {
				cfg.Pulled = append(cfg.Pulled, p)
			}
		}
	}

	if assets, ok := doc["assets"].([]interface{}); ok {
		for _, item := range assets {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			a := AssetEntry{
				Type:        stringField(entry, "type"),
				Name:        stringField(entry, "name"),
				Version:     stringField(entry, "version"),
				InstalledAt: stringField(entry, "installed_at"),
			}
			if a.Name != "" {
				cfg.Assets = append(cfg.Assets, a)
			}
		}
	}

	return cfg, nil
}

func configErr(msg string, cause error) error {
	return dwferrors.NewConfigError(dwferrors.ErrCodeConfigInvalid, msg, cause)
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// idField accepts numeric ids such as `id: 42` as well as strings. Zero and
// non-scalar values count as missing.
func idField(m map[string]interface{}) string {
	switch v := m["id"].(type) {
	case string:
		return v
	case int:
		if v != 0 {
			return strconv.Itoa(v)
		}
	case uint64:
		if v != 0 {
			return strconv.FormatUint(v, 10)
		}
	case float64:
		if v != 0 {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func stringList(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// RecordIssue is the reason a raw rule record was rejected.
type RecordIssue int

const (
	IssueNone RecordIssue = iota
	IssueNotMapping
	IssueMissingID
	IssueMissingContent
	IssueInvalidSeverity
)

// String returns the string representation of the RecordIssue
func (i RecordIssue) String() string {
	switch i {
	case IssueNone:
		return "none"
	case IssueNotMapping:
		return "record is not a mapping"
	case IssueMissingID:
		return "missing id"
	case IssueMissingContent:
		return "missing content"
	case IssueInvalidSeverity:
		return "invalid severity"
	default:
		return "unknown"
	}
}

// ParseRecord validates one raw rule record from a rule file.
func ParseRecord(raw interface{}, scope string) (Rule, RecordIssue) {
	rec, ok := raw.(map[string]interface{})
	if !ok {
		return Rule{}, IssueNotMapping
	}

	id := idField(rec)
	if id == "" {
		return Rule{}, IssueMissingID
	}

	content := stringField(rec, "content")
	if content == "" {
		return Rule{}, IssueMissingContent
	}

	severity := SeverityError
	if v, present := rec["severity"]; present && v != nil {
		s, ok := v.(string)
		if !ok || !Severity(s).Valid() {
			return Rule{}, IssueInvalidSeverity
		}
		severity = Severity(s)
	}

	enabled := true
	if v, ok := rec["enabled"].(bool); ok {
		enabled = v
	}

	var tags []string
	if list, ok := rec["tags"].([]interface{}); ok {
		tags = stringList(list)
	}

	return Rule{
		ID:          id,
		Scope:       scope,
		Severity:    severity,
		Content:     strings.TrimRightFunc(content, unicode.IsSpace),
		Tags:        tags,
		Enabled:     enabled,
		SourceBlock: stringField(rec, "sourceBlock"),
		Source:      stringField(rec, "source"),
	}, IssueNone
}

// RuleSet is the union of all rule files plus the warnings raised while
// reading them.
type RuleSet struct {
	Rules    []Rule
	Files    []string
	Warnings *dwferrors.ErrorCollector
}

// LoadRules reads every *.yml / *.yaml file in .dwf/rules under root, in file
// name order. A missing rules directory yields an empty set.
func LoadRules(ctx context.Context, root string, logger logging.Logger) (*RuleSet, error) {
	dir := RulesPath(root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return &RuleSet{Warnings: dwferrors.NewErrorCollector()}, nil
		}
		return nil, dwferrors.NewIOError(dwferrors.ErrCodeReadFailed, "failed to list rules directory", err).WithPath(dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yml" || ext == ".yaml" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	set := &RuleSet{Files: files, Warnings: dwferrors.NewErrorCollector()}
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, dwferrors.NewIOError(dwferrors.ErrCodeReadFailed, "failed to read rule file", err).WithPath(name)
		}
		parsed, err := parseRuleFile(ctx, name, raw, logger, set.Warnings)
		if err != nil {
			return nil, err
		}
		set.Rules = append(set.Rules, parsed...)
	}

	return set, nil
}

func parseRuleFile(ctx context.Context, name string, raw []byte, logger logging.Logger, collector *dwferrors.ErrorCollector) ([]Rule, error) {
	var parsed interface{}
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, dwferrors.NewConfigError(dwferrors.ErrCodeRuleSyntax,
			fmt.Sprintf("invalid YAML in rule file %s", name), err).WithPath(name)
	}

	doc, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	scope := strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")
	if s, ok := doc["scope"].(string); ok && s != "" {
		scope = s
	}

	records, ok := doc["rules"].([]interface{})
	if !ok {
		return nil, nil
	}

	if !ValidScope(scope) {
		warning := dwferrors.NewValidationError(dwferrors.ErrCodeInvalidScope,
			fmt.Sprintf("invalid scope %q, skipping rules", scope)).WithPath(name)
		collector.AddError(warning)
		logger.Warn(ctx, warning, "Skipping rule file with invalid scope", "file", name, "scope", scope)
		return nil, nil
	}

	out := make([]Rule, 0, len(records))
	for i, rec := range records {
		rule, issue := ParseRecord(rec, scope)
		if issue != IssueNone {
			warning := dwferrors.NewValidationError(dwferrors.ErrCodeInvalidRecord,
				fmt.Sprintf("rule #%d skipped: %s", i+1, issue)).WithPath(name)
			collector.AddError(warning)
			logger.Debug(ctx, "Skipping invalid rule record", "file", name, "index", i, "reason", issue.String())
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}
