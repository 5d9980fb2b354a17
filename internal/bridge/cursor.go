package bridge

import (
	"fmt"

	yaml "gopkg.in/yaml.v2"

	"github.com/conneroisu/devworkflows/internal/rules"
)

const cursorPath = ".cursor/rules/devworkflows.mdc"

// cursorBridge writes a Cursor project rule (.mdc). The file is owned entirely
// by devw: YAML frontmatter followed by the markdown document.
type cursorBridge struct{}

// Cursor writes .cursor/rules/devworkflows.mdc.
var Cursor Bridge = cursorBridge{}

func (cursorBridge) ID() string            { return "cursor" }
func (cursorBridge) OutputPaths() []string { return []string{cursorPath} }
func (cursorBridge) UsesMarkers() bool     { return false }

func (cursorBridge) Compile(rs []rules.Rule, cfg *rules.ProjectConfig) ([]Output, error) {
	front, err := cursorFrontmatter(cfg)
	if err != nil {
		return nil, err
	}
	content := "---\n" + front + "---\n\n" + renderMarkdown(rules.Active(rs))
	return []Output{{Path: cursorPath, Content: content}}, nil
}

// cursorFrontmatter keeps keys in the order Cursor documents them, hence
// MapSlice rather than a map.
func cursorFrontmatter(cfg *rules.ProjectConfig) (string, error) {
	description := "Project rules compiled by dev-workflows"
	if cfg != nil && cfg.Project.Name != "" {
		description = fmt.Sprintf("Project rules for %s, compiled by dev-workflows", cfg.Project.Name)
	}

	out, err := yaml.Marshal(yaml.MapSlice{
		{Key: "description", Value: description},
		{Key: "alwaysApply", Value: true},
	})
	if err != nil {
		return "", fmt.Errorf("rendering cursor frontmatter: %w", err)
	}
	return string(out), nil
}
