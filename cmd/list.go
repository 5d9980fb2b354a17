package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/devworkflows/internal/bridge"
	"github.com/conneroisu/devworkflows/internal/rules"
)

var listCmd = &cobra.Command{
	Use:     "list <rules|blocks|tools>",
	Aliases: []string{"l"},
	Short:   "List rules, installed blocks, or configured tools",
	Long: `List what the project's .dwf directory contains.

  rules   enabled rules with severity, scope, tags and source block
  blocks  installed blocks, pulled rule files and installed assets
  tools   configured tools and the file each one compiles to

Examples:
  devw list rules               # Table of enabled rules
  devw list blocks              # Installed blocks
  devw list tools -f json       # Configured tools as JSON`,
	Args:      listArgs,
	ValidArgs: []string{"rules", "blocks", "tools"},
	RunE:      runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
}

func listArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("specify what to list: devw list <rules|blocks|tools>")
	}
	switch args[0] {
	case "rules", "blocks", "tools":
		return nil
	default:
		return fmt.Errorf("unknown list type %q: devw list <rules|blocks|tools>", args[0])
	}
}

type ruleItem struct {
	ID          string   `json:"id" yaml:"id"`
	Scope       string   `json:"scope" yaml:"scope"`
	Severity    string   `json:"severity" yaml:"severity"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	SourceBlock string   `json:"source_block,omitempty" yaml:"source_block,omitempty"`
}

type blockList struct {
	Blocks []string            `json:"blocks" yaml:"blocks"`
	Pulled []rules.PulledEntry `json:"pulled,omitempty" yaml:"pulled,omitempty"`
	Assets []rules.AssetEntry  `json:"assets,omitempty" yaml:"assets,omitempty"`
}

type toolItem struct {
	ID      string   `json:"id" yaml:"id"`
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Markers bool     `json:"markers" yaml:"markers"`
	Bridge  bool     `json:"bridge" yaml:"bridge"`
}

func runList(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(listFormat)
	switch format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format: %s", listFormat)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	cfg, err := rules.LoadConfig(env.root)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch args[0] {
	case "rules":
		set, err := rules.LoadRules(commandContext(cmd), env.root, env.logger)
		if err != nil {
			return err
		}
		return writeRuleList(w, format, enabledRules(set.Rules))
	case "blocks":
		return writeBlockList(w, format, blockList{Blocks: cfg.Blocks, Pulled: cfg.Pulled, Assets: cfg.Assets})
	default:
		return writeToolList(w, format, toolItems(cfg.Tools))
	}
}

// enabledRules keeps every enabled rule, info included, since info rules are
// still part of the project even though they never compile out.
func enabledRules(rs []rules.Rule) []ruleItem {
	items := make([]ruleItem, 0, len(rs))
	for _, r := range rs {
		if !r.Enabled {
			continue
		}
		items = append(items, ruleItem{
			ID:          r.ID,
			Scope:       r.Scope,
			Severity:    string(r.Severity),
			Tags:        r.Tags,
			SourceBlock: r.SourceBlock,
		})
	}
	return items
}

func toolItems(tools []string) []toolItem {
	items := make([]toolItem, 0, len(tools))
	for _, id := range tools {
		item := toolItem{ID: id}
		if b, ok := bridge.Lookup(id); ok {
			item.Bridge = true
			item.Outputs = b.OutputPaths()
			item.Markers = b.UsesMarkers()
		}
		items = append(items, item)
	}
	return items
}

func writeRuleList(w io.Writer, format string, items []ruleItem) error {
	if format != "table" {
		return encodeList(w, format, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No enabled rules found.")
		return nil
	}

	fmt.Fprintf(w, "Enabled rules (%d):\n\n", len(items))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tSCOPE\tID\tTAGS")
	for _, item := range items {
		id := item.ID
		if item.SourceBlock != "" {
			id += " [" + item.SourceBlock + "]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Severity, item.Scope, id, strings.Join(item.Tags, ", "))
	}
	return tw.Flush()
}

func writeBlockList(w io.Writer, format string, list blockList) error {
	if format != "table" {
		return encodeList(w, format, list)
	}

	if len(list.Blocks) == 0 {
		fmt.Fprintln(w, "No blocks installed.")
	} else {
		fmt.Fprintf(w, "Installed blocks (%d):\n\n", len(list.Blocks))
		for _, id := range list.Blocks {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(list.Pulled) > 0 {
		fmt.Fprintf(tw, "\nPulled rules (%d):\n\n", len(list.Pulled))
		fmt.Fprintln(tw, "PATH\tVERSION\tPULLED AT")
		for _, p := range list.Pulled {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Path, p.Version, p.PulledAt)
		}
	}
	if len(list.Assets) > 0 {
		fmt.Fprintf(tw, "\nInstalled assets (%d):\n\n", len(list.Assets))
		fmt.Fprintln(tw, "TYPE\tNAME\tVERSION")
		for _, a := range list.Assets {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Type, a.Name, a.Version)
		}
	}
	return tw.Flush()
}

func writeToolList(w io.Writer, format string, items []toolItem) error {
	if format != "table" {
		return encodeList(w, format, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No tools configured.")
		return nil
	}

	fmt.Fprintf(w, "Configured tools (%d):\n\n", len(items))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tOUTPUT\tMARKERS")
	for _, item := range items {
		if !item.Bridge {
			fmt.Fprintf(tw, "%s\t(no bridge)\t-\n", item.ID)
			continue
		}
		markers := "no"
		if item.Markers {
			markers = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, strings.Join(item.Outputs, ", "), markers)
	}
	return tw.Flush()
}

func encodeList(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}
