// Package cmd provides the command-line interface for devw.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - compile: Compile .dwf rules into each configured tool's config file
//   - watch: Recompile whenever rules, config or assets change
//   - doctor: Validate the project without changing it
//   - explain: Show what each tool receives and why
//   - list: List enabled rules, installed blocks or configured tools
//   - version: Show build information
//
// # Command Examples
//
//	// Compile everything, or preview a single tool
//	devw compile
//	devw compile --tool claude --dry-run
//
//	// Recompile on save with a longer debounce window
//	DWF_WATCH_DEBOUNCE=500ms devw watch
//
//	// Check a project in another directory
//	devw doctor --dir ../service
//
// # Exit Codes
//
// Every command exits 0 on success and 1 on any error, including a
// configuration error or a failed output.
package cmd
