// Package internal contains the implementation packages of devw.
//
// # Package Organization
//
//   - rules: project layout, config.yml and rule file loading
//   - bridge: per-tool renderers (claude, cursor, gemini, windsurf, copilot)
//   - markers: the BEGIN/END block that separates generated from user content
//   - compiler: the compile pipeline and its copy/link write strategies
//   - synchash: the rules hash recorded after a successful compile
//   - watcher: fsnotify watching with debounced recompiles
//   - doctor: project health checks
//   - config: CLI settings resolved through viper
//   - errors, logging, version: shared infrastructure
//
// # Data Flow
//
// A compile loads .dwf/config.yml and every file in .dwf/rules, renders the
// active rules once per configured tool, and merges the result into each
// tool's file. The watcher and doctor reuse the same loaders so all three
// commands agree on what the project contains.
package internal
