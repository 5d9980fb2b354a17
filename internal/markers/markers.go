// Package markers reconciles a generated block with a file that users may also
// edit by hand. The generated block lives between a BEGIN and an END marker
// line; everything outside that region belongs to the user and is preserved
// byte for byte.
package markers

import (
	"regexp"
	"strings"
)

const (
	Begin = "<!-- BEGIN dev-workflows -->"
	End   = "<!-- END dev-workflows -->"
)

// State describes the markers found in a file.
type State int

const (
	// StateNone means neither marker is present.
	StateNone State = iota
	// StatePaired means a BEGIN marker is followed by an END marker.
	StatePaired
	// StateUnmatched means only one marker is present, or END precedes BEGIN.
	StateUnmatched
)

// String returns the string representation of the State
func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StatePaired:
		return "paired"
	case StateUnmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// Wrap surrounds block with the marker lines. It is the content of a file that
// did not exist before.
func Wrap(block string) string {
	return Begin + "\n" + block + End + "\n"
}

// Inspect reports which markers content holds.
func Inspect(content string) State {
	_, _, ok := region(content)
	if ok {
		return StatePaired
	}
	if strings.Contains(content, Begin) || strings.Contains(content, End) {
		return StateUnmatched
	}
	return StateNone
}

// region returns the byte range from the start of the BEGIN marker through the
// end of the END marker line, including its newline when present.
func region(content string) (start, stop int, ok bool) {
	start = strings.Index(content, Begin)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(content[start:], End)
	if rel < 0 {
		return 0, 0, false
	}
	endIdx := start + rel
	nl := strings.IndexByte(content[endIdx:], '\n')
	if nl < 0 {
		return start, len(content), true
	}
	return start, endIdx + nl + 1, true
}

// Merge places block inside the marker region of existing. A paired region is
// replaced in place; otherwise the wrapped block is appended after a
// separating newline.
func Merge(existing, block string) string {
	wrapped := Wrap(block)
	start, stop, ok := region(existing)
	if !ok {
		return existing + "\n" + wrapped
	}
	return existing[:start] + wrapped + existing[stop:]
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Remove deletes the marker region, markers included. Content without a
// paired region is returned unchanged. Otherwise runs of blank lines left
// behind are collapsed and the result is trimmed; an empty result means the
// file held nothing but the generated block.
func Remove(existing string) string {
	start, stop, ok := region(existing)
	if !ok {
		return existing
	}
	rest := existing[:start] + existing[stop:]
	return strings.TrimSpace(blankRuns.ReplaceAllString(rest, "\n\n"))
}
