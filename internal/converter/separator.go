package converter

import (
	"fmt"
	"strings"
)

// SampleSize is the number of leading lines inspected by DetectSeparator
const SampleSize = 10

// Separator identifies the token between original and translated text
type Separator int

const (
	// Equal is the canonical "original=translated" layout
	Equal Separator = iota
	// Tab separates fields with a horizontal tab
	Tab
	// Arrow separates fields with the literal "==>"
	Arrow
)

// Token returns the literal text of the separator
func (s Separator) Token() string {
	switch s {
	case Tab:
		return "\t"
	case Arrow:
		return "==>"
	default:
		return "="
	}
}

// String returns the name used in flags and config files
func (s Separator) String() string {
	switch s {
	case Tab:
		return "tab"
	case Arrow:
		return "arrow"
	default:
		return "equal"
	}
}

// Describe returns a human readable label for log output
func (s Separator) Describe() string {
	switch s {
	case Tab:
		return `tab (\t) separator`
	case Arrow:
		return "==> separator"
	default:
		return "= separator"
	}
}

// ParseSeparator parses a separator name. "auto" and "" return ok=false,
// meaning the separator should be detected from the file.
func ParseSeparator(name string) (sep Separator, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Equal, false, nil
	case "tab", `\t`:
		return Tab, true, nil
	case "arrow", "==>":
		return Arrow, true, nil
	case "equal", "=":
		return Equal, true, nil
	default:
		return Equal, false, fmt.Errorf("unknown separator %q (use auto, tab, arrow or equal)", name)
	}
}

// DetectSeparator guesses the separator from the first SampleSize lines.
//
// Tabs win only with a strict majority over arrows; a tie with at least one
// arrow line resolves to Arrow. Files without either fall back to Equal.
func DetectSeparator(lines []string) Separator {
	sample := lines[:min(SampleSize, len(lines))]

	tabCount, arrowCount := 0, 0
	for _, line := range sample {
		if strings.Contains(line, Tab.Token()) {
			tabCount++
		}
		if strings.Contains(line, Arrow.Token()) {
			arrowCount++
		}
	}

	if tabCount > arrowCount {
		return Tab
	} else if arrowCount > 0 {
		return Arrow
	}
	return Equal
}
