package converter

import (
	"strings"
)

// Entry is one parsed original/translated pair
type Entry struct {
	Original   string
	Translated string
}

// Line renders the entry in canonical form, newline terminated
func (e Entry) Line() string {
	return e.Original + Equal.Token() + e.Translated + "\n"
}

// Result holds the outcome of converting a sequence of lines
type Result struct {
	Separator Separator
	Converted int
	Skipped   int

	// SkippedLines holds the 1-based input line numbers counted in Skipped
	SkippedLines []int

	// Duplicates counts entries merged away by DedupeResult
	Duplicates int

	Entries []Entry
	Lines   []string

	// AlreadyCanonical is set when the input already uses "=" and nothing
	// was converted
	AlreadyCanonical bool
}

// Render concatenates the output lines
func (r *Result) Render() []byte {
	var b strings.Builder
	for _, line := range r.Lines {
		b.WriteString(line)
	}
	return []byte(b.String())
}

// Convert rewrites every line split by sep into "original=translated".
//
// Blank lines are dropped without being counted. Lines that lack sep, or
// whose original or translated part is empty after trimming, are counted as
// skipped. Only the first occurrence of sep splits a line.
func Convert(lines []string, sep Separator) *Result {
	result := &Result{Separator: sep}

	// Source and target formats are identical
	if sep == Equal {
		result.AlreadyCanonical = true
		return result
	}

	token := sep.Token()
	for i, line := range lines {
		entry, ok, blank := parseLine(line, token)
		if blank {
			continue
		}
		if !ok {
			result.Skipped++
			result.SkippedLines = append(result.SkippedLines, i+1)
			continue
		}

		result.Entries = append(result.Entries, entry)
		result.Lines = append(result.Lines, entry.Line())
		result.Converted++
	}

	return result
}

// parseLine splits a single raw line at the first token
func parseLine(line, token string) (entry Entry, ok bool, blank bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, false, true
	}

	original, translated, found := strings.Cut(line, token)
	if !found {
		return Entry{}, false, false
	}

	original = strings.TrimSpace(original)
	translated = strings.TrimSpace(translated)
	if original == "" || translated == "" {
		return Entry{}, false, false
	}

	return Entry{Original: original, Translated: translated}, true, false
}

// Dedupe drops repeated originals, keeping the last translation seen for
// each one at the position where the original first appeared.
func Dedupe(entries []Entry) []Entry {
	index := make(map[string]int, len(entries))
	result := make([]Entry, 0, len(entries))

	for _, e := range entries {
		if i, ok := index[e.Original]; ok {
			result[i].Translated = e.Translated
			continue
		}
		index[e.Original] = len(result)
		result = append(result, e)
	}

	return result
}

// DedupeResult applies Dedupe to r in place and returns the number of
// entries removed. Converted is reduced to the number of remaining entries.
func DedupeResult(r *Result) int {
	deduped := Dedupe(r.Entries)
	removed := len(r.Entries) - len(deduped)
	if removed == 0 {
		return 0
	}

	r.Entries = deduped
	r.Lines = make([]string, 0, len(deduped))
	for _, e := range deduped {
		r.Lines = append(r.Lines, e.Line())
	}
	r.Converted = len(deduped)
	r.Duplicates = removed

	return removed
}
