// Package parseutil holds pure helpers shared by the language parsers:
// block boundary detection, language detection and document assembly.
package parseutil

import "strings"

// BraceEnd returns the index of the line where the brace depth opened from
// lines[start] returns to zero. Both start and the return value are 0-based
// indexes into lines. When no brace opens on the start line, or the depth
// never closes, the start line itself is returned.
func BraceEnd(lines []string, start int) int {
	depth := 0
	opened := false

	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
	}

	if !opened {
		return start
	}
	return len(lines) - 1
}

// IndentEnd returns the 0-based index of the last line belonging to an
// indentation-delimited block starting at lines[start]. The block ends
// before the first non-blank line whose indentation returns to the starting
// level or less.
func IndentEnd(lines []string, start int) int {
	base := LeadingIndent(lines[start])
	end := start

	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if LeadingIndent(lines[i]) <= base {
			return end
		}
		end = i
	}
	return end
}

// LeadingIndent counts the leading whitespace of a line, with tabs
// expanded to 4 columns.
func LeadingIndent(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// BlockEnd picks the boundary rule for the language: indentation for
// Python/Ruby-style languages, brace counting otherwise.
func BlockEnd(lines []string, start int, indentBased bool) int {
	if indentBased {
		return IndentEnd(lines, start)
	}
	return BraceEnd(lines, start)
}

// SliceLines joins lines[start..end] (0-based, inclusive) back into the
// exact source text of a block.
func SliceLines(lines []string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start:end+1], "\n")
}

// Lines splits content into lines without dropping a trailing newline's
// empty tail, so that 1-based line numbers map directly to indexes+1.
func Lines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}
