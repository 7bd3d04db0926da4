package prompt

import (
	"fmt"
	"strings"

	"xtab/internal/recent"
)

// wrapTag delimits body with <tag> markers on their own lines.
func wrapTag(tag, body string) string {
	return fmt.Sprintf("<%s>\n%s\n</%s>", tag, body, tag)
}

// renderLines prefixes each line with its 1-based number per mode.
// startLine is the 0-based number of the first line in the document.
func renderLines(lines []string, startLine int, mode LineNumberMode) string {
	switch mode {
	case LineNumbersNone:
		return strings.Join(lines, "\n")
	case LineNumbersWithSpace, LineNumbersWithoutSpace:
		sep := "|"
		if mode == LineNumbersWithSpace {
			sep = "| "
		}
		var b strings.Builder
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d%s%s", startLine+i+1, sep, line)
		}
		return b.String()
	}
	panic(fmt.Sprintf("prompt: unknown line number mode %d", mode))
}

// renderSnippet formats one recent-file snippet with its document header.
func renderSnippet(s recent.Snippet, mode LineNumberMode) string {
	header := "path: " + s.ID
	if s.Truncated {
		header += " (truncated)"
	}
	return header + "\n" + renderLines(s.Lines, s.StartLine, mode)
}
