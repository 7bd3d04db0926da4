// Package lint filters, ranks, caps and formats diagnostics relative to
// the cursor position. It consumes LSP protocol diagnostics as delivered
// by the IDE and produces the formatted lint block together with the
// document lines the block covers, so no state has to survive between
// calls.
package lint

import (
	"fmt"
	"sort"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"xtab/pkg/edit"
)

// WarningsMode decides which severities survive ranking.
type WarningsMode int

const (
	// ErrorsOnly keeps only errors.
	ErrorsOnly WarningsMode = iota
	// All keeps errors and warnings.
	All
	// WarningsIfNoErrors keeps warnings only when no error survived the
	// distance filter; otherwise errors only.
	WarningsIfNoErrors
)

// CodeMode decides how much source context each diagnostic carries.
type CodeMode int

const (
	// NoCode renders the diagnostic line only.
	NoCode CodeMode = iota
	// CodeSpan appends the source lines of the diagnostic's range.
	CodeSpan
	// CodeSpanSurrounding appends the diagnostic's range plus one line of
	// context on each side.
	CodeSpanSurrounding
)

// Options configures ranking and formatting.
type Options struct {
	TagName         string
	Warnings        WarningsMode
	ShowCode        CodeMode
	MaxLints        int
	MaxLineDistance int
}

// RankedDiagnostic is a diagnostic augmented with its distance from the
// cursor at clip time.
type RankedDiagnostic struct {
	protocol.Diagnostic
	LineDistance   int
	ColumnDistance int
}

// Block is the ranked, formatted lint output. CoveredLines lists the
// half-open 0-based document line ranges shown as code context, so a later
// "was this line part of the lint block" query needs no recomputation.
type Block struct {
	Text         string
	Diagnostics  []RankedDiagnostic
	CoveredLines []edit.OffsetRange
}

// CoversLine reports whether the given 0-based document line appeared in
// the block's code context.
func (b Block) CoversLine(line int) bool {
	for _, r := range b.CoveredLines {
		if r.Contains(line) {
			return true
		}
	}
	return false
}

// Rank runs the full pipeline: distance filter, distance sort, severity
// filter, cap, format. Empty input degrades to an empty block.
func Rank(diagnostics []protocol.Diagnostic, cursor protocol.Position, lines []string, opts Options) Block {
	ranked := make([]RankedDiagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		rd := RankedDiagnostic{
			Diagnostic:     d,
			LineDistance:   lineDistance(d.Range, cursor),
			ColumnDistance: columnDistance(d.Range, cursor),
		}
		if rd.LineDistance > opts.MaxLineDistance {
			continue
		}
		ranked = append(ranked, rd)
	}

	// Strict total order on (line distance, column distance); fully equal
	// distances keep input order.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].LineDistance != ranked[j].LineDistance {
			return ranked[i].LineDistance < ranked[j].LineDistance
		}
		return ranked[i].ColumnDistance < ranked[j].ColumnDistance
	})

	ranked = filterSeverity(ranked, opts.Warnings)

	if opts.MaxLints > 0 && len(ranked) > opts.MaxLints {
		ranked = ranked[:opts.MaxLints]
	}

	return format(ranked, lines, opts)
}

func severityOf(d protocol.Diagnostic) protocol.DiagnosticSeverity {
	if d.Severity == nil {
		// LSP leaves interpretation to the client; treat as an error.
		return protocol.DiagnosticSeverityError
	}
	return *d.Severity
}

func filterSeverity(ranked []RankedDiagnostic, mode WarningsMode) []RankedDiagnostic {
	keep := func(want ...protocol.DiagnosticSeverity) []RankedDiagnostic {
		out := ranked[:0:0]
		for _, rd := range ranked {
			for _, w := range want {
				if severityOf(rd.Diagnostic) == w {
					out = append(out, rd)
					break
				}
			}
		}
		return out
	}

	switch mode {
	case ErrorsOnly:
		return keep(protocol.DiagnosticSeverityError)
	case All:
		return keep(protocol.DiagnosticSeverityError, protocol.DiagnosticSeverityWarning)
	case WarningsIfNoErrors:
		errors := keep(protocol.DiagnosticSeverityError)
		if len(errors) > 0 {
			return errors
		}
		return keep(protocol.DiagnosticSeverityError, protocol.DiagnosticSeverityWarning)
	}
	panic(fmt.Sprintf("lint: unknown warnings mode %d", int(mode)))
}

// lineDistance is zero when the cursor line falls inside the diagnostic's
// line span, otherwise the gap to the nearest spanned line.
func lineDistance(r protocol.Range, cursor protocol.Position) int {
	line := int(cursor.Line)
	start := int(r.Start.Line)
	end := int(r.End.Line)
	switch {
	case line < start:
		return start - line
	case line > end:
		return line - end
	}
	return 0
}

func columnDistance(r protocol.Range, cursor protocol.Position) int {
	col := int(cursor.Character)
	start := int(r.Start.Character)
	if col > start {
		return col - start
	}
	return start - col
}

func severityLabel(s protocol.DiagnosticSeverity) string {
	switch s {
	case protocol.DiagnosticSeverityError:
		return "error"
	case protocol.DiagnosticSeverityWarning:
		return "warning"
	case protocol.DiagnosticSeverityInformation:
		return "info"
	case protocol.DiagnosticSeverityHint:
		return "hint"
	}
	return "error"
}

func codeLabel(d protocol.Diagnostic) string {
	if d.Code == nil {
		return ""
	}
	switch v := d.Code.Value.(type) {
	case string:
		return v
	case protocol.Integer:
		return fmt.Sprintf("%d", v)
	case int:
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%v", d.Code.Value)
}

func sourceLabel(d protocol.Diagnostic) string {
	if d.Source == nil {
		return ""
	}
	return strings.ToUpper(*d.Source)
}

// format renders each diagnostic as
// "<line>:<col> - <severity> <SOURCE><CODE>: <message>" with 0-based
// positions, the source upper-cased and concatenated directly against the
// code. Code context lines render as "<lineNumber>|<lineContent>".
func format(ranked []RankedDiagnostic, lines []string, opts Options) Block {
	if len(ranked) == 0 {
		return Block{}
	}

	var sb strings.Builder
	var covered []edit.OffsetRange
	for _, rd := range ranked {
		fmt.Fprintf(&sb, "%d:%d - %s %s%s: %s\n",
			rd.Range.Start.Line, rd.Range.Start.Character,
			severityLabel(severityOf(rd.Diagnostic)),
			sourceLabel(rd.Diagnostic), codeLabel(rd.Diagnostic),
			rd.Message)

		if opts.ShowCode == NoCode || len(lines) == 0 {
			continue
		}
		span := contextSpan(rd.Range, len(lines), opts.ShowCode)
		for l := span.Start; l < span.EndExclusive; l++ {
			fmt.Fprintf(&sb, "%d|%s\n", l, lines[l])
		}
		covered = append(covered, span)
	}

	text := strings.TrimSuffix(sb.String(), "\n")
	if opts.TagName != "" {
		text = fmt.Sprintf("<%s>\n%s\n</%s>", opts.TagName, text, opts.TagName)
	}
	return Block{Text: text, Diagnostics: ranked, CoveredLines: covered}
}

// contextSpan converts a diagnostic range to the half-open 0-based line
// range of code context to show, clamped to the document.
func contextSpan(r protocol.Range, lineCount int, mode CodeMode) edit.OffsetRange {
	start := int(r.Start.Line)
	end := int(r.End.Line) + 1
	if mode == CodeSpanSurrounding {
		start--
		end++
	}
	start = max(start, 0)
	end = min(end, lineCount)
	if end < start {
		end = start
	}
	return edit.NewOffsetRange(start, end)
}
