// Package textrange maps source spans onto the line/column fields of exported records.
//
// Records use 1-based line numbers, the numbers go vet prints in its
// diagnostics, and 0-based byte columns. Consumers correlating records with
// diagnostics rely on both conventions.
package textrange

import (
	"go/ast"
	"go/token"
)

// LinePosition is a 0-based line and 0-based byte column.
type LinePosition struct {
	Line   int
	Column int
}

// TextRange is the span representation written into records.
type TextRange struct {
	StartLine   int `msgpack:"start_line" json:"start_line"`
	EndLine     int `msgpack:"end_line" json:"end_line"`
	StartOffset int `msgpack:"start_offset" json:"start_offset"`
	EndOffset   int `msgpack:"end_offset" json:"end_offset"`
}

// FromLinePositions converts a 0-based span into a TextRange.
func FromLinePositions(start, end LinePosition) TextRange {
	return TextRange{
		StartLine:   reportLine(start.Line),
		EndLine:     reportLine(end.Line),
		StartOffset: start.Column,
		EndOffset:   end.Column,
	}
}

// FromPos converts the span [pos, end) of fset into a TextRange.
// An invalid end collapses the range onto pos. //line directives are not
// applied: ranges refer to the file as stored.
func FromPos(fset *token.FileSet, pos, end token.Pos) TextRange {
	start := linePosition(fset.PositionFor(pos, false))
	if !end.IsValid() {
		return FromLinePositions(start, start)
	}

	return FromLinePositions(start, linePosition(fset.PositionFor(end, false)))
}

// FromNode converts the span of a node.
func FromNode(fset *token.FileSet, node ast.Node) TextRange {
	return FromPos(fset, node.Pos(), node.End())
}

// linePosition turns a 1-based go/token position into a 0-based one.
func linePosition(p token.Position) LinePosition {
	return LinePosition{
		Line:   max(p.Line-1, 0),
		Column: max(p.Column-1, 0),
	}
}

// reportLine converts a 0-based line index into the 1-based number used in diagnostics.
func reportLine(line int) int {
	return line + 1
}
