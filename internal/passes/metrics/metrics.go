// Package metrics extracts size and complexity metrics of a source file.
package metrics

import (
	"go/ast"
	"go/token"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mpyw/factexport/internal/passes/lexer"
	"github.com/mpyw/factexport/internal/pipeline"
	"github.com/mpyw/factexport/internal/runconfig"
)

// Name is the pass name used in directives.
const Name = "metrics"

// FileName is the output file of the pass.
const FileName = "metrics.dat"

// Message holds the metrics of one file. Line numbers are 1-based.
type Message struct {
	FilePath        string `msgpack:"file_path" json:"file_path"`
	Lines           int    `msgpack:"lines" json:"lines"`
	CodeLines       []int  `msgpack:"code_lines" json:"code_lines"`
	CommentLines    []int  `msgpack:"comment_lines" json:"comment_lines"`
	ExecutableLines []int  `msgpack:"executable_lines" json:"executable_lines"`
	Functions       int    `msgpack:"functions" json:"functions"`
	Statements      int    `msgpack:"statements" json:"statements"`
	Types           int    `msgpack:"types" json:"types"`
	Complexity      int    `msgpack:"complexity" json:"complexity"`
}

// MarshalBinary encodes the message with msgpack.
// The message is encoded through a method-less copy of its type, otherwise
// msgpack would call MarshalBinary again.
func (m *Message) MarshalBinary() ([]byte, error) {
	type plain Message
	return msgpack.Marshal((*plain)(m))
}

// Extractor computes file metrics.
type Extractor struct{}

var _ pipeline.Extractor[*Message] = (*Extractor)(nil)

// New creates the metrics extractor.
func New() *Extractor {
	return &Extractor{}
}

func (*Extractor) Name() string     { return Name }
func (*Extractor) FileName() string { return FileName }

// Extract computes the metrics of one file.
func (*Extractor) Extract(unit *pipeline.Unit, cfg *runconfig.Configuration) (*Message, error) {
	src, err := unit.Source()
	if err != nil {
		return nil, err
	}

	lf := lexer.Scan(unit.Filename, src)

	msg := &Message{
		FilePath: unit.Filename,
		Lines:    lf.File.LineCount(),
	}
	msg.CodeLines, msg.CommentLines = classifyLines(lf, cfg.IgnoreHeaderComments())

	countSyntax(unit, msg)

	return msg, nil
}

// classifyLines returns the lines holding code and the lines holding
// non-blank comment text. Comments before the first token are the file
// header and are dropped when ignoreHeader is set.
func classifyLines(lf *lexer.File, ignoreHeader bool) (code, comments []int) {
	codeSet := make(map[int]bool)
	commentSet := make(map[int]bool)
	inHeader := true

	for _, t := range lf.Tokens {
		if t.Tok != token.COMMENT {
			inHeader = false
			for line := t.Range.StartLine; line <= t.Range.EndLine; line++ {
				codeSet[line] = true
			}
			continue
		}

		if inHeader && ignoreHeader {
			continue
		}

		for i, text := range strings.Split(commentText(t.Lit), "\n") {
			if strings.TrimSpace(text) != "" {
				commentSet[t.Range.StartLine+i] = true
			}
		}
	}

	return sortedLines(codeSet), sortedLines(commentSet)
}

// commentText strips the comment markers, keeping line breaks.
func commentText(lit string) string {
	if rest, ok := strings.CutPrefix(lit, "//"); ok {
		return rest
	}

	lit = strings.TrimPrefix(lit, "/*")
	return strings.TrimSuffix(lit, "*/")
}

func sortedLines(set map[int]bool) []int {
	lines := make([]int, 0, len(set))
	for line := range set {
		lines = append(lines, line)
	}
	slices.Sort(lines)

	return lines
}

// countSyntax fills the syntax-based counters.
func countSyntax(unit *pipeline.Unit, msg *Message) {
	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.FuncLit)(nil),
		(*ast.TypeSpec)(nil),
		(*ast.IfStmt)(nil),
		(*ast.ForStmt)(nil),
		(*ast.RangeStmt)(nil),
		(*ast.CaseClause)(nil),
		(*ast.CommClause)(nil),
		(*ast.BinaryExpr)(nil),
		(*ast.AssignStmt)(nil),
		(*ast.BranchStmt)(nil),
		(*ast.DeclStmt)(nil),
		(*ast.DeferStmt)(nil),
		(*ast.ExprStmt)(nil),
		(*ast.GoStmt)(nil),
		(*ast.IncDecStmt)(nil),
		(*ast.ReturnStmt)(nil),
		(*ast.SelectStmt)(nil),
		(*ast.SendStmt)(nil),
		(*ast.SwitchStmt)(nil),
		(*ast.TypeSwitchStmt)(nil),
	}

	executable := make(map[int]bool)

	count := func(n ast.Node) {
		switch node := n.(type) {
		case *ast.FuncDecl:
			if node.Body != nil {
				msg.Functions++
				msg.Complexity++
			}
			return
		case *ast.FuncLit:
			msg.Functions++
			msg.Complexity++
			return
		case *ast.TypeSpec:
			msg.Types++
			return
		case *ast.CaseClause:
			if node.List != nil {
				msg.Complexity++
			}
			return
		case *ast.CommClause:
			if node.Comm != nil {
				msg.Complexity++
			}
			return
		case *ast.BinaryExpr:
			if node.Op == token.LAND || node.Op == token.LOR {
				msg.Complexity++
			}
			return
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt:
			msg.Complexity++
		}

		msg.Statements++
		executable[unit.Fset.PositionFor(n.Pos(), false).Line] = true
	}

	for cur := range unit.Cursor().Preorder(nodeFilter...) {
		count(cur.Node())
	}

	msg.ExecutableLines = sortedLines(executable)
}
