// Package tokentype classifies the tokens of a file for syntax highlighting
// by downstream tools.
package tokentype

import (
	"go/ast"
	"go/token"
	"go/types"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mpyw/factexport/internal/passes/lexer"
	"github.com/mpyw/factexport/internal/pipeline"
	"github.com/mpyw/factexport/internal/runconfig"
	"github.com/mpyw/factexport/internal/textrange"
)

// Name is the pass name used in directives.
const Name = "tokentype"

// FileName is the output file of the pass.
const FileName = "tokentypes.dat"

// Type is a token classification.
type Type string

// Token classifications. Tokens of no interest (operators, plain
// identifiers) are not exported.
const (
	Keyword       Type = "keyword"
	StringLiteral Type = "string"
	NumberLiteral Type = "number"
	Comment       Type = "comment"
	TypeName      Type = "type_name"
)

// TokenInfo is one classified token.
type TokenInfo struct {
	Type  Type                `msgpack:"type" json:"type"`
	Range textrange.TextRange `msgpack:"range" json:"range"`
}

// Message holds the classified tokens of one file in source order.
type Message struct {
	FilePath string      `msgpack:"file_path" json:"file_path"`
	Tokens   []TokenInfo `msgpack:"tokens" json:"tokens"`
}

// MarshalBinary encodes the message with msgpack.
// The message is encoded through a method-less copy of its type, otherwise
// msgpack would call MarshalBinary again.
func (m *Message) MarshalBinary() ([]byte, error) {
	type plain Message
	return msgpack.Marshal((*plain)(m))
}

// Extractor classifies tokens.
type Extractor struct{}

var _ pipeline.Extractor[*Message] = (*Extractor)(nil)

// New creates the token type extractor.
func New() *Extractor {
	return &Extractor{}
}

func (*Extractor) Name() string     { return Name }
func (*Extractor) FileName() string { return FileName }

// Extract classifies the tokens of one file. Identifiers are only classified
// as type names when type information is available.
func (*Extractor) Extract(unit *pipeline.Unit, _ *runconfig.Configuration) (*Message, error) {
	src, err := unit.Source()
	if err != nil {
		return nil, err
	}

	lf := lexer.Scan(unit.Filename, src)
	typeNames := typeNameOffsets(unit)

	msg := &Message{FilePath: unit.Filename, Tokens: []TokenInfo{}}
	for _, t := range lf.Tokens {
		typ, ok := classify(t, typeNames[lf.Offset(t.Pos)])
		if !ok {
			continue
		}
		msg.Tokens = append(msg.Tokens, TokenInfo{Type: typ, Range: t.Range})
	}

	return msg, nil
}

func classify(t lexer.Token, isTypeName bool) (Type, bool) {
	switch {
	case t.Tok.IsKeyword():
		return Keyword, true
	case t.Tok == token.STRING || t.Tok == token.CHAR:
		return StringLiteral, true
	case t.Tok == token.INT || t.Tok == token.FLOAT || t.Tok == token.IMAG:
		return NumberLiteral, true
	case t.Tok == token.COMMENT:
		return Comment, true
	case t.Tok == token.IDENT && isTypeName:
		return TypeName, true
	}

	return "", false
}

// typeNameOffsets returns the byte offsets of identifiers denoting types.
func typeNameOffsets(unit *pipeline.Unit) map[int]bool {
	offsets := make(map[int]bool)
	if unit.Info == nil {
		return offsets
	}

	tf := unit.Fset.File(unit.File.Pos())
	if tf == nil {
		return offsets
	}

	for cur := range unit.Cursor().Preorder((*ast.Ident)(nil)) {
		ident := cur.Node().(*ast.Ident)

		obj := unit.Info.Defs[ident]
		if obj == nil {
			obj = unit.Info.Uses[ident]
		}
		if _, ok := obj.(*types.TypeName); ok {
			offsets[tf.Offset(ident.Pos())] = true
		}
	}

	return offsets
}
