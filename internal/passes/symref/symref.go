// Package symref extracts, for every symbol declared in a file, where it is
// declared and where the same file refers to it.
package symref

import (
	"go/ast"
	"go/types"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mpyw/factexport/internal/pipeline"
	"github.com/mpyw/factexport/internal/runconfig"
	"github.com/mpyw/factexport/internal/textrange"
)

// Name is the pass name used in directives.
const Name = "symref"

// FileName is the output file of the pass.
const FileName = "symrefs.dat"

// Kind classifies a symbol.
type Kind string

// Symbol kinds.
const (
	KindFunc    Kind = "func"
	KindMethod  Kind = "method"
	KindVar     Kind = "var"
	KindField   Kind = "field"
	KindConst   Kind = "const"
	KindType    Kind = "type"
	KindLabel   Kind = "label"
	KindPackage Kind = "package"
)

// SymbolReference is a declared symbol with its references in the same file.
type SymbolReference struct {
	Name        string                `msgpack:"name" json:"name"`
	Kind        Kind                  `msgpack:"kind" json:"kind"`
	Declaration textrange.TextRange   `msgpack:"declaration" json:"declaration"`
	References  []textrange.TextRange `msgpack:"references" json:"references"`
}

// Message holds the symbol references of one file, in declaration order.
type Message struct {
	FilePath string            `msgpack:"file_path" json:"file_path"`
	Symbols  []SymbolReference `msgpack:"symbols" json:"symbols"`
}

// MarshalBinary encodes the message with msgpack.
// The message is encoded through a method-less copy of its type, otherwise
// msgpack would call MarshalBinary again.
func (m *Message) MarshalBinary() ([]byte, error) {
	type plain Message
	return msgpack.Marshal((*plain)(m))
}

// Extractor collects symbol references.
type Extractor struct{}

var _ pipeline.Extractor[*Message] = (*Extractor)(nil)

// New creates the symbol reference extractor.
func New() *Extractor {
	return &Extractor{}
}

func (*Extractor) Name() string     { return Name }
func (*Extractor) FileName() string { return FileName }

// Extract collects the references of one file. A unit without type
// information yields an empty message.
func (*Extractor) Extract(unit *pipeline.Unit, _ *runconfig.Configuration) (*Message, error) {
	msg := &Message{FilePath: unit.Filename}
	if unit.Info == nil {
		return msg, nil
	}

	index := make(map[types.Object]int)
	file := unit.Cursor()
	nodeFilter := []ast.Node{(*ast.Ident)(nil)}

	// Declarations first: a symbol may be used above its declaration.
	for cur := range file.Preorder(nodeFilter...) {
		ident := cur.Node().(*ast.Ident)

		obj := unit.Info.Defs[ident]
		if obj == nil {
			continue
		}

		kind, ok := kindOf(obj)
		if !ok {
			continue
		}

		index[obj] = len(msg.Symbols)
		msg.Symbols = append(msg.Symbols, SymbolReference{
			Name:        obj.Name(),
			Kind:        kind,
			Declaration: textrange.FromNode(unit.Fset, ident),
			References:  []textrange.TextRange{},
		})
	}

	for cur := range file.Preorder(nodeFilter...) {
		ident := cur.Node().(*ast.Ident)

		obj := unit.Info.Uses[ident]
		if obj == nil {
			continue
		}

		i, ok := index[obj]
		if !ok {
			i, ok = index[origin(obj)]
		}
		if !ok {
			continue
		}

		msg.Symbols[i].References = append(msg.Symbols[i].References, textrange.FromNode(unit.Fset, ident))
	}

	return msg, nil
}

// kindOf classifies obj, rejecting objects that are not exported as symbols.
func kindOf(obj types.Object) (Kind, bool) {
	if obj.Name() == "_" {
		return "", false
	}

	switch o := obj.(type) {
	case *types.Func:
		if sig, ok := o.Type().(*types.Signature); ok && sig.Recv() != nil {
			return KindMethod, true
		}
		return KindFunc, true
	case *types.Var:
		if o.IsField() {
			return KindField, true
		}
		return KindVar, true
	case *types.Const:
		return KindConst, true
	case *types.TypeName:
		return KindType, true
	case *types.Label:
		return KindLabel, true
	case *types.PkgName:
		return KindPackage, true
	}

	return "", false
}

// origin maps instantiated generic members back to their declaration.
func origin(obj types.Object) types.Object {
	switch o := obj.(type) {
	case *types.Func:
		return o.Origin()
	case *types.Var:
		return o.Origin()
	}

	return obj
}
