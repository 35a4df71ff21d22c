// Package lexer tokenizes source files for the passes that work on tokens
// rather than on the syntax tree.
package lexer

import (
	"go/scanner"
	"go/token"

	"github.com/mpyw/factexport/internal/textrange"
)

// Token is one lexical token with its span.
type Token struct {
	Tok   token.Token
	Lit   string
	Pos   token.Pos
	End   token.Pos
	Range textrange.TextRange
}

// File is a tokenized source file. Positions refer to Fset, which is private
// to the File; offsets match those of any other FileSet holding the same source.
type File struct {
	Fset   *token.FileSet
	File   *token.File
	Tokens []Token
}

// Offset returns the byte offset of pos.
func (f *File) Offset(pos token.Pos) int {
	return f.File.Offset(pos)
}

// Scan tokenizes src, keeping comments and dropping automatically inserted semicolons.
// Malformed input yields the tokens scanned around the errors.
func Scan(filename string, src []byte) *File {
	fset := token.NewFileSet()
	tf := fset.AddFile(filename, -1, len(src))

	var s scanner.Scanner
	s.Init(tf, src, func(token.Position, string) {}, scanner.ScanComments)

	out := &File{Fset: fset, File: tf}
	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}

		end := pos + token.Pos(length(tok, lit))
		out.Tokens = append(out.Tokens, Token{
			Tok:   tok,
			Lit:   lit,
			Pos:   pos,
			End:   end,
			Range: textrange.FromPos(fset, pos, end),
		})
	}

	return out
}

func length(tok token.Token, lit string) int {
	if lit != "" {
		return len(lit)
	}

	return len(tok.String())
}
