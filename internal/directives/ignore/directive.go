// Package ignore handles //factexport:ignore directives.
//
// The directive excludes a whole file from fact export. It may appear in any
// comment of the file:
//
//	//factexport:ignore                      -> excluded from every pass
//	//factexport:ignore metrics              -> excluded from one pass
//	//factexport:ignore metrics,symref       -> excluded from several passes
//	//factexport:ignore symref - vendored    -> trailing text is a comment
package ignore

import (
	"go/ast"
	"strings"
)

const prefix = "factexport:ignore"

// PassName names a utility pass that can be ignored.
type PassName string

// Directive is the merged set of ignore directives of one file.
type Directive struct {
	all    bool
	passes map[PassName]bool
}

// Build scans a file's comments for ignore directives.
// It returns nil when the file has none.
func Build(file *ast.File) *Directive {
	var d *Directive

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			passes, ok := parseIgnoreComment(c.Text)
			if !ok {
				continue
			}

			if d == nil {
				d = &Directive{passes: make(map[PassName]bool)}
			}

			if len(passes) == 0 {
				d.all = true
			}
			for _, p := range passes {
				d.passes[p] = true
			}
		}
	}

	return d
}

// Ignores reports whether the directive excludes the file from the named pass.
func (d *Directive) Ignores(pass PassName) bool {
	if d == nil {
		return false
	}

	return d.all || d.passes[pass]
}

// Excluded reports whether file carries a directive excluding it from pass.
func Excluded(file *ast.File, pass PassName) bool {
	return Build(file).Ignores(pass)
}

// parseIgnoreComment parses an ignore directive and returns the pass names.
// An empty result with ok set means every pass.
func parseIgnoreComment(text string) ([]PassName, bool) {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)

	rest, ok := strings.CutPrefix(text, prefix)
	if !ok {
		return nil, false
	}

	// "//factexport:ignored" is not the directive.
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil, false
	}

	rest = strings.TrimSpace(rest)

	if idx := strings.Index(rest, " - "); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, " //"); idx >= 0 {
		rest = rest[:idx]
	}
	if strings.HasPrefix(rest, "- ") || rest == "-" {
		return nil, true
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil, true
	}

	parts := strings.Split(rest, ",")
	passes := make([]PassName, 0, len(parts))

	for _, part := range parts {
		if name := PassName(strings.TrimSpace(part)); name != "" {
			passes = append(passes, name)
		}
	}

	return passes, true
}
