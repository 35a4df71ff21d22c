package runconfig

import (
	"go/ast"
	"strings"
)

// Variant is a flavor of Go source analyzed into its own output directory.
type Variant int

// Supported variants.
const (
	// Go covers production sources.
	Go Variant = iota
	// GoTest covers _test.go sources.
	GoTest
)

// Variants returns every supported variant.
func Variants() []Variant {
	return []Variant{Go, GoTest}
}

// Suffix returns the variant's name as used in output directories and settings keys.
func (v Variant) Suffix() string {
	switch v {
	case Go:
		return "go"
	case GoTest:
		return "gotest"
	default:
		return "unknown"
	}
}

func (v Variant) String() string {
	return v.Suffix()
}

// OutputDirName returns the directory appended to the base output path.
func (v Variant) OutputDirName() string {
	return "output-" + v.Suffix()
}

// Includes reports whether a file belongs to the variant.
func (v Variant) Includes(filename string) bool {
	isTest := strings.HasSuffix(filename, "_test.go")
	if v == GoTest {
		return isTest
	}

	return !isTest
}

// IsGenerated reports whether the file carries the standard
// "Code generated ... DO NOT EDIT." marker.
func (v Variant) IsGenerated(file *ast.File) bool {
	return ast.IsGenerated(file)
}
