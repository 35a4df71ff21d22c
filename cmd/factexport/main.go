// Command factexport runs the fact export analyzers over Go packages.
//
// Export is enabled by pointing the analyzers at their inputs:
//
//	FACTEXPORT_INPUTS=factexport.yaml,ExportPath.txt factexport ./...
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/mpyw/factexport"
)

func main() {
	multichecker.Main(factexport.Analyzers()...)
}
