// Package factexport provides go/analysis based utility analyzers that
// export per-file facts (metrics, symbol references, token types) as
// length-delimited records for downstream tools.
//
// The analyzers report no diagnostics. Export is enabled by passing the
// settings and output path files through the -inputs flag (or the
// FACTEXPORT_INPUTS environment variable); without them every analyzer is a
// no-op.
package factexport

import (
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/mpyw/factexport/internal/log"
	"github.com/mpyw/factexport/internal/passes/metrics"
	"github.com/mpyw/factexport/internal/passes/symref"
	"github.com/mpyw/factexport/internal/passes/tokentype"
	"github.com/mpyw/factexport/internal/pipeline"
	"github.com/mpyw/factexport/internal/record"
	"github.com/mpyw/factexport/internal/runconfig"
)

// InputsEnv provides the default of the -inputs flag.
const InputsEnv = "FACTEXPORT_INPUTS"

// locks is shared by every analyzer of the process so that analyzers
// writing to the same file never interleave their batches.
var locks = record.NewLocks()

// Analyzers exported by the package.
var (
	MetricsAnalyzer   = NewMetricsAnalyzer()
	SymbolRefAnalyzer = NewSymbolRefAnalyzer()
	TokenTypeAnalyzer = NewTokenTypeAnalyzer()
)

// Analyzers returns the exported analyzers.
func Analyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		MetricsAnalyzer,
		SymbolRefAnalyzer,
		TokenTypeAnalyzer,
	}
}

// ErrNoFileSet is returned when a pass lacks the positions of its files.
var ErrNoFileSet = errors.New("pass has no file set")

var ErrNoInspector = errors.New("inspector analyzer result not found")

// Summary is the result of a utility analyzer: records appended per variant suffix.
type Summary struct {
	Records map[string]int
}

// Total returns the number of records appended for the package.
func (s *Summary) Total() int {
	var n int
	for _, c := range s.Records {
		n += c
	}
	return n
}

// Option customizes a utility analyzer.
type Option func(*config)

type config struct {
	fs     afero.Fs
	logger *zap.Logger
	locks  *record.Locks
}

// WithFs sets the filesystem for inputs and output. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *config) { c.fs = fs }
}

// WithLogger sets the logger. Defaults to the FACTEXPORT_LOG_LEVEL logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// NewMetricsAnalyzer creates a fresh metrics analyzer.
func NewMetricsAnalyzer(opts ...Option) *analysis.Analyzer {
	return newAnalyzer[*metrics.Message]("factmetrics", "exports size and complexity metrics of each file", metrics.New(), opts...)
}

// NewSymbolRefAnalyzer creates a fresh symbol reference analyzer.
func NewSymbolRefAnalyzer(opts ...Option) *analysis.Analyzer {
	return newAnalyzer[*symref.Message]("factsymref", "exports declarations and in-file references of each symbol", symref.New(), opts...)
}

// NewTokenTypeAnalyzer creates a fresh token type analyzer.
func NewTokenTypeAnalyzer(opts ...Option) *analysis.Analyzer {
	return newAnalyzer[*tokentype.Message]("facttokentype", "exports the classified tokens of each file", tokentype.New(), opts...)
}

// newAnalyzer wraps an extractor into an analyzer owning one pipeline per variant.
func newAnalyzer[M record.Message](name, doc string, extractor pipeline.Extractor[M], opts ...Option) *analysis.Analyzer {
	c := config{locks: locks}
	for _, opt := range opts {
		opt(&c)
	}
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	if c.logger == nil {
		c.logger = log.FromEnv()
	}

	pipelines := make([]*pipeline.Pipeline[M], 0, len(runconfig.Variants()))
	for _, v := range runconfig.Variants() {
		pipelines = append(pipelines, pipeline.New(extractor, v,
			pipeline.WithFs(c.fs),
			pipeline.WithLocks(c.locks),
			pipeline.WithLogger(c.logger),
		))
	}

	inputs := inputList(splitInputs(os.Getenv(InputsEnv)))

	a := &analysis.Analyzer{
		Name:       name,
		Doc:        doc,
		Requires:   []*analysis.Analyzer{inspect.Analyzer},
		Flags:      flag.FlagSet{},
		ResultType: reflect.TypeOf((*Summary)(nil)),
	}
	a.Flags.Var(&inputs, "inputs",
		"comma-separated paths of the export inputs (factexport.yaml and ExportPath.txt)")

	var owners variantOwners

	a.Run = func(pass *analysis.Pass) (any, error) {
		units, claimed, err := buildUnits(pass, &owners)
		if err != nil {
			return nil, err
		}

		summary := &Summary{Records: make(map[string]int, len(pipelines))}
		for i, p := range pipelines {
			n, err := p.OnCompilationEvent(units, inputs)
			if err != nil {
				owners.release(claimed)
				return nil, err
			}
			summary.Records[runconfig.Variants()[i].Suffix()] = n
		}

		return summary, nil
	}

	return a
}

// buildUnits turns the files of a pass into pipeline units, leaving out the
// files owned by the other package variant.
func buildUnits(pass *analysis.Pass, owners *variantOwners) ([]*pipeline.Unit, []fileVersion, error) {
	if pass.Fset == nil {
		return nil, nil, ErrNoFileSet
	}

	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, nil, ErrNoInspector
	}

	testVariant := false
	filenames := make([]string, len(pass.Files))
	for i, file := range pass.Files {
		// The file as stored, not as renamed by //line directives.
		tf := pass.Fset.File(file.FileStart)
		if tf == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrNoFileSet, pass.Pkg.Path())
		}
		filenames[i] = tf.Name()
		testVariant = testVariant || strings.HasSuffix(filenames[i], "_test.go")
	}

	var (
		units   = make([]*pipeline.Unit, 0, len(pass.Files))
		claimed []fileVersion
	)
	for i, file := range pass.Files {
		src, err := pass.ReadFile(filenames[i])
		if err != nil {
			owners.release(claimed)
			return nil, nil, err
		}

		v := fileVersion{name: filenames[i], sum: sha256.Sum256(src)}
		if !owners.claim(v, testVariant) {
			continue
		}
		claimed = append(claimed, v)

		units = append(units, &pipeline.Unit{
			File:      file,
			Filename:  filenames[i],
			Fset:      pass.Fset,
			Pkg:       pass.Pkg,
			Info:      pass.TypesInfo,
			Src:       src,
			Inspector: insp,
		})
	}

	return units, claimed, nil
}

// fileVersion identifies a file by name and content.
type fileVersion struct {
	name string
	sum  [sha256.Size]byte
}

// variantOwners records whether a file version was exported by a test
// variant of its package or by the plain one. Drivers load both variants and
// both contain the non-test files; only the variant owning a file version
// exports it. Repeated compilations of the same variant export again.
type variantOwners struct {
	m sync.Map // fileVersion -> bool (owned by the test variant)
}

// claim reports whether the variant may export v, taking ownership when v is unowned.
func (o *variantOwners) claim(v fileVersion, testVariant bool) bool {
	owner, _ := o.m.LoadOrStore(v, testVariant)
	return owner.(bool) == testVariant
}

// release drops ownership of versions whose export failed.
func (o *variantOwners) release(vs []fileVersion) {
	for _, v := range vs {
		o.m.Delete(v)
	}
}

// inputList is a comma-separated list flag.
type inputList []string

func (l *inputList) String() string {
	return strings.Join(*l, ",")
}

func (l *inputList) Set(s string) error {
	*l = splitInputs(s)
	return nil
}

func splitInputs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
