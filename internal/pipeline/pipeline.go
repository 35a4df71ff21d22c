// Package pipeline runs a utility pass over the files of each analyzed package
// and appends the extracted messages to the pass's output file.
package pipeline

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/mpyw/factexport/internal/directives/ignore"
	"github.com/mpyw/factexport/internal/record"
	"github.com/mpyw/factexport/internal/runconfig"
)

// Unit is one source file with the semantic information of its package.
type Unit struct {
	File     *ast.File
	Filename string
	Fset     *token.FileSet
	Pkg      *types.Package
	Info     *types.Info
	// Src is the file content. When nil, Source reads the file through
	// ReadFile, or from disk when ReadFile is nil too.
	Src      []byte
	ReadFile func(filename string) ([]byte, error)
	// Inspector covers the unit's package. When nil, Cursor builds one for
	// the file alone.
	Inspector *inspector.Inspector
}

// Cursor returns the cursor of the unit's file.
func (u *Unit) Cursor() inspector.Cursor {
	insp := u.Inspector
	if insp == nil {
		insp = inspector.New([]*ast.File{u.File})
	}

	if cur, ok := insp.Root().FindNode(u.File); ok {
		return cur
	}

	return inspector.New([]*ast.File{u.File}).Root()
}

// Source returns the content of the unit's file.
func (u *Unit) Source() ([]byte, error) {
	if u.Src != nil {
		return u.Src, nil
	}

	if u.ReadFile != nil {
		return u.ReadFile(u.Filename)
	}

	return os.ReadFile(u.Filename)
}

// Extractor produces the message of one utility pass for a source file.
type Extractor[M record.Message] interface {
	// Name identifies the pass in //factexport:ignore directives.
	Name() string
	// FileName is the output file name inside the variant's output directory.
	FileName() string
	// Extract returns the message for a unit. It is only called for units
	// that are not generated and not ignored, and must return a message
	// (possibly empty) for each of them.
	Extract(unit *Unit, cfg *runconfig.Configuration) (M, error)
}

// Pipeline exports the messages of one extractor for one variant.
// It is safe for concurrent use.
type Pipeline[M record.Message] struct {
	extractor Extractor[M]
	variant   runconfig.Variant
	fs        afero.Fs
	writer    *record.Writer
	logger    *zap.Logger

	mu     sync.Mutex
	config atomic.Pointer[runconfig.Configuration]
}

// Option customizes a Pipeline.
type Option func(*options)

type options struct {
	fs     afero.Fs
	locks  *record.Locks
	logger *zap.Logger
}

// WithFs sets the filesystem used for inputs and output. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLocks sets the lock set shared with other pipelines writing to the same files.
func WithLocks(locks *record.Locks) Option {
	return func(o *options) { o.locks = locks }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a pipeline in the unconfigured state.
func New[M record.Message](extractor Extractor[M], variant runconfig.Variant, opts ...Option) *Pipeline[M] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
	if o.locks == nil {
		o.locks = record.NewLocks()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	logger := o.logger.With(zap.String("pass", extractor.Name()), zap.Stringer("variant", variant))

	return &Pipeline[M]{
		extractor: extractor,
		variant:   variant,
		fs:        o.fs,
		writer:    record.NewWriter(o.fs, o.locks, logger),
		logger:    logger,
	}
}

// Configuration returns the resolved configuration, or nil before the first event.
func (p *Pipeline[M]) Configuration() *runconfig.Configuration {
	return p.config.Load()
}

// Configure resolves the configuration from inputs on the first call and
// returns the cached result on every later call.
func (p *Pipeline[M]) Configure(inputs []string) *runconfig.Configuration {
	if cfg := p.config.Load(); cfg != nil {
		return cfg
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if cfg := p.config.Load(); cfg != nil {
		return cfg
	}

	cfg := runconfig.Resolve(p.fs, inputs, p.variant, p.logger)
	p.config.Store(cfg)

	return cfg
}

// Accepts reports whether a unit is exported by this pipeline: it belongs to
// the variant, is not generated and is not excluded by a directive.
func (p *Pipeline[M]) Accepts(unit *Unit) bool {
	if !p.variant.Includes(unit.Filename) {
		return false
	}

	if p.variant.IsGenerated(unit.File) {
		return false
	}

	return !ignore.Excluded(unit.File, ignore.PassName(p.extractor.Name()))
}

// OnCompilationEvent handles one analyzed package. It returns the number of
// records appended. Extractor and output failures are returned unchanged in
// kind; nothing is written for a batch whose extraction failed.
func (p *Pipeline[M]) OnCompilationEvent(units []*Unit, inputs []string) (int, error) {
	cfg := p.Configure(inputs)
	if !cfg.Enabled {
		return 0, nil
	}

	var batch []record.Message
	for _, unit := range units {
		if !p.Accepts(unit) {
			continue
		}

		msg, err := p.extractor.Extract(unit, cfg)
		if err != nil {
			return 0, fmt.Errorf("%s: %s: %w", p.extractor.Name(), unit.Filename, err)
		}
		batch = append(batch, msg)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	if err := p.writer.Append(cfg.OutputDir, p.extractor.FileName(), batch); err != nil {
		return 0, err
	}

	return len(batch), nil
}
