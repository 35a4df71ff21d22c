// Package runconfig decides whether fact export is enabled for a run and
// where its output goes.
//
// Two external inputs drive the decision, both found among the paths passed
// to the analyzers by file name:
//
//	factexport.yaml   settings document (also .yml, .json, .toml)
//	ExportPath.txt    first non-blank line is the base output directory
//
// A run without either input, or with a blank path file, is simply disabled.
// That is the common case and is never reported as an error.
package runconfig

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/mpyw/factexport/internal/settings"
)

// Input file name conventions.
var (
	settingsInput = glob.MustCompile("factexport.{yaml,yml,json,toml}")
	pathInput     = glob.MustCompile("ExportPath.txt")
)

// Configuration is the resolved export configuration of one pipeline instance.
type Configuration struct {
	Enabled   bool
	Variant   Variant
	OutputDir string
	Settings  *settings.Settings
}

// Disabled returns the configuration of a run that does not export.
func Disabled(variant Variant) *Configuration {
	return &Configuration{Variant: variant, Settings: settings.Default()}
}

// IgnoreHeaderComments reports the ignoreHeaderComments option for the configuration's variant.
func (c *Configuration) IgnoreHeaderComments() bool {
	return c.Settings.IgnoreHeaderComments(c.Variant.Suffix())
}

// Locate returns the settings and path inputs among the given paths.
// Either result is empty when no path matches. The first match wins.
func Locate(inputs []string) (settingsPath, outPath string) {
	for _, in := range inputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}

		base := filepath.Base(in)
		switch {
		case settingsPath == "" && settingsInput.Match(base):
			settingsPath = in
		case outPath == "" && pathInput.Match(base):
			outPath = in
		}
	}

	return settingsPath, outPath
}

// Resolve computes the configuration for a variant. Missing or unreadable
// inputs yield a disabled configuration.
func Resolve(fs afero.Fs, inputs []string, variant Variant, logger *zap.Logger) *Configuration {
	logger = logger.With(zap.Stringer("variant", variant))

	settingsPath, outPath := Locate(inputs)
	if settingsPath == "" || outPath == "" {
		logger.Debug("export disabled: inputs not provided",
			zap.String("settings", settingsPath),
			zap.String("path", outPath))
		return Disabled(variant)
	}

	s, err := settings.Load(fs, settingsPath)
	if err != nil {
		logger.Debug("export disabled: settings not loaded", zap.Error(err))
		return Disabled(variant)
	}

	for _, key := range s.Malformed() {
		logger.Debug("ignoring malformed setting", zap.String("key", key))
	}

	base, err := readBasePath(fs, outPath)
	if err != nil {
		logger.Debug("export disabled: path input not read", zap.Error(err))
		return Disabled(variant)
	}

	if base == "" {
		logger.Debug("export disabled: path input is blank", zap.String("path", outPath))
		return Disabled(variant)
	}

	cfg := &Configuration{
		Enabled:   true,
		Variant:   variant,
		OutputDir: filepath.Join(base, variant.OutputDirName()),
		Settings:  s,
	}

	logger.Info("export enabled", zap.String("output_dir", cfg.OutputDir))

	return cfg
}

// readBasePath returns the first non-blank line of the file, trimmed.
func readBasePath(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return "", nil
}
