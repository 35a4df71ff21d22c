// Package settings loads the boolean options recognized by the utility passes.
package settings

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Recognized option keys. The prefix is the variant suffix the option applies to.
const (
	GoIgnoreHeaderComments     = "go.ignoreHeaderComments"
	GoTestIgnoreHeaderComments = "gotest.ignoreHeaderComments"
)

// ErrUnreadable is returned when the settings document cannot be opened or parsed.
var ErrUnreadable = errors.New("settings document unreadable")

// Keys returns the recognized option keys.
func Keys() []string {
	return []string{
		GoIgnoreHeaderComments,
		GoTestIgnoreHeaderComments,
	}
}

// IgnoreHeaderCommentsKey returns the ignoreHeaderComments key for a variant suffix.
func IgnoreHeaderCommentsKey(suffix string) string {
	return suffix + ".ignoreHeaderComments"
}

// Settings holds the recognized options. It is read-only once loaded.
type Settings struct {
	values    map[string]bool
	malformed []string
}

// Default returns settings with every recognized key at its default.
func Default() *Settings {
	values := make(map[string]bool, len(Keys()))
	for _, key := range Keys() {
		values[key] = false
	}

	return &Settings{values: values}
}

// New returns settings holding the recognized keys of values.
func New(values map[string]bool) *Settings {
	s := Default()
	for key, v := range values {
		if _, ok := s.values[key]; ok {
			s.values[key] = v
		}
	}

	return s
}

// Load reads the settings document at path. The format follows the file
// extension (yaml, yml, json or toml). Values that do not parse as booleans
// keep their default and are listed by Malformed.
func Load(fs afero.Fs, path string) (*Settings, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	s := Default()
	for _, key := range Keys() {
		if !v.IsSet(key) {
			continue
		}

		b, err := cast.ToBoolE(v.Get(key))
		if err != nil {
			s.malformed = append(s.malformed, key)
			continue
		}
		s.values[key] = b
	}

	return s, nil
}

// Bool returns the value of a recognized key. Unknown keys report false.
func (s *Settings) Bool(key string) bool {
	if s == nil {
		return false
	}

	return s.values[key]
}

// IgnoreHeaderComments reports whether header comments are excluded from
// comment metrics for the given variant suffix.
func (s *Settings) IgnoreHeaderComments(suffix string) bool {
	return s.Bool(IgnoreHeaderCommentsKey(suffix))
}

// Malformed returns the recognized keys whose values failed to parse.
func (s *Settings) Malformed() []string {
	if s == nil {
		return nil
	}

	return append([]string(nil), s.malformed...)
}
