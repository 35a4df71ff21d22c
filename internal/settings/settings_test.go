package settings

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoad_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg/factexport.yaml", `
go:
  ignoreHeaderComments: true
gotest:
  ignoreHeaderComments: false
unrelated:
  key: value
`)

	s, err := Load(fs, "/cfg/factexport.yaml")
	require.NoError(t, err)

	assert.True(t, s.Bool(GoIgnoreHeaderComments))
	assert.False(t, s.Bool(GoTestIgnoreHeaderComments))
	assert.True(t, s.IgnoreHeaderComments("go"))
	assert.False(t, s.Bool("unrelated.key"))
	assert.Empty(t, s.Malformed())
}

func TestLoad_JSONStringValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg/factexport.json", `{"gotest": {"ignoreHeaderComments": "true"}}`)

	s, err := Load(fs, "/cfg/factexport.json")
	require.NoError(t, err)

	assert.False(t, s.IgnoreHeaderComments("go"))
	assert.True(t, s.IgnoreHeaderComments("gotest"))
}

func TestLoad_MalformedValueKeepsDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/cfg/factexport.yaml", `
go:
  ignoreHeaderComments: definitely
gotest:
  ignoreHeaderComments: true
`)

	s, err := Load(fs, "/cfg/factexport.yaml")
	require.NoError(t, err)

	assert.False(t, s.IgnoreHeaderComments("go"))
	assert.True(t, s.IgnoreHeaderComments("gotest"))
	assert.Equal(t, []string{GoIgnoreHeaderComments}, s.Malformed())
}

func TestLoad_Unreadable(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("missing", func(t *testing.T) {
		_, err := Load(fs, "/cfg/missing.yaml")
		require.ErrorIs(t, err, ErrUnreadable)
	})

	t.Run("broken document", func(t *testing.T) {
		writeFile(t, fs, "/cfg/broken.json", `{"go": `)
		_, err := Load(fs, "/cfg/broken.json")
		require.ErrorIs(t, err, ErrUnreadable)
	})
}

func TestDefault(t *testing.T) {
	s := Default()
	for _, key := range Keys() {
		assert.False(t, s.Bool(key), key)
	}

	var nilSettings *Settings
	assert.False(t, nilSettings.IgnoreHeaderComments("go"))
	assert.Nil(t, nilSettings.Malformed())
}

func TestNew_IgnoresUnknownKeys(t *testing.T) {
	s := New(map[string]bool{GoTestIgnoreHeaderComments: true, "other.flag": true})

	assert.True(t, s.IgnoreHeaderComments("gotest"))
	assert.False(t, s.IgnoreHeaderComments("go"))
	assert.False(t, s.Bool("other.flag"))
}
