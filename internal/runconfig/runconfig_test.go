package runconfig

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInputs(t *testing.T, settingsDoc, pathDoc string) (afero.Fs, []string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	var inputs []string

	if settingsDoc != "" {
		require.NoError(t, afero.WriteFile(fs, "/in/factexport.yaml", []byte(settingsDoc), 0o644))
		inputs = append(inputs, "/in/factexport.yaml")
	}

	if pathDoc != "" {
		require.NoError(t, afero.WriteFile(fs, "/in/ExportPath.txt", []byte(pathDoc), 0o644))
		inputs = append(inputs, "/in/ExportPath.txt")
	}

	return fs, inputs
}

func TestLocate(t *testing.T) {
	tests := []struct {
		name         string
		inputs       []string
		wantSettings string
		wantPath     string
	}{
		{
			name:   "none",
			inputs: nil,
		},
		{
			name:         "both",
			inputs:       []string{"/a/other.txt", "/a/factexport.json", "/b/ExportPath.txt"},
			wantSettings: "/a/factexport.json",
			wantPath:     "/b/ExportPath.txt",
		},
		{
			name:         "first match wins",
			inputs:       []string{"/a/factexport.yml", "/b/factexport.yaml"},
			wantSettings: "/a/factexport.yml",
		},
		{
			name:   "unsupported extension",
			inputs: []string{"/a/factexport.xml", " ", "/a/exportpath.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSettings, gotPath := Locate(tt.inputs)
			assert.Equal(t, tt.wantSettings, gotSettings)
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestResolve_Enabled(t *testing.T) {
	fs, inputs := newInputs(t, "go:\n  ignoreHeaderComments: true\n", "\n   \n/tmp/out\nignored\n")

	cfg := Resolve(fs, inputs, Go, zap.NewNop())

	require.True(t, cfg.Enabled)
	assert.Equal(t, filepath.Join("/tmp/out", "output-go"), cfg.OutputDir)
	assert.True(t, cfg.IgnoreHeaderComments())

	testCfg := Resolve(fs, inputs, GoTest, zap.NewNop())
	require.True(t, testCfg.Enabled)
	assert.Equal(t, filepath.Join("/tmp/out", "output-gotest"), testCfg.OutputDir)
	assert.False(t, testCfg.IgnoreHeaderComments())
}

func TestResolve_Disabled(t *testing.T) {
	tests := []struct {
		name        string
		settingsDoc string
		pathDoc     string
	}{
		{name: "no inputs"},
		{name: "settings only", settingsDoc: "go: {}\n"},
		{name: "path only", pathDoc: "/tmp/out\n"},
		{name: "blank path", settingsDoc: "go: {}\n", pathDoc: "\n  \n\t\n"},
		{name: "broken settings", settingsDoc: "go: [\n", pathDoc: "/tmp/out\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, inputs := newInputs(t, tt.settingsDoc, tt.pathDoc)

			cfg := Resolve(fs, inputs, Go, zap.NewNop())

			assert.False(t, cfg.Enabled)
			assert.Empty(t, cfg.OutputDir)
			assert.NotNil(t, cfg.Settings)
		})
	}
}

func TestResolve_MissingPathFile(t *testing.T) {
	fs, _ := newInputs(t, "go: {}\n", "")

	cfg := Resolve(fs, []string{"/in/factexport.yaml", "/in/ExportPath.txt"}, Go, zap.NewNop())

	assert.False(t, cfg.Enabled)
}

func TestVariant(t *testing.T) {
	assert.Equal(t, "output-go", Go.OutputDirName())
	assert.Equal(t, "output-gotest", GoTest.OutputDirName())
	assert.Equal(t, "unknown", Variant(42).Suffix())

	assert.True(t, Go.Includes("pkg/file.go"))
	assert.False(t, Go.Includes("pkg/file_test.go"))
	assert.True(t, GoTest.Includes("pkg/file_test.go"))
	assert.False(t, GoTest.Includes("pkg/file.go"))
}

func TestVariant_IsGenerated(t *testing.T) {
	fset := token.NewFileSet()

	generated, err := parser.ParseFile(fset, "gen.go", "// Code generated by hand. DO NOT EDIT.\n\npackage p\n", parser.ParseComments)
	require.NoError(t, err)

	plain, err := parser.ParseFile(fset, "plain.go", "package p\n", parser.ParseComments)
	require.NoError(t, err)

	assert.True(t, Go.IsGenerated(generated))
	assert.False(t, Go.IsGenerated(plain))
}
