package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/mpyw/factexport/internal/passes/metrics"
	"github.com/mpyw/factexport/internal/record"
)

type plainMessage struct {
	Name string `msgpack:"name"`
}

func (m plainMessage) MarshalBinary() ([]byte, error) {
	type fields plainMessage
	return msgpack.Marshal(fields(m))
}

func setup(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	w := record.NewWriter(fs, record.NewLocks(), zap.NewNop())

	require.NoError(t, w.Append("/out/output-go", metrics.FileName, []record.Message{
		&metrics.Message{FilePath: "a.go", Functions: 2},
		&metrics.Message{FilePath: "b.go", Functions: 0},
	}))
	require.NoError(t, w.Append("/out/output-go", "other.dat", []record.Message{
		plainMessage{Name: "x"},
	}))

	return fs
}

func execute(t *testing.T, fs afero.Fs, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := newRootCmd(fs)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{}, args...))

	err = cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestDump_TypedRecords(t *testing.T) {
	stdout, _, err := execute(t, setup(t), "/out/output-go/metrics.dat")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var first metrics.Message
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "a.go", first.FilePath)
	assert.Equal(t, 2, first.Functions)
	assert.Contains(t, lines[1], `"file_path":"b.go"`)
}

func TestDump_GenericRecords(t *testing.T) {
	stdout, _, err := execute(t, setup(t), "/out/output-go/other.dat")
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"x"}`, strings.TrimSpace(stdout))
}

func TestDump_Count(t *testing.T) {
	stdout, _, err := execute(t, setup(t), "--count", "/out/output-go/metrics.dat", "/out/output-go/other.dat")
	require.NoError(t, err)

	assert.Equal(t, "/out/output-go/metrics.dat\t2\n/out/output-go/other.dat\t1\n", stdout)
}

func TestDump_TruncatedTail(t *testing.T) {
	fs := setup(t)
	f, err := fs.OpenFile("/out/output-go/other.dat", os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0x05, 'a'})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	stdout, stderr, err := execute(t, fs, "-c", "/out/output-go/other.dat")
	require.NoError(t, err)

	assert.Equal(t, "/out/output-go/other.dat\t1\n", stdout)
	assert.Contains(t, stderr, "truncated")
}

func TestDump_MissingFile(t *testing.T) {
	_, _, err := execute(t, setup(t), "/out/missing.dat")
	assert.Error(t, err)
}

func TestDump_RequiresArgs(t *testing.T) {
	_, _, err := execute(t, setup(t))
	assert.Error(t, err)
}
