package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"

	"github.com/mpyw/factexport/internal/passes/metrics"
	"github.com/mpyw/factexport/internal/passes/symref"
	"github.com/mpyw/factexport/internal/passes/tokentype"
	"github.com/mpyw/factexport/internal/record"
)

// decoders maps output file names to their message types. Records of other
// files are decoded generically.
var decoders = map[string]func() any{
	metrics.FileName:   func() any { return &metrics.Message{} },
	symref.FileName:    func() any { return &symref.Message{} },
	tokentype.FileName: func() any { return &tokentype.Message{} },
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	var count bool

	cmd := &cobra.Command{
		Use:   "factdump FILE...",
		Short: "Print fact export records as JSON lines",
		Long: `factdump decodes the length-delimited records written by the factexport
analyzers and prints one JSON object per record.

Examples:
  # Dump the metrics of production files
  factdump out/output-go/metrics.dat

  # Count the records of every output file
  factdump --count out/output-*/*.dat
`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(fs, cmd.OutOrStdout(), cmd.ErrOrStderr(), args, count)
		},
	}
	cmd.Flags().BoolVarP(&count, "count", "c", false, "print the record count of each file instead of the records")

	return cmd
}

type dumped struct {
	records   [][]byte
	truncated bool
}

func runDump(fs afero.Fs, stdout, stderr io.Writer, paths []string, count bool) error {
	files := make([]dumped, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			records, truncated, err := record.ReadFile(fs, path)
			if err != nil {
				return err
			}
			files[i] = dumped{records: records, truncated: truncated}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	for i, path := range paths {
		f := files[i]
		if f.truncated {
			fmt.Fprintf(stderr, "%s: ignoring truncated trailing record\n", path)
		}

		if count {
			fmt.Fprintf(stdout, "%s\t%d\n", path, len(f.records))
			continue
		}

		for n, raw := range f.records {
			msg, err := decode(filepath.Base(path), raw)
			if err != nil {
				return fmt.Errorf("%s: record %d: %w", path, n, err)
			}
			if err := enc.Encode(msg); err != nil {
				return err
			}
		}
	}

	return nil
}

func decode(name string, raw []byte) (any, error) {
	if newMsg, ok := decoders[name]; ok {
		msg := newMsg()
		if err := msgpack.Unmarshal(raw, msg); err != nil {
			return nil, err
		}
		return msg, nil
	}

	var msg any
	if err := msgpack.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}

	return msg, nil
}
