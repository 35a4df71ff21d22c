// Package record frames exported messages as length-delimited records.
//
// An output file is a plain concatenation of records, each a uvarint byte
// length followed by that many payload bytes (the protobuf delimited
// convention). There is no header, trailer or checksum. Files are only ever
// appended to.
package record

import (
	"encoding"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is a record payload.
type Message interface {
	encoding.BinaryMarshaler
}

// Writer appends batches of messages to output files.
type Writer struct {
	fs     afero.Fs
	locks  *Locks
	logger *zap.Logger
}

// NewWriter creates a writer on fs. Writers that may target the same files
// must share locks.
func NewWriter(fs afero.Fs, locks *Locks, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Writer{fs: fs, locks: locks, logger: logger}
}

// Encode frames msgs in order into a single buffer.
func Encode(msgs []Message) ([]byte, error) {
	var buf []byte
	for i, msg := range msgs {
		payload, err := msg.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: message %d: %w", ErrMarshal, i, err)
		}
		buf = protowire.AppendBytes(buf, payload)
	}

	return buf, nil
}

// Append writes msgs as consecutive records at the end of dir/name, creating
// the directory and file when missing. An empty batch performs no I/O.
// A batch is written in one piece while holding the file's lock.
func (w *Writer) Append(dir, name string, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	buf, err := Encode(msgs)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)

	mu := w.locks.For(path)
	mu.Lock()
	defer mu.Unlock()

	if err := w.appendLocked(dir, path, buf); err != nil {
		return err
	}

	w.logger.Debug("records appended",
		zap.String("path", path),
		zap.Int("records", len(msgs)),
		zap.Int("bytes", len(buf)))

	return nil
}

func (w *Writer) appendLocked(dir, path string, buf []byte) (err error) {
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return ioError("mkdir", dir, err)
	}

	f, err := w.fs.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return ioError("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierr.Append(err, ioError("close", path, cerr))
		}
	}()

	if _, err := f.Write(buf); err != nil {
		return ioError("write", path, err)
	}

	return nil
}
