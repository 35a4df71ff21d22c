package record

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"google.golang.org/protobuf/encoding/protowire"
)

// Reader iterates over the records of an output file.
// An incomplete trailing record, as left by a killed writer, ends the stream.
type Reader struct {
	data      []byte
	truncated bool
}

// NewReader reads all of r and returns a Reader over it.
func NewReader(r io.Reader) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	return &Reader{data: data}, nil
}

// Next returns the next record payload. It returns io.EOF at the end of the
// stream, including when the remaining bytes do not form a whole record.
func (r *Reader) Next() ([]byte, error) {
	if len(r.data) == 0 {
		return nil, io.EOF
	}

	payload, n := protowire.ConsumeBytes(r.data)
	if n < 0 {
		r.truncated = true
		r.data = nil
		return nil, io.EOF
	}

	r.data = r.data[n:]

	return payload, nil
}

// Truncated reports whether the stream ended inside a record.
func (r *Reader) Truncated() bool {
	return r.truncated
}

// All returns every remaining record payload.
func (r *Reader) All() [][]byte {
	var out [][]byte
	for {
		payload, err := r.Next()
		if err != nil {
			return out
		}
		out = append(out, payload)
	}
}

// ReadFile decodes every complete record of the file at path.
func ReadFile(fs afero.Fs, path string) (records [][]byte, truncated bool, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r, err := NewReader(f)
	if err != nil {
		return nil, false, err
	}

	records = r.All()

	return records, r.Truncated(), nil
}
