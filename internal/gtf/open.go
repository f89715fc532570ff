package gtf

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Open opens a GTF file for reading, decompressing it when it starts with
// the gzip magic number. kind names the input in errors.
func Open(path, kind string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MissingFileError{Kind: kind, Path: path, Err: err}
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		f.Close()
		return nil, &MissingFileError{Kind: kind, Path: path, Err: err}
	}

	if len(magic) == len(gzipMagic) && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return &readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	}

	return &readCloser{Reader: br, closers: []io.Closer{f}}, nil
}

// readCloser closes every underlying layer in order.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
