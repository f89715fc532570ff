// Package output writes truncated annotation tables as GTF.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/gzip"

	"github.com/inodb/gtf3prime/internal/annotation"
)

// Writer writes annotation tables in GTF format.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a new GTF writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteGene writes the gene line followed by its exon lines.
func (gw *Writer) WriteGene(g *annotation.GeneRecord) error {
	if _, err := gw.w.WriteString(g.GeneLine + "\n"); err != nil {
		return err
	}
	for _, e := range g.Exons {
		if _, err := gw.w.WriteString(e.String() + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable writes every gene in table order.
func (gw *Writer) WriteTable(t *annotation.Table) error {
	for _, g := range t.Genes() {
		if err := gw.WriteGene(g); err != nil {
			return fmt.Errorf("write gene %s: %w", g.ID, err)
		}
	}
	return nil
}

// Flush flushes any buffered data.
func (gw *Writer) Flush() error {
	return gw.w.Flush()
}

// Options control how WriteFile compresses its output.
type Options struct {
	// BGZF writes blocked gzip, readable by any gzip reader and indexable
	// with tabix.
	BGZF bool
	// Level is the gzip compression level. Zero means the default.
	Level int
}

// WriteFile writes the table to path as compressed GTF. Data is written to a
// temporary file that is renamed onto path only after everything succeeded,
// so a failed run never leaves a partial file behind.
func WriteFile(path string, t *annotation.Table, opts Options) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := writeCompressed(f, t, opts); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync output: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close output: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename output: %w", err)
	}

	return nil
}

func writeCompressed(w io.Writer, t *annotation.Table, opts Options) error {
	var zw io.WriteCloser
	if opts.BGZF {
		zw = bgzf.NewWriter(w, 1)
	} else {
		level := opts.Level
		if level == 0 {
			level = gzip.DefaultCompression
		}
		gz, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return fmt.Errorf("open gzip writer: %w", err)
		}
		zw = gz
	}

	gw := NewWriter(zw)
	if err := gw.WriteTable(t); err != nil {
		zw.Close()
		return err
	}
	if err := gw.Flush(); err != nil {
		zw.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}
	return nil
}
