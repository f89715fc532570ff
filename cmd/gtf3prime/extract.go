package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/gtf3prime/internal/annotation"
	"github.com/inodb/gtf3prime/internal/canonical"
	"github.com/inodb/gtf3prime/internal/output"
	"github.com/inodb/gtf3prime/internal/truncate"
)

// extract runs the load, truncate and write pass. Nothing is written to
// opts.outPath unless every step succeeds.
func extract(opts options, logger *zap.Logger) error {
	logger.Info("loading canonical transcripts", zap.String("path", opts.canonicalPath))
	set, err := canonical.Load(opts.canonicalPath)
	if err != nil {
		return err
	}
	logger.Info("loaded canonical transcripts", zap.Int("transcripts", set.Len()))

	loader := annotation.NewLoader()
	loader.SetChromScope(opts.chromScope)
	loader.SetLogger(logger)

	logger.Info("loading annotation",
		zap.String("path", opts.gtfPath),
		zap.String("chrom_scope", opts.chromScope))
	table, _, err := loader.LoadFile(opts.gtfPath, set)
	if err != nil {
		return fmt.Errorf("load GTF: %w", err)
	}

	truncated, err := truncate.Truncate(table, opts.distance)
	if err != nil {
		return fmt.Errorf("truncate exons: %w", err)
	}

	if err := output.WriteFile(opts.outPath, truncated, output.Options{BGZF: opts.bgzf, Level: opts.level}); err != nil {
		return fmt.Errorf("write %s: %w", opts.outPath, err)
	}

	logger.Info("wrote 3' annotation",
		zap.String("path", opts.outPath),
		zap.Int("genes", truncated.Len()),
		zap.Int("exons", truncated.ExonCount()),
		zap.Int64("distance", opts.distance))

	return nil
}
