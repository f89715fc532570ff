package annotation

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/gtf3prime/internal/canonical"
	"github.com/inodb/gtf3prime/internal/gtf"
)

// ProteinCoding is the gene biotype retained by the loader.
const ProteinCoding = "protein_coding"

// DefaultChromScope is the chromosome prefix read when none is configured.
const DefaultChromScope = "1"

// OrphanExonError reports a canonical exon whose gene_id never appeared on a
// gene line before it.
type OrphanExonError struct {
	LineNum      int
	GeneID       string
	TranscriptID string
}

func (e *OrphanExonError) Error() string {
	return fmt.Sprintf("line %d: exon of transcript %s references unknown gene %s",
		e.LineNum, e.TranscriptID, e.GeneID)
}

// Stats summarizes a load pass.
type Stats struct {
	Lines             int
	GenesSeen         int
	GenesKept         int
	GenesReplaced     int
	ExonsKept         int
	ExonsNonCanonical int
	ExonsFilteredGene int
	StoppedAtChrom    string
}

// Loader reads GTF lines into a Table.
type Loader struct {
	chromScope string
	logger     *zap.Logger
}

// NewLoader creates a loader scoped to DefaultChromScope.
func NewLoader() *Loader {
	return &Loader{
		chromScope: DefaultChromScope,
		logger:     zap.NewNop(),
	}
}

// SetChromScope sets the chromosome prefix to read. Reading stops at the
// first line whose chromosome does not start with scope. An empty scope reads
// the whole file.
func (l *Loader) SetChromScope(scope string) {
	l.chromScope = gtf.NormalizeChrom(scope)
}

// SetLogger sets the logger for warning and info messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// LoadFile opens path (plain or gzipped) and loads it.
func (l *Loader) LoadFile(path string, set *canonical.Set) (*Table, Stats, error) {
	rc, err := gtf.Open(path, "annotation")
	if err != nil {
		return nil, Stats{}, err
	}
	defer rc.Close()

	return l.Load(rc, set)
}

// Load scans GTF content and keeps protein-coding genes with the exons of
// their canonical transcripts. Any malformed line aborts the load.
func (l *Loader) Load(reader io.Reader, set *canonical.Set) (*Table, Stats, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	table := NewTable()
	var stats Stats

	// Every gene_id seen on a gene line, kept or not.
	seen := make(map[string]bool)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		// Skip comments
		if strings.HasPrefix(line, "#") {
			continue
		}
		stats.Lines++

		if strings.TrimSpace(line) == "" {
			return nil, stats, gtf.WithLineNum(&gtf.MalformedLineError{Line: line, Reason: "empty line"}, lineNum)
		}

		if l.chromScope != "" {
			chrom, _, _ := strings.Cut(line, "\t")
			if !strings.HasPrefix(gtf.NormalizeChrom(chrom), l.chromScope) {
				stats.StoppedAtChrom = chrom
				break
			}
		}

		feat, err := gtf.ParseLine(line)
		if err != nil {
			return nil, stats, gtf.WithLineNum(err, lineNum)
		}

		switch feat.Kind {
		case gtf.Gene:
			geneID := feat.Attr("gene_id")
			seen[geneID] = true
			stats.GenesSeen++

			if biotype(feat) != ProteinCoding {
				continue
			}

			if table.Put(&GeneRecord{ID: geneID, GeneLine: feat.Raw}) {
				stats.GenesReplaced++
				l.logger.Warn("duplicate gene_id replaces earlier record",
					zap.String("gene_id", geneID),
					zap.Int("line", lineNum))
			}

		case gtf.Exon:
			transcriptID := feat.Attr("transcript_id")
			if !set.Contains(transcriptID) {
				stats.ExonsNonCanonical++
				continue
			}

			geneID := feat.Attr("gene_id")
			g := table.Get(geneID)
			if g == nil {
				if !seen[geneID] {
					return nil, stats, &OrphanExonError{
						LineNum:      lineNum,
						GeneID:       geneID,
						TranscriptID: transcriptID,
					}
				}
				stats.ExonsFilteredGene++
				continue
			}
			g.Exons = append(g.Exons, feat)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan GTF: %w", err)
	}

	stats.GenesKept = table.Len()
	stats.ExonsKept = table.ExonCount()

	l.logger.Info("loaded annotation",
		zap.Int("lines", stats.Lines),
		zap.Int("genes_seen", stats.GenesSeen),
		zap.Int("genes_kept", stats.GenesKept),
		zap.Int("exons_kept", stats.ExonsKept),
		zap.Int("exons_non_canonical", stats.ExonsNonCanonical),
		zap.Int("exons_filtered_gene", stats.ExonsFilteredGene))
	if stats.StoppedAtChrom != "" {
		l.logger.Debug("stopped at chromosome outside scope",
			zap.String("scope", l.chromScope),
			zap.String("chrom", stats.StoppedAtChrom))
	}

	return table, stats, nil
}

// biotype returns gene_biotype (Ensembl) or, failing that, gene_type (GENCODE).
func biotype(feat *gtf.Line) string {
	if b := feat.Attr("gene_biotype"); b != "" {
		return b
	}
	return feat.Attr("gene_type")
}
