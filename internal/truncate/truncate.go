// Package truncate clips gene exons to a window anchored at the 3' end.
package truncate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/biogo/biogo/seq"

	"github.com/inodb/gtf3prime/internal/annotation"
	"github.com/inodb/gtf3prime/internal/gtf"
)

// ErrInvalidDistance is returned for a distance that is not positive.
var ErrInvalidDistance = errors.New("distance must be positive")

// InvalidStrandError reports an exon whose strand is neither + nor -.
type InvalidStrandError struct {
	GeneID string
	Strand string
}

func (e *InvalidStrandError) Error() string {
	if e.GeneID != "" {
		return fmt.Sprintf("gene %s: invalid strand %q", e.GeneID, e.Strand)
	}
	return fmt.Sprintf("invalid strand %q", e.Strand)
}

// Truncate returns a new table in which every gene's exons are clipped to
// distance bases from the 3' end. The input table is not modified.
func Truncate(table *annotation.Table, distance int64) (*annotation.Table, error) {
	if distance <= 0 {
		return nil, ErrInvalidDistance
	}

	out := annotation.NewTable()
	for _, g := range table.Genes() {
		exons, err := ShortenExons(g.Exons, distance)
		if err != nil {
			var strandErr *InvalidStrandError
			if errors.As(err, &strandErr) {
				strandErr.GeneID = g.ID
			}
			return nil, err
		}
		out.Put(&annotation.GeneRecord{
			ID:       g.ID,
			GeneLine: g.GeneLine,
			Exons:    exons,
		})
	}
	return out, nil
}

// ShortenExons walks exons from the 3' end, keeping whole exons while the
// cumulative length stays below distance, and clips the exon at which the
// budget runs out. Exons past it are dropped. The result is in ascending
// start order. The strand of the first exon applies to all of them.
func ShortenExons(exons []*gtf.Line, distance int64) ([]*gtf.Line, error) {
	if distance <= 0 {
		return nil, ErrInvalidDistance
	}
	if len(exons) == 0 {
		return nil, nil
	}

	strand := exons[0].Strand
	ordered := make([]*gtf.Line, len(exons))
	copy(ordered, exons)

	// 3' to 5' traversal order
	switch strand {
	case seq.Plus:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Start > ordered[j].Start
		})
	case seq.Minus:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Start < ordered[j].Start
		})
	default:
		return nil, &InvalidStrandError{Strand: exons[0].StrandChar()}
	}

	kept := make([]*gtf.Line, 0, len(ordered))
	var consumed int64
	for _, e := range ordered {
		if consumed+e.Len() < distance {
			kept = append(kept, e)
			consumed += e.Len()
			continue
		}

		kept = append(kept, clip(e, strand, distance-consumed))
		break
	}

	// Back to genomic order
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})

	return kept, nil
}

// clip returns a copy of the boundary exon e reduced to the remaining bases
// at its 3' end. Coordinates are inclusive, so the result spans exactly
// remaining bases: the start moves up on the plus strand and the end moves
// down on the minus strand.
func clip(e *gtf.Line, strand seq.Strand, remaining int64) *gtf.Line {
	if strand == seq.Plus {
		return e.WithCoords(e.End-remaining+1, e.End)
	}
	return e.WithCoords(e.Start, e.Start+remaining-1)
}
