// Package canonical loads the set of canonical transcript IDs.
package canonical

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/gtf3prime/internal/gtf"
)

// ensemblPrefix starts every Ensembl stable ID (ENST, ENSMUST, ...).
const ensemblPrefix = "ENS"

// Set holds canonical transcript IDs. Membership is exact, except that an
// unversioned Ensembl ID also matches any version of that ID
// (ENST00000311936 matches ENST00000311936.8, but ENST00000311936.5 does not).
type Set struct {
	ids map[string]struct{}
}

// NewSet creates a set from transcript IDs.
func NewSet(ids ...string) *Set {
	s := &Set{ids: make(map[string]struct{})}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports whether the transcript is canonical.
func (s *Set) Contains(transcriptID string) bool {
	if transcriptID == "" {
		return false
	}
	if _, ok := s.ids[transcriptID]; ok {
		return true
	}
	if !strings.HasPrefix(transcriptID, ensemblPrefix) {
		return false
	}
	_, ok := s.ids[gtf.StripVersion(transcriptID)]
	return ok
}

// Len returns the number of distinct transcript IDs in the set.
func (s *Set) Len() int {
	return len(s.ids)
}

// Load reads a canonical transcript table from path. The file may be gzipped.
func Load(path string) (*Set, error) {
	rc, err := gtf.Open(path, "canonical")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return Parse(rc)
}

// Parse reads tab-separated (transcript ID, flag) rows. A transcript is
// canonical when its flag is non-empty and is not one of "0", "false", "no"
// or "nan" (case-insensitive). Blank lines, # comments and rows without a
// flag column are skipped.
func Parse(reader io.Reader) (*Set, error) {
	s := NewSet()
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}

		transcript := strings.TrimSpace(fields[0])
		if transcript == "" || !isSet(fields[1]) {
			continue
		}

		s.ids[transcript] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan canonical transcripts: %w", err)
	}

	return s, nil
}

func isSet(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "0", "false", "no", "nan":
		return false
	}
	return true
}
