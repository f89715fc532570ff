package canonical

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gtf3prime/internal/gtf"
)

func TestParse_BiomartExport(t *testing.T) {
	// Biomart export: transcript stable ID, Ensembl canonical (1 or empty)
	input := "ENST00000311936\t1\n" +
		"ENST00000256078\t\n" +
		"ENST00000269305\t1\n" +
		"ENST00000413465\n" +
		"\n" +
		"# comment\t1\n"

	s, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("ENST00000311936"))
	assert.True(t, s.Contains("ENST00000269305"))
	assert.False(t, s.Contains("ENST00000256078"), "empty flag is not canonical")
	assert.False(t, s.Contains("ENST00000413465"), "missing flag column is not canonical")
}

func TestParse_FalsyFlags(t *testing.T) {
	tests := []struct {
		flag string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"Ensembl_canonical", true},
		{"0", false},
		{"False", false},
		{"no", false},
		{"nan", false},
		{"  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			s, err := Parse(strings.NewReader("ENST00000000001\t" + tt.flag + "\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Contains("ENST00000000001"))
		})
	}
}

func TestSet_Version(t *testing.T) {
	s := NewSet("ENST00000311936.8", "ENST00000269305")

	assert.True(t, s.Contains("ENST00000311936.8"))
	assert.False(t, s.Contains("ENST00000311936"), "versioned entry needs an exact match")
	assert.False(t, s.Contains("ENST00000311936.9"), "other versions are not canonical")
	assert.True(t, s.Contains("ENST00000269305"))
	assert.True(t, s.Contains("ENST00000269305.4"), "unversioned Ensembl entry matches any version")
	assert.False(t, s.Contains("ENST00000256078"))
	assert.False(t, s.Contains(""))
	assert.Equal(t, 2, s.Len())
}

func TestSet_IsoformSuffix(t *testing.T) {
	s, err := Parse(strings.NewReader("AT1G01010.1\t1\nAT1G01020\t1\nENST01.5\t1\n"))
	require.NoError(t, err)

	assert.True(t, s.Contains("AT1G01010.1"))
	assert.False(t, s.Contains("AT1G01010.2"), "different isoform suffix must be rejected")
	assert.False(t, s.Contains("AT1G01010"))
	assert.False(t, s.Contains("AT1G01020.1"), "suffix matching only applies to Ensembl IDs")
	assert.True(t, s.Contains("ENST01.5"))
	assert.False(t, s.Contains("ENST01.2"), "different version must be rejected")
}

func TestSet_Duplicates(t *testing.T) {
	s := NewSet("ENST00000311936", "ENST00000311936.8", "ENST00000311936")
	assert.Equal(t, 2, s.Len())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canonical.tsv")
	require.NoError(t, os.WriteFile(path, []byte("ENST00000311936\t1\r\nENST00000256078\t\r\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.True(t, s.Contains("ENST00000311936"))
	assert.False(t, s.Contains("ENST00000256078"))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.tsv"))
	require.Error(t, err)

	var missing *gtf.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "canonical", missing.Kind)
}
