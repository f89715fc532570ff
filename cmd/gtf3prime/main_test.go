package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGTF = `#!genome-build GRCh38
1	ensembl	gene	100	300	.	+	.	gene_id "ENSG01"; gene_biotype "protein_coding";
1	ensembl	transcript	100	300	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; gene_biotype "protein_coding";
1	ensembl	exon	100	150	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; exon_number "1";
1	ensembl	exon	200	300	.	+	.	gene_id "ENSG01"; transcript_id "ENST01"; exon_number "2";
1	ensembl	exon	200	280	.	+	.	gene_id "ENSG01"; transcript_id "ENST09"; exon_number "2";
1	ensembl	gene	1000	1550	.	-	.	gene_id "ENSG02"; gene_biotype "protein_coding";
1	ensembl	exon	1500	1550	.	-	.	gene_id "ENSG02"; transcript_id "ENST02"; exon_number "1";
1	ensembl	exon	1000	1099	.	-	.	gene_id "ENSG02"; transcript_id "ENST02"; exon_number "2";
1	ensembl	gene	5000	6000	.	+	.	gene_id "ENSG03"; gene_biotype "lncRNA";
1	ensembl	exon	5000	6000	.	+	.	gene_id "ENSG03"; transcript_id "ENST03"; exon_number "1";
2	ensembl	gene	100	300	.	+	.	gene_id "ENSG04"; gene_biotype "protein_coding";
2	ensembl	exon	100	300	.	+	.	gene_id "ENSG04"; transcript_id "ENST04"; exon_number "1";
`

const testCanonical = "ENST01\t1\nENST02\t1\nENST03\t1\nENST04\t1\nENST09\t\n"

type fixture struct {
	dir       string
	gtf       string
	canonical string
	config    string
	out       string
}

func newFixture(t *testing.T, gtfContent string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		gtf:       filepath.Join(dir, "in.gtf.gz"),
		canonical: filepath.Join(dir, "canonical.tsv"),
		config:    filepath.Join(dir, "config.yaml"),
		out:       filepath.Join(dir, "out.gtf.gz"),
	}

	file, err := os.Create(f.gtf)
	require.NoError(t, err)
	gz := gzip.NewWriter(file)
	_, err = gz.Write([]byte(gtfContent))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, file.Close())

	require.NoError(t, os.WriteFile(f.canonical, []byte(testCanonical), 0o644))
	return f
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	b, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(b)
}

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Extract(t *testing.T) {
	f := newFixture(t, testGTF)

	code, _, stderr := runCmd("--config", f.config, "--canonical", f.canonical, f.gtf, "60", f.out)
	require.Equal(t, ExitSuccess, code, stderr)

	want := "1\tensembl\tgene\t100\t300\t.\t+\t.\t" + `gene_id "ENSG01"; gene_biotype "protein_coding";` + "\n" +
		"1\tensembl\texon\t241\t300\t.\t+\t.\t" + `gene_id "ENSG01"; transcript_id "ENST01"; exon_number "2";` + "\n" +
		"1\tensembl\tgene\t1000\t1550\t.\t-\t.\t" + `gene_id "ENSG02"; gene_biotype "protein_coding";` + "\n" +
		"1\tensembl\texon\t1000\t1059\t.\t-\t.\t" + `gene_id "ENSG02"; transcript_id "ENST02"; exon_number "2";` + "\n"
	assert.Equal(t, want, readOutput(t, f.out))
	assert.Contains(t, stderr, "loaded annotation")
}

func TestRun_AllChromosomesBGZF(t *testing.T) {
	f := newFixture(t, testGTF)

	code, _, stderr := runCmd("--config", f.config, "--canonical", f.canonical,
		"--chrom", "all", "--bgzf", f.gtf, "1000", f.out)
	require.Equal(t, ExitSuccess, code, stderr)

	got := readOutput(t, f.out)
	assert.Contains(t, got, `gene_id "ENSG04"`)
	assert.Contains(t, got, "1\tensembl\texon\t100\t150\t")
	assert.NotContains(t, got, "ENST09")
	assert.NotContains(t, got, "ENSG03")
}

func TestRun_CanonicalFromEnv(t *testing.T) {
	f := newFixture(t, testGTF)
	t.Setenv("GTF3PRIME_CANONICAL", f.canonical)

	code, _, stderr := runCmd("--config", f.config, f.gtf, "60", f.out)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.FileExists(t, f.out)
}

func TestRun_CanonicalFromConfig(t *testing.T) {
	f := newFixture(t, testGTF)

	code, stdout, stderr := runCmd("config", "set", "canonical", f.canonical, "--config", f.config)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Set canonical")

	code, _, stderr = runCmd("--config", f.config, f.gtf, "60", f.out)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.FileExists(t, f.out)
}

func TestRun_UsageErrors(t *testing.T) {
	f := newFixture(t, testGTF)

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{"--config", f.config}},
		{"two arguments", []string{"--config", f.config, "--canonical", f.canonical, f.gtf, "60"}},
		{"zero distance", []string{"--config", f.config, "--canonical", f.canonical, f.gtf, "0", f.out}},
		{"negative distance", []string{"--config", f.config, "--canonical", f.canonical, f.gtf, "-5", f.out}},
		{"non-integer distance", []string{"--config", f.config, "--canonical", f.canonical, f.gtf, "6O", f.out}},
		{"missing canonical", []string{"--config", f.config, f.gtf, "60", f.out}},
		{"unknown flag", []string{"--config", f.config, "--nope", f.gtf, "60", f.out}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(tt.args...)
			assert.Equal(t, ExitUsage, code, stderr)
			assert.NoFileExists(t, f.out)
		})
	}
}

func TestRun_Failures(t *testing.T) {
	malformed := strings.Replace(testGTF, "\t1500\t1550\t", "\t1500\tx\t", 1)

	tests := []struct {
		name    string
		gtf     string
		mutate  func(f *fixture)
		wantErr string
	}{
		{
			name:    "missing annotation",
			gtf:     testGTF,
			mutate:  func(f *fixture) { f.gtf += ".missing" },
			wantErr: "annotation file",
		},
		{
			name:    "missing canonical table",
			gtf:     testGTF,
			mutate:  func(f *fixture) { f.canonical += ".missing" },
			wantErr: "canonical file",
		},
		{
			name:    "malformed line",
			gtf:     malformed,
			wantErr: "line 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.gtf)
			if tt.mutate != nil {
				tt.mutate(&f)
			}

			code, _, stderr := runCmd("--config", f.config, "--canonical", f.canonical, f.gtf, "60", f.out)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, tt.wantErr)
			assert.NoFileExists(t, f.out, "no output on failure")
			assert.NoFileExists(t, f.out+".tmp")
		})
	}
}

func TestConfig_SetGetShow(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yaml")

	code, stdout, _ := runCmd("config", "--config", cfg)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No configuration set")

	code, _, stderr := runCmd("config", "set", "chrom", "2", "--config", cfg)
	require.Equal(t, ExitSuccess, code, stderr)

	code, _, stderr = runCmd("config", "set", "bgzf", "yes", "--config", cfg)
	require.Equal(t, ExitSuccess, code, stderr)

	code, stdout, _ = runCmd("config", "get", "chrom", "--config", cfg)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "2\n", stdout)

	code, stdout, _ = runCmd("config", "--config", cfg)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "chrom: \"2\"")
	assert.Contains(t, stdout, "bgzf: true")

	code, _, _ = runCmd("config", "set", "colour", "blue", "--config", cfg)
	assert.Equal(t, ExitUsage, code)

	code, _, _ = runCmd("config", "get", "colour", "--config", cfg)
	assert.Equal(t, ExitError, code)
}
