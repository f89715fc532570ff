// Package main provides the gtf3prime command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/gtf3prime/internal/annotation"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Configuration keys shared by flags, environment and config file.
const (
	keyCanonical = "canonical"
	keyChrom     = "chrom"
	keyBGZF      = "bgzf"
	keyLevel     = "level"
	keyVerbose   = "verbose"
)

const configFileName = ".gtf3prime.yaml"

// usageError marks errors caused by bad command-line input.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(viper.New())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "gtf3prime <gtf> <distance> <outfile>",
		Short: "Restrict a GTF to the 3' end of each gene's canonical transcript",
		Long: `Keep protein-coding genes and the exons of their canonical transcript,
clipped so that at most <distance> exonic bases measured from the 3' end
remain. The output is a gzip-compressed GTF.`,
		Example: `  gtf3prime --canonical canonical.tsv Homo_sapiens.GRCh38.110.gtf.gz 500 3prime.gtf.gz
  gtf3prime --canonical canonical.tsv --chrom all --bgzf in.gtf.gz 1000 out.gtf.gz`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          positionalArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := optionsFrom(v, args)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), v.GetBool(keyVerbose))
			defer logger.Sync() //nolint:errcheck

			return extract(opts, logger)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/"+configFileName+")")

	flags := cmd.Flags()
	flags.String(keyCanonical, "", "Canonical transcript table: transcript ID and flag, tab-separated (required)")
	flags.String(keyChrom, annotation.DefaultChromScope, `Chromosome prefix to read; reading stops at the first other chromosome ("all" reads everything)`)
	flags.Bool(keyBGZF, false, "Write BGZF (tabix-indexable) instead of plain gzip")
	flags.Int(keyLevel, 0, "gzip compression level (0: default)")
	flags.BoolP(keyVerbose, "v", false, "Debug logging")

	for _, key := range []string{keyCanonical, keyChrom, keyBGZF, keyLevel, keyVerbose} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}

	v.SetEnvPrefix("GTF3PRIME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(newConfigCmd(v, &cfgFile))

	return cmd
}

func positionalArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return &usageError{msg: fmt.Sprintf("expected 3 arguments (gtf, distance, outfile), got %d\n\n%s", len(args), cmd.UsageString())}
	}
	return nil
}

// initConfig reads the config file if it exists.
func initConfig(v *viper.Viper, cfgFile string) error {
	path, err := configPath(cfgFile)
	if err != nil {
		return err
	}
	v.SetConfigFile(path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat config: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

func configPath(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configFileName), nil
}

// options holds the resolved settings of one run.
type options struct {
	gtfPath       string
	distance      int64
	outPath       string
	canonicalPath string
	chromScope    string
	bgzf          bool
	level         int
}

func optionsFrom(v *viper.Viper, args []string) (options, error) {
	distance, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || distance <= 0 {
		return options{}, &usageError{msg: fmt.Sprintf("distance must be a positive integer, got %q", args[1])}
	}

	canonicalPath := v.GetString(keyCanonical)
	if canonicalPath == "" {
		return options{}, &usageError{msg: "--canonical is required"}
	}

	chrom := v.GetString(keyChrom)
	if strings.EqualFold(chrom, "all") {
		chrom = ""
	}

	return options{
		gtfPath:       args[0],
		distance:      distance,
		outPath:       args[2],
		canonicalPath: canonicalPath,
		chromScope:    chrom,
		bgzf:          v.GetBool(keyBGZF),
		level:         v.GetInt(keyLevel),
	}, nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}
