// Command lfconvert converts legume genomic and genetic data into
// Items XML for loading into the target object store.
//
// Each subcommand is one converter. The flat-file converters read
// delimited, GFF, VCF or FASTA inputs; the chado converters read from
// a chado Postgres database. Every run is driven by a source
// properties file naming the data source, data set and organism.
//
// Usage:
//
//	lfconvert <subcommand> [options] [input]
//
// Examples:
//
//	# Convert a synteny GFF
//	lfconvert synteny -p props.yaml -o items.xml synteny.gff3
//
//	# Convert QTLs, reading from stdin
//	lfconvert qtl -p props.yaml < qtl.tsv
//
//	# Pull genetic maps out of chado
//	lfconvert chado-genetic -p props.yaml --dsn postgres://user@db/chado
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/config"
	"github.com/LegumeFederation/lfconvert/internal/cli"
	"github.com/LegumeFederation/lfconvert/sources"
)

var rootCmd = &cobra.Command{
	Use:   "lfconvert",
	Short: "Convert legume data sources to Items XML",
	Long: `lfconvert converts genomic and genetic data sources into Items XML
for the target object store.

Flat-file subcommands take one input file argument (or read stdin when
the argument is "-" or omitted). Chado subcommands read from a chado
Postgres database located via --dsn, the CHADO_DB_URL environment
variable, or ~/.chado_dsn.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runEnv bundles the per-run wiring each subcommand needs.
type runEnv struct {
	cfg     *config.Source
	log     *zap.Logger
	emitter *sources.Emitter
}

// setup loads the source properties and builds the logger and emitter.
func setup(opts *cli.ConvertOptions, converter string) (*runEnv, error) {
	cfg, err := config.Load(opts.Props)
	if err != nil {
		return nil, err
	}
	for _, spec := range opts.Overrides {
		key, value, err := cli.ParseKeyValue(spec)
		if err != nil {
			return nil, err
		}
		if err := cfg.Set(key, value); err != nil {
			return nil, err
		}
	}

	log, err := newLogger(opts.Verbose)
	if err != nil {
		return nil, err
	}
	log = log.Named(converter)

	return &runEnv{
		cfg:     cfg,
		log:     log,
		emitter: sources.NewEmitter(cfg, log),
	}, nil
}

// finish writes the emitted items. The output file is only created
// after a successful conversion, so a failed run leaves nothing
// half-written behind.
func (env *runEnv) finish(outputPath string) error {
	out, err := cli.OpenOutput(outputPath)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	if err := env.emitter.Flush(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// inputArg returns the input path from the positional arguments.
func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// openInput opens the (possibly gzipped) input for a file subcommand.
func openInput(args []string) (io.ReadCloser, error) {
	return cli.OpenInput(inputArg(args))
}
