package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/LegumeFederation/lfconvert/internal/cli"
	"github.com/LegumeFederation/lfconvert/sources"
	"github.com/LegumeFederation/lfconvert/sources/cmap"
	"github.com/LegumeFederation/lfconvert/sources/fastaseq"
	"github.com/LegumeFederation/lfconvert/sources/genefamily"
	"github.com/LegumeFederation/lfconvert/sources/markervcf"
	"github.com/LegumeFederation/lfconvert/sources/qtl"
	"github.com/LegumeFederation/lfconvert/sources/synteny"
)

// fileCommand builds a one-input-file converter subcommand.
func fileCommand(use, short string, convert func(*sources.Emitter, io.Reader) error) *cobra.Command {
	opts := &cli.ConvertOptions{}

	cmd := &cobra.Command{
		Use:   use + " [input]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, use)
			if err != nil {
				return err
			}

			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			if err := convert(env.emitter, in); err != nil {
				return err
			}
			return env.finish(opts.Output)
		},
	}

	cli.AddConvertFlags(cmd, opts)
	return cmd
}

func init() {
	rootCmd.AddCommand(
		fileCommand("synteny", "Convert DAGchainer synteny GFF",
			func(e *sources.Emitter, r io.Reader) error {
				return synteny.New(e).Convert(r)
			}),
		fileCommand("gene-family", "Convert gene family membership files",
			func(e *sources.Emitter, r io.Reader) error {
				return genefamily.New(e).Convert(r)
			}),
		fileCommand("qtl", "Convert QTL experiment files",
			func(e *sources.Emitter, r io.Reader) error {
				return qtl.New(e).ConvertQTL(r)
			}),
		fileCommand("phenotype", "Convert phenotype measurement files",
			func(e *sources.Emitter, r io.Reader) error {
				return qtl.New(e).ConvertPhenotypes(r)
			}),
		fileCommand("qtl-markers", "Convert QTL-marker association files",
			func(e *sources.Emitter, r io.Reader) error {
				return qtl.New(e).ConvertMarkers(r)
			}),
		fileCommand("cmap", "Convert CMap tab-delimited exports",
			func(e *sources.Emitter, r io.Reader) error {
				return cmap.New(e).Convert(r)
			}),
		fileCommand("vcf-markers", "Convert VCF variants to genetic markers",
			func(e *sources.Emitter, r io.Reader) error {
				return markervcf.New(e).Convert(r)
			}),
		fileCommand("fasta", "Convert FASTA assemblies to sequence items",
			func(e *sources.Emitter, r io.Reader) error {
				return fastaseq.New(e).Convert(r)
			}),
	)
}
