package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LegumeFederation/lfconvert/chado"
	"github.com/LegumeFederation/lfconvert/internal/cli"
	"github.com/LegumeFederation/lfconvert/sources/genetic"
	"github.com/LegumeFederation/lfconvert/sources/sequence"
)

// chadoCommand builds a chado-backed converter subcommand.
func chadoCommand(use, short string, run func(context.Context, *chado.Client, *runEnv) error) *cobra.Command {
	opts := &cli.ConvertOptions{}
	dbOpts := &cli.ChadoOptions{}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, use)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := connect(ctx, dbOpts, env)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := run(ctx, client, env); err != nil {
				return err
			}
			return env.finish(opts.Output)
		},
	}

	cli.AddConvertFlags(cmd, opts)
	cli.AddChadoFlags(cmd, dbOpts)
	return cmd
}

// connect resolves a DSN through the source chain and falls back to an
// interactive password prompt built from the connection flags.
func connect(ctx context.Context, dbOpts *cli.ChadoOptions, env *runEnv) (*chado.Client, error) {
	dsn, err := chado.ResolveDSN(dbOpts.DSN)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		if dbOpts.User == "" {
			return nil, fmt.Errorf("no DSN found: set --dsn, CHADO_DB_URL, ~/.chado_dsn, or pass --user for a password prompt")
		}
		dsn, err = chado.PromptDSN(dbOpts.Host, dbOpts.Port, dbOpts.User, dbOpts.Database)
		if err != nil {
			return nil, err
		}
	}

	return chado.Connect(ctx, dsn,
		chado.WithSchema(dbOpts.Schema),
		chado.WithQueryTimeout(dbOpts.QueryTimeout),
		chado.WithLogger(env.log),
	)
}

func init() {
	rootCmd.AddCommand(
		chadoCommand("chado-sequence", "Convert chado genomic features",
			func(ctx context.Context, client *chado.Client, env *runEnv) error {
				return sequence.New(client, env.emitter).Run(ctx)
			}),
		chadoCommand("chado-genetic", "Convert chado genetic maps, markers and QTLs",
			func(ctx context.Context, client *chado.Client, env *runEnv) error {
				return genetic.New(client, env.emitter).Run(ctx)
			}),
	)
}
