// Package cli provides shared plumbing for the lfconvert subcommands.
//
// This package provides the standard flag groups, gzip-aware input
// handling, and tab-delimited reading used by the flat-file converters.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ConvertOptions contains the options every converter subcommand takes.
type ConvertOptions struct {
	// Props is the path to the source properties YAML file.
	Props string

	// Output is the Items XML output path (empty = stdout).
	Output string

	// Verbose enables debug logging.
	Verbose bool

	// Overrides are "key,value" source property overrides applied on
	// top of the properties file.
	Overrides []string
}

// AddConvertFlags adds the standard converter flags to a cobra command.
func AddConvertFlags(cmd *cobra.Command, opts *ConvertOptions) {
	flags := cmd.Flags()

	flags.StringVarP(&opts.Props, "props", "p", "",
		"source properties YAML file")
	flags.StringVarP(&opts.Output, "output", "o", "",
		"Items XML output file (default: stdout)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false,
		"enable debug logging")
	flags.StringArrayVar(&opts.Overrides, "set", nil,
		"override a source property, e.g. --set genetic_map,PvConsensus")

	_ = cmd.MarkFlagRequired("props")
}

// ChadoOptions contains the database options for the chado subcommands.
type ChadoOptions struct {
	// DSN is an explicit connection string. When empty, the resolution
	// chain (CHADO_DB_URL, ~/.chado_dsn) is consulted, and finally the
	// host/user/database flags with an interactive password prompt.
	DSN string

	// Host, Port, User and Database assemble a DSN when no source in
	// the chain provides one.
	Host     string
	Port     int
	User     string
	Database string

	// Schema is the schema chado tables live in.
	Schema string

	// QueryTimeout bounds individual queries.
	QueryTimeout time.Duration
}

// AddChadoFlags adds the database flags to a cobra command.
func AddChadoFlags(cmd *cobra.Command, opts *ChadoOptions) {
	flags := cmd.Flags()

	flags.StringVar(&opts.DSN, "dsn", "",
		"postgres connection URL (default: CHADO_DB_URL or ~/.chado_dsn)")
	flags.StringVar(&opts.Host, "host", "localhost",
		"database host, used when no DSN is available")
	flags.IntVar(&opts.Port, "port", 5432,
		"database port")
	flags.StringVar(&opts.User, "user", "",
		"database user")
	flags.StringVar(&opts.Database, "database", "chado",
		"database name")
	flags.StringVar(&opts.Schema, "schema", "chado",
		"schema the chado tables live in")
	flags.DurationVar(&opts.QueryTimeout, "query-timeout", 5*time.Minute,
		"per-query timeout")
}

// ParseKeyValue splits a "key,value" flag specification.
func ParseKeyValue(spec string) (string, string, error) {
	for i := 1; i < len(spec)-1; i++ {
		if spec[i] == ',' {
			return spec[:i], spec[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid specification %q: expected key,value", spec)
}
