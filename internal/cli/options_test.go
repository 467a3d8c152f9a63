package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestAddConvertFlags(t *testing.T) {
	cmd := &cobra.Command{}
	opts := &ConvertOptions{}

	AddConvertFlags(cmd, opts)

	for _, name := range []string{"props", "output", "verbose", "set"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not found", name)
		}
	}

	shortFlags := map[string]string{
		"p": "props",
		"o": "output",
		"v": "verbose",
	}
	for short, long := range shortFlags {
		if cmd.Flags().ShorthandLookup(short) == nil {
			t.Errorf("short flag %q (for %s) not found", short, long)
		}
	}
}

func TestAddChadoFlags(t *testing.T) {
	cmd := &cobra.Command{}
	opts := &ChadoOptions{}

	AddChadoFlags(cmd, opts)

	for _, name := range []string{"dsn", "host", "port", "user", "database", "schema", "query-timeout"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag %q not found", name)
		}
	}

	// Check defaults
	if opts.Port != 5432 {
		t.Errorf("Port default = %d, want 5432", opts.Port)
	}
	if opts.Schema != "chado" {
		t.Errorf("Schema default = %q, want chado", opts.Schema)
	}
}
