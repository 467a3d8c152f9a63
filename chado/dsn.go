package chado

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// DSN resolution checks multiple sources in order of priority:
//  1. Explicitly provided DSN (usually the --dsn flag)
//  2. The CHADO_DB_URL environment variable
//  3. A DSN file (~/.chado_dsn)
//
// When none of these yields a DSN, the caller can fall back to
// PromptDSN to assemble one interactively.

// DSNSource is a source that can provide a connection string.
type DSNSource interface {
	// DSN returns the connection string from this source, or empty
	// string if the source has none.
	DSN() (string, error)

	// Name returns a human-readable name for this source.
	Name() string
}

// explicitSource wraps a DSN supplied directly by the caller.
type explicitSource struct {
	dsn string
}

// ExplicitSource creates a DSNSource for a directly supplied DSN.
func ExplicitSource(dsn string) DSNSource {
	return &explicitSource{dsn: dsn}
}

func (s *explicitSource) DSN() (string, error) { return s.dsn, nil }
func (s *explicitSource) Name() string         { return "explicit DSN" }

// envSource reads a DSN from an environment variable.
type envSource struct {
	varName string
}

// EnvSource creates a DSNSource that reads the named environment variable.
func EnvSource(varName string) DSNSource {
	return &envSource{varName: varName}
}

func (s *envSource) DSN() (string, error) {
	return os.Getenv(s.varName), nil
}

func (s *envSource) Name() string {
	return fmt.Sprintf("environment variable %s", s.varName)
}

// fileSource reads a DSN from a file.
type fileSource struct {
	path string
}

// FileSource creates a DSNSource that reads from the given file path.
func FileSource(path string) DSNSource {
	return &fileSource{path: path}
}

func (s *fileSource) DSN() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // Not an error, just no DSN
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *fileSource) Name() string {
	return fmt.Sprintf("file %s", s.path)
}

// DefaultDSNPath returns the default path for the DSN file.
func DefaultDSNPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".chado_dsn")
}

// DefaultSources returns the default DSN source chain for an explicit
// DSN, which may be empty.
func DefaultSources(explicit string) []DSNSource {
	sources := []DSNSource{
		ExplicitSource(explicit),
		EnvSource("CHADO_DB_URL"),
	}
	if path := DefaultDSNPath(); path != "" {
		sources = append(sources, FileSource(path))
	}
	return sources
}

// ResolveDSN resolves a connection string using the default source
// chain. Returns "" if no source has one.
func ResolveDSN(explicit string) (string, error) {
	return ResolveDSNFromSources(DefaultSources(explicit))
}

// ResolveDSNFromSources resolves a connection string using the provided
// source chain. Returns "" if no source has one.
func ResolveDSNFromSources(sources []DSNSource) (string, error) {
	for _, source := range sources {
		dsn, err := source.DSN()
		if err != nil {
			return "", fmt.Errorf("error reading from %s: %w", source.Name(), err)
		}
		if dsn != "" {
			return dsn, nil
		}
	}
	return "", nil
}

// PromptDSN assembles a connection string from connection parameters,
// reading the password interactively without echo.
func PromptDSN(host string, port int, user, database string) (string, error) {
	if host == "" || user == "" || database == "" {
		return "", fmt.Errorf("host, user and database are required to prompt for a password")
	}
	if port <= 0 {
		port = 5432
	}

	fmt.Fprintf(os.Stderr, "Password for %s@%s/%s: ", user, host, database)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return BuildDSN(host, port, user, string(password), database), nil
}

// BuildDSN formats a postgres connection URL from its parts.
func BuildDSN(host string, port int, user, password, database string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + database,
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	return u.String()
}
