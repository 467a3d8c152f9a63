package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/brentp/xopen"
)

// TabReader reads tab-delimited files with optional header support.
// Blank lines and lines starting with '#' are skipped.
type TabReader struct {
	reader     *bufio.Reader
	headers    []string
	delimiter  string
	hasHeader  bool
	headerRead bool
}

// NewTabReader creates a new tab-delimited reader.
func NewTabReader(r io.Reader, hasHeader bool) *TabReader {
	return &TabReader{
		reader:    bufio.NewReader(r),
		delimiter: "\t",
		hasHeader: hasHeader,
	}
}

// Headers returns the header row. If the file has no headers,
// returns nil. Must be called before Read.
func (t *TabReader) Headers() ([]string, error) {
	if t.headerRead {
		return t.headers, nil
	}

	t.headerRead = true

	if !t.hasHeader {
		return nil, nil
	}

	line, err := t.readLine()
	if err != nil {
		return nil, err
	}

	t.headers = strings.Split(line, t.delimiter)
	return t.headers, nil
}

// Read reads the next row as a slice of strings.
// Returns io.EOF when there are no more rows.
func (t *TabReader) Read() ([]string, error) {
	// Ensure headers are read first if applicable
	if !t.headerRead {
		_, err := t.Headers()
		if err != nil {
			return nil, err
		}
	}

	line, err := t.readLine()
	if err != nil {
		return nil, err
	}

	return strings.Split(line, t.delimiter), nil
}

// FindColumn finds a column by name or 1-based index.
// If col is a number, returns the 0-based index.
// Otherwise, searches the headers for a matching name.
func (t *TabReader) FindColumn(col string) (int, error) {
	// Try to parse as number (1-based)
	if idx, err := strconv.Atoi(col); err == nil {
		if idx < 1 {
			return 0, fmt.Errorf("invalid column index: %d", idx)
		}
		return idx - 1, nil // Convert to 0-based
	}

	// Search headers for matching name
	for i, h := range t.headers {
		if h == col {
			return i, nil
		}
	}

	return 0, fmt.Errorf("column %q not found in headers", col)
}

// readLine reads a line, skipping blank and comment lines.
func (t *TabReader) readLine() (string, error) {
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil && len(line) == 0 {
			return "", err
		}

		// Trim newline
		line = strings.TrimRight(line, "\r\n")

		// Skip blank lines and comments
		if (line == "" || strings.HasPrefix(line, "#")) && err == nil {
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			return "", io.EOF
		}

		return line, nil
	}
}

// OpenInput opens the input file, or returns stdin if path is empty.
// Gzipped files are decompressed transparently.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return r, nil
}

// OpenOutput opens the output file, or returns stdout if path is empty.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// nopWriteCloser wraps a writer with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
