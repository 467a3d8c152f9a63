// Package synteny converts DAGchainer-style synteny GFF into items.
// Both the GFF2 and GFF3 dialects are accepted.
//
// Each syntenic_region record carries the source region in its own
// coordinates and the target region in a matches attribute
// (chromosome:start..end). A block is stored once per region pair: a
// record describing an already-stored pair in the reversed direction
// is skipped.
package synteny

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

// Converter emits SyntenyBlock and SyntenicRegion items from synteny GFF.
type Converter struct {
	*sources.Emitter
	seen map[string]bool
}

// New creates a Converter emitting into e.
func New(e *sources.Emitter) *Converter {
	return &Converter{Emitter: e, seen: make(map[string]bool)}
}

// region is one side of a synteny block, with 1-based coordinates.
type region struct {
	chromosome string
	start      int64
	end        int64
	strand     int
}

// slug is the region's canonical display form, used both as the region
// identifier and for block-pair ordering.
func (r region) slug() string {
	return fmt.Sprintf("%s:%d..%d", r.chromosome, r.start, r.end)
}

// Convert reads synteny GFF from r and emits items.
func (c *Converter) Convert(r io.Reader) error {
	reader := gff.NewReader(newGFFNormalizer(r))

	records, blocks := 0, 0
	for {
		f, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading synteny GFF: %w", err)
		}

		rec, ok := f.(*gff.Feature)
		if !ok || rec.Feature != "syntenic_region" {
			continue
		}
		records++

		stored, err := c.convertRecord(rec)
		if err != nil {
			return err
		}
		if stored {
			blocks++
		}
	}

	c.Log.Info("converted synteny blocks",
		zap.Int("records", records),
		zap.Int("blocks", blocks),
		zap.Int("reversed_duplicates", records-blocks))
	return nil
}

func (c *Converter) convertRecord(rec *gff.Feature) (bool, error) {
	src := region{
		chromosome: rec.SeqName,
		// biogo carries zero-based feature coordinates.
		start:  int64(rec.FeatStart) + 1,
		end:    int64(rec.FeatEnd),
		strand: strandOf(rec.FeatStrand),
	}

	matches := attributeValue(rec.FeatAttributes, "matches")
	if matches == "" {
		return false, fmt.Errorf("syntenic_region on %s at %d has no matches attribute", rec.SeqName, src.start)
	}
	tgt, err := parseMatches(matches)
	if err != nil {
		return false, err
	}

	// Canonical ordering so A->B and B->A describe the same block.
	a, b := src, tgt
	if b.slug() < a.slug() {
		a, b = b, a
	}
	key := a.slug() + "|" + b.slug()
	if c.seen[key] {
		c.Log.Debug("skipping reversed duplicate block", zap.String("block", key))
		return false, nil
	}
	c.seen[key] = true

	block, err := c.Item("SyntenyBlock")
	if err != nil {
		return false, err
	}
	name := a.slug() + ".." + b.slug()
	if src := c.Config().SyntenySource; src != "" {
		name = src + ":" + name
	}
	block.SetAttribute("primaryIdentifier", name)
	if ks := attributeValue(rec.FeatAttributes, "median_Ks"); ks != "" {
		block.SetAttribute("medianKs", ks)
	}
	ds, err := c.DataSet()
	if err != nil {
		return false, err
	}
	block.AddToCollection("dataSets", ds)

	srcItem, err := c.regionItem(a, block)
	if err != nil {
		return false, err
	}
	tgtItem, err := c.regionItem(b, block)
	if err != nil {
		return false, err
	}
	block.SetReference("sourceRegion", srcItem)
	block.SetReference("targetRegion", tgtItem)

	return true, nil
}

func (c *Converter) regionItem(r region, block *items.Item) (*items.Item, error) {
	it, err := c.Item("SyntenicRegion")
	if err != nil {
		return nil, err
	}
	it.SetAttribute("primaryIdentifier", r.slug())
	it.SetReference("syntenyBlock", block)

	chr, err := c.Chromosome(r.chromosome)
	if err != nil {
		return nil, err
	}
	if _, err := c.Location(it, chr, r.start, r.end, r.strand); err != nil {
		return nil, err
	}
	return it, nil
}

// parseMatches parses a "chromosome:start..end" matches attribute.
func parseMatches(s string) (region, error) {
	chrom, span, ok := strings.Cut(s, ":")
	if !ok {
		return region{}, fmt.Errorf("malformed matches attribute %q", s)
	}
	lo, hi, ok := strings.Cut(span, "..")
	if !ok {
		return region{}, fmt.Errorf("malformed matches span %q", s)
	}
	start, err := strconv.ParseInt(lo, 10, 64)
	if err != nil {
		return region{}, fmt.Errorf("malformed matches start %q: %w", s, err)
	}
	end, err := strconv.ParseInt(hi, 10, 64)
	if err != nil {
		return region{}, fmt.Errorf("malformed matches end %q: %w", s, err)
	}
	if end < start {
		start, end = end, start
	}
	return region{chromosome: chrom, start: start, end: end}, nil
}

// attributeValue finds a GFF attribute by tag. GFF3 "tag=value" forms
// are already rewritten by the normalizer before biogo parses them.
func attributeValue(attrs gff.Attributes, tag string) string {
	for _, a := range attrs {
		if a.Tag == tag {
			return a.Value
		}
	}
	return ""
}

// biogo's gff reader parses the GFF2 dialect only. gffNormalizer
// rewrites input line by line so GFF3 files convert too: the version
// pragma drops to 2 and "tag=value" attributes become "tag value".
type gffNormalizer struct {
	scanner *bufio.Scanner
	buf     []byte
	err     error
}

func newGFFNormalizer(r io.Reader) *gffNormalizer {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &gffNormalizer{scanner: sc}
}

func (n *gffNormalizer) Read(p []byte) (int, error) {
	for len(n.buf) == 0 {
		if n.err != nil {
			return 0, n.err
		}
		if !n.scanner.Scan() {
			if err := n.scanner.Err(); err != nil {
				n.err = err
			} else {
				n.err = io.EOF
			}
			continue
		}
		n.buf = append(n.buf, normalizeGFFLine(n.scanner.Text())...)
		n.buf = append(n.buf, '\n')
	}
	c := copy(p, n.buf)
	n.buf = n.buf[c:]
	return c, nil
}

func normalizeGFFLine(line string) string {
	if strings.HasPrefix(line, "##gff-version") {
		return "##gff-version 2"
	}
	if line == "" || strings.HasPrefix(line, "#") {
		return line
	}
	cols := strings.SplitN(line, "\t", 9)
	if len(cols) < 9 {
		return line
	}
	attrs := strings.Split(cols[8], ";")
	for i, a := range attrs {
		a = strings.TrimSpace(a)
		if tag, value, ok := strings.Cut(a, "="); ok && !strings.ContainsRune(tag, ' ') {
			a = tag + " " + value
		}
		attrs[i] = a
	}
	cols[8] = strings.Join(attrs, ";")
	return strings.Join(cols, "\t")
}

func strandOf(s seq.Strand) int {
	switch s {
	case seq.Plus:
		return 1
	case seq.Minus:
		return -1
	}
	return 0
}
