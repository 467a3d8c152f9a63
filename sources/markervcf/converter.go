// Package markervcf converts VCF variant records into genetic markers.
//
// Each record becomes one GeneticMarker placed on its chromosome. The
// marker identifier is the record ID when present, otherwise
// "chromosome_position". Anonymous records at a position already seen
// are skipped, so multi-allelic sites without IDs emit a single
// marker; named records always convert, deduplicated by name.
package markervcf

import (
	"fmt"
	"io"

	"github.com/brentp/vcfgo"
	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/sources"
)

// Converter emits GeneticMarker and Location items from VCF.
type Converter struct {
	*sources.Emitter
	seen map[string]bool
}

// New creates a Converter emitting into e.
func New(e *sources.Emitter) *Converter {
	return &Converter{Emitter: e, seen: make(map[string]bool)}
}

// Convert reads VCF from r and emits items.
func (c *Converter) Convert(r io.Reader) error {
	reader, err := vcfgo.NewReader(r, true)
	if err != nil {
		return fmt.Errorf("opening VCF: %w", err)
	}

	markers, skipped := 0, 0
	for {
		v := reader.Read()
		if v == nil {
			break
		}

		key := fmt.Sprintf("%s_%d", v.Chromosome, v.Pos)
		name := v.Id()
		if name == "" || name == "." {
			// Only anonymous records dedup by position; a named
			// record at a seen position is still a distinct marker.
			if c.seen[key] {
				skipped++
				continue
			}
			name = key
		}
		c.seen[key] = true

		if err := c.convertVariant(v, name); err != nil {
			return err
		}
		markers++
	}

	// vcfgo accumulates recoverable parse problems instead of failing
	// the read loop.
	if err := reader.Error(); err != nil {
		c.Log.Warn("VCF parse warnings", zap.Error(err))
	}

	c.Log.Info("converted VCF markers",
		zap.Int("markers", markers),
		zap.Int("duplicate_positions", skipped))
	return nil
}

func (c *Converter) convertVariant(v *vcfgo.Variant, name string) error {
	marker, created, err := c.BioEntity("GeneticMarker", name)
	if err != nil {
		return err
	}
	if !created {
		// The same ID at a second position keeps its first placement.
		return nil
	}
	marker.SetAttribute("type", markerType(v.Ref(), v.Alt()))

	chr, err := c.Chromosome(v.Chromosome)
	if err != nil {
		return err
	}
	start := int64(v.Pos)
	end := start + int64(len(v.Ref())) - 1
	_, err = c.Location(marker, chr, start, end, 0)
	return err
}

// markerType classifies a variant: single-base REF and ALTs make a
// SNP, anything else an indel.
func markerType(ref string, alts []string) string {
	if len(ref) != 1 {
		return "indel"
	}
	for _, alt := range alts {
		if len(alt) != 1 {
			return "indel"
		}
	}
	return "SNP"
}
