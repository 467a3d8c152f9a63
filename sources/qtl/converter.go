// Package qtl converts QTL experiment flat files into items.
//
// Three tab-delimited inputs are supported: the QTL file (one QTL per
// line with its trait and linkage-group range), the phenotype file
// (trait measurements with ontology terms), and the QTL-marker file
// (marker associations). All three feed one Emitter, so a trait named
// in the QTL file and measured in the phenotype file merges into a
// single Phenotype item.
package qtl

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/internal/cli"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

// Converter emits QTL, Phenotype, LinkageGroupRange and GeneticMarker
// items from QTL experiment files.
type Converter struct {
	*sources.Emitter
}

// New creates a Converter emitting into e.
func New(e *sources.Emitter) *Converter {
	return &Converter{Emitter: e}
}

// ConvertQTL reads the QTL file: qtl name, trait name, linkage group,
// start, end, and optionally the favorable allele source.
func (c *Converter) ConvertQTL(r io.Reader) error {
	tr := cli.NewTabReader(r, false)

	count := 0
	for {
		row, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading QTL file: %w", err)
		}
		if len(row) < 5 {
			return fmt.Errorf("QTL row needs at least 5 columns, got %d", len(row))
		}

		qtl, err := c.qtl(row[0])
		if err != nil {
			return err
		}

		if trait := row[1]; trait != "" {
			ph, err := c.phenotype(trait)
			if err != nil {
				return err
			}
			qtl.SetReference("phenotype", ph)
			ph.AddToCollection("qtls", qtl)
		}

		begin, err := parsePosition(row[3])
		if err != nil {
			return fmt.Errorf("QTL %s: %w", row[0], err)
		}
		end, err := parsePosition(row[4])
		if err != nil {
			return fmt.Errorf("QTL %s: %w", row[0], err)
		}
		if end < begin {
			begin, end = end, begin
		}

		lg, err := c.linkageGroup(row[2])
		if err != nil {
			return err
		}
		lgr, err := c.Item("LinkageGroupRange")
		if err != nil {
			return err
		}
		lgr.SetAttribute("begin", formatPosition(begin))
		lgr.SetAttribute("end", formatPosition(end))
		lgr.SetReference("linkageGroup", lg)
		qtl.AddToCollection("linkageGroupRanges", lgr)

		if len(row) > 5 && row[5] != "" {
			qtl.SetAttribute("favorableAlleleSource", row[5])
		}
		count++
	}

	c.Log.Info("converted QTLs", zap.Int("qtls", count))
	return nil
}

// ConvertPhenotypes reads the phenotype file: phenotype name, ontology
// identifier, measured value.
func (c *Converter) ConvertPhenotypes(r io.Reader) error {
	tr := cli.NewTabReader(r, false)

	count := 0
	for {
		row, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading phenotype file: %w", err)
		}
		if len(row) < 3 {
			return fmt.Errorf("phenotype row needs 3 columns, got %d", len(row))
		}

		ph, err := c.phenotype(row[0])
		if err != nil {
			return err
		}
		if row[1] != "" {
			ph.SetAttribute("ontologyIdentifier", row[1])
		}
		if row[2] != "" {
			ph.SetAttribute("measurement", row[2])
		}
		count++
	}

	c.Log.Info("converted phenotypes", zap.Int("phenotypes", count))
	return nil
}

// ConvertMarkers reads the QTL-marker file: qtl name, marker name.
func (c *Converter) ConvertMarkers(r io.Reader) error {
	tr := cli.NewTabReader(r, false)

	count := 0
	for {
		row, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading QTL-marker file: %w", err)
		}
		if len(row) < 2 {
			return fmt.Errorf("QTL-marker row needs 2 columns, got %d", len(row))
		}

		qtl, err := c.qtl(row[0])
		if err != nil {
			return err
		}
		marker, err := c.Marker(row[1])
		if err != nil {
			return err
		}
		qtl.AddToCollection("markers", marker)
		count++
	}

	c.Log.Info("converted QTL-marker associations", zap.Int("associations", count))
	return nil
}

func (c *Converter) qtl(name string) (*items.Item, error) {
	qtl, _, err := c.BioEntity("QTL", name)
	return qtl, err
}

func (c *Converter) phenotype(name string) (*items.Item, error) {
	ph, created, err := c.GetOrCreate("Phenotype", name)
	if err != nil {
		return nil, err
	}
	if created {
		ph.SetAttribute("primaryIdentifier", name)
		org, err := c.Organism()
		if err != nil {
			return nil, err
		}
		ph.SetReference("organism", org)
	}
	return ph, nil
}

// linkageGroup memoizes linkage groups by name, attaching the
// configured genetic map when one is named in the source properties.
func (c *Converter) linkageGroup(name string) (*items.Item, error) {
	lg, created, err := c.BioEntity("LinkageGroup", name)
	if err != nil {
		return nil, err
	}
	if created && c.Config().GeneticMap != "" {
		gm, gmCreated, err := c.GetOrCreate("GeneticMap", c.Config().GeneticMap)
		if err != nil {
			return nil, err
		}
		if gmCreated {
			gm.SetAttribute("primaryIdentifier", c.Config().GeneticMap)
			org, err := c.Organism()
			if err != nil {
				return nil, err
			}
			gm.SetReference("organism", org)
		}
		lg.SetReference("geneticMap", gm)
	}
	return lg, nil
}

func parsePosition(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed map position %q", s)
	}
	return v, nil
}

func formatPosition(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
