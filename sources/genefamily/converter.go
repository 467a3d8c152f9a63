// Package genefamily converts gene family membership files into items.
//
// Input is tab-delimited: family identifier, description, then one
// column per member gene. Comment and blank lines are skipped. Genes
// are shared across families, and every ordered pair of distinct genes
// within a family yields one Homologue item.
package genefamily

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/internal/cli"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

// Converter emits GeneFamily, Gene and Homologue items.
type Converter struct {
	*sources.Emitter

	// pairs dedups homologue items by "gene|homologue" key, so a gene
	// listed twice in a family does not yield duplicate pairs.
	pairs map[string]bool
}

// New creates a Converter emitting into e.
func New(e *sources.Emitter) *Converter {
	return &Converter{Emitter: e, pairs: make(map[string]bool)}
}

// Convert reads a gene family file from r and emits items.
func (c *Converter) Convert(r io.Reader) error {
	tr := cli.NewTabReader(r, false)

	families := 0
	for {
		row, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading gene family file: %w", err)
		}
		if err := c.convertRow(row); err != nil {
			return err
		}
		families++
	}

	c.Log.Info("converted gene families", zap.Int("families", families))
	return nil
}

func (c *Converter) convertRow(row []string) error {
	if len(row) < 3 {
		return fmt.Errorf("gene family row needs family, description and at least one gene, got %d columns", len(row))
	}

	familyID, description, members := row[0], row[1], row[2:]

	family, created, err := c.GetOrCreate("GeneFamily", familyID)
	if err != nil {
		return err
	}
	if created {
		family.SetAttribute("primaryIdentifier", familyID)
		if description != "" {
			family.SetAttribute("description", description)
		}
		ds, err := c.DataSet()
		if err != nil {
			return err
		}
		family.AddToCollection("dataSets", ds)
	}

	var genes []*geneRef
	for _, name := range members {
		if name == "" {
			continue
		}
		gene, _, err := c.BioEntity("Gene", name)
		if err != nil {
			return err
		}
		gene.SetReference("geneFamily", family)
		family.AddToCollection("genes", gene)
		genes = append(genes, &geneRef{name: name, item: gene})
	}

	return c.pairHomologues(family, genes)
}

type geneRef struct {
	name string
	item *items.Item
}

// pairHomologues emits one Homologue per ordered pair of distinct
// member genes.
func (c *Converter) pairHomologues(family *items.Item, genes []*geneRef) error {
	for _, g := range genes {
		for _, h := range genes {
			if g.name == h.name {
				continue
			}
			key := g.name + "|" + h.name
			if c.pairs[key] {
				continue
			}
			c.pairs[key] = true

			hom, err := c.Item("Homologue")
			if err != nil {
				return err
			}
			hom.SetAttribute("type", "homologue")
			hom.SetReference("gene", g.item)
			hom.SetReference("homologue", h.item)
			hom.SetReference("geneFamily", family)
		}
	}
	return nil
}
