// Package sequence converts chado genomic features into items.
//
// The processor reads the configured organism's chromosomes,
// supercontigs and genes from the feature table, placing genes with
// their featureloc rows.
package sequence

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/chado"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

// Store is the chado access the processor needs. *chado.Client
// satisfies it.
type Store interface {
	Organism(ctx context.Context, organismID int) (chado.Organism, error)
	TermID(ctx context.Context, cv, name string) (int, error)
	FeaturesOfType(ctx context.Context, organismID, typeID int) ([]chado.Feature, error)
	LocatedFeatures(ctx context.Context, organismID, typeID int) ([]chado.LocatedFeature, error)
}

// Processor emits Organism, Chromosome, Supercontig, Gene and Location
// items from a chado database.
type Processor struct {
	*sources.Emitter
	db Store
}

// New creates a Processor over db emitting into e.
func New(db Store, e *sources.Emitter) *Processor {
	return &Processor{Emitter: e, db: db}
}

// Run executes the full pass.
func (p *Processor) Run(ctx context.Context) error {
	cfg := p.Config()
	if cfg.OrganismID == 0 {
		return fmt.Errorf("chado sequence processor requires organism_id in source properties")
	}

	org, err := p.db.Organism(ctx, cfg.OrganismID)
	if err != nil {
		return err
	}
	orgItem, err := p.Organism()
	if err != nil {
		return err
	}
	orgItem.SetAttribute("genus", org.Genus)
	orgItem.SetAttribute("species", org.Species)
	orgItem.SetAttribute("abbreviation", org.Abbreviation)
	orgItem.SetAttribute("commonName", org.CommonName)

	chrType, err := p.db.TermID(ctx, "sequence", "chromosome")
	if err != nil {
		return err
	}
	scType, err := p.db.TermID(ctx, "sequence", "supercontig")
	if err != nil {
		return err
	}
	geneType, err := p.db.TermID(ctx, "sequence", "gene")
	if err != nil {
		return err
	}

	supercontigs, err := p.processSequences(ctx, chrType, scType)
	if err != nil {
		return err
	}

	return p.processGenes(ctx, geneType, supercontigs)
}

// processSequences emits the chromosome and supercontig features and
// returns the set of supercontig uniquenames, so gene placement can
// pick the right target class later.
func (p *Processor) processSequences(ctx context.Context, chrType, scType int) (map[string]bool, error) {
	cfg := p.Config()

	chrs, err := p.db.FeaturesOfType(ctx, cfg.OrganismID, chrType)
	if err != nil {
		return nil, err
	}
	for _, f := range chrs {
		chr, err := p.Chromosome(f.UniqueName)
		if err != nil {
			return nil, err
		}
		setSequenceAttributes(chr, f)
	}

	scs, err := p.db.FeaturesOfType(ctx, cfg.OrganismID, scType)
	if err != nil {
		return nil, err
	}
	supercontigs := make(map[string]bool, len(scs))
	for _, f := range scs {
		sc, _, err := p.BioEntity("Supercontig", f.UniqueName)
		if err != nil {
			return nil, err
		}
		setSequenceAttributes(sc, f)
		supercontigs[f.UniqueName] = true
	}

	p.Log.Info("processed sequences",
		zap.Int("chromosomes", len(chrs)),
		zap.Int("supercontigs", len(scs)))
	return supercontigs, nil
}

func (p *Processor) processGenes(ctx context.Context, geneType int, supercontigs map[string]bool) error {
	cfg := p.Config()

	genes, err := p.db.LocatedFeatures(ctx, cfg.OrganismID, geneType)
	if err != nil {
		return err
	}

	located := 0
	for _, f := range genes {
		gene, created, err := p.BioEntity("Gene", f.UniqueName)
		if err != nil {
			return err
		}
		if created && f.Name != "" {
			gene.SetAttribute("secondaryIdentifier", f.Name)
		}

		// A gene with no featureloc row is stored without a Location.
		if f.SrcUniqueName == "" || f.Fmin < 0 || f.Fmax < 0 {
			continue
		}

		targetClass := "Chromosome"
		if supercontigs[f.SrcUniqueName] {
			targetClass = "Supercontig"
		}
		tgt, _, err := p.BioEntity(targetClass, f.SrcUniqueName)
		if err != nil {
			return err
		}

		// chado stores interbase coordinates; items carry 1-based.
		if _, err := p.Location(gene, tgt, f.Fmin+1, f.Fmax, f.Strand); err != nil {
			return err
		}
		located++
	}

	p.Log.Info("processed genes",
		zap.Int("genes", len(genes)),
		zap.Int("located", located))
	return nil
}

func setSequenceAttributes(it *items.Item, f chado.Feature) {
	if f.Name != "" {
		it.SetAttribute("secondaryIdentifier", f.Name)
	}
	if f.SeqLen > 0 {
		it.SetAttribute("length", strconv.Itoa(f.SeqLen))
	}
}
