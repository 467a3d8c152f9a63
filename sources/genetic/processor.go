// Package genetic converts chado genetic map data into items.
//
// The processor assembles the linkage-group graph of one organism:
// genetic maps from featuremap, linkage groups and their lengths from
// featurepos spans, marker positions from featurepos, QTL ranges from
// featurepos, and QTL-marker associations from feature_relationship.
package genetic

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/chado"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

// Relationship types linking QTLs to their supporting markers.
var markerRelationTerms = []string{
	"nearest_marker",
	"flanking_marker_low",
	"flanking_marker_high",
}

// Store is the chado access the processor needs. *chado.Client
// satisfies it.
type Store interface {
	Organism(ctx context.Context, organismID int) (chado.Organism, error)
	TermID(ctx context.Context, cv, name string) (int, error)
	FeatureMaps(ctx context.Context, organismID int) ([]chado.FeatureMap, error)
	FeaturePositions(ctx context.Context, featureMapID int) ([]chado.FeaturePos, error)
	Relationships(ctx context.Context, organismID, typeID int) ([]chado.Relationship, error)
}

// Processor emits GeneticMap, LinkageGroup, GeneticMarker, QTL and
// position/range items from a chado database.
type Processor struct {
	*sources.Emitter
	db Store

	markerType int
	qtlType    int

	// lgLength accumulates the largest position seen per linkage
	// group item; lengths are applied after all maps are read.
	lgLength map[*items.Item]float64

	// position per marker|linkage-group pair; duplicate featurepos
	// rows keep the last position read.
	positions map[string]*items.Item

	// qtlSpan accumulates the observed position span per
	// QTL|linkage-group pair. spanOrder keeps first-seen order so
	// re-runs over the same input emit identical documents.
	qtlSpans  map[string]*qtlSpan
	spanOrder []string
}

type qtlSpan struct {
	qtl   *items.Item
	lg    *items.Item
	begin float64
	end   float64
}

// New creates a Processor over db emitting into e.
func New(db Store, e *sources.Emitter) *Processor {
	return &Processor{
		Emitter:   e,
		db:        db,
		lgLength:  make(map[*items.Item]float64),
		positions: make(map[string]*items.Item),
		qtlSpans:  make(map[string]*qtlSpan),
	}
}

// Run executes the full pass.
func (p *Processor) Run(ctx context.Context) error {
	cfg := p.Config()
	if cfg.OrganismID == 0 {
		return fmt.Errorf("chado genetic processor requires organism_id in source properties")
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

	if p.markerType, err = p.db.TermID(ctx, "sequence", "genetic_marker"); err != nil {
		return err
	}
	if p.qtlType, err = p.db.TermID(ctx, "sequence", "QTL"); err != nil {
		return err
	}

	maps, err := p.db.FeatureMaps(ctx, cfg.OrganismID)
	if err != nil {
		return err
	}
	for _, m := range maps {
		if err := p.processMap(ctx, m); err != nil {
			return err
		}
	}

	if err := p.applyQTLSpans(); err != nil {
		return err
	}
	p.applyLinkageGroupLengths()

	if err := p.processMarkerRelations(ctx); err != nil {
		return err
	}

	p.Log.Info("processed genetic maps", zap.Int("maps", len(maps)))
	return nil
}

// processMap reads one featuremap's positions, assembling linkage
// groups, marker positions and QTL spans.
func (p *Processor) processMap(ctx context.Context, m chado.FeatureMap) error {
	mapItem, created, err := p.GetOrCreate("GeneticMap", m.Name)
	if err != nil {
		return err
	}
	if created {
		mapItem.SetAttribute("primaryIdentifier", m.Name)
		mapItem.SetAttribute("description", m.Description)
		org, err := p.Organism()
		if err != nil {
			return err
		}
		mapItem.SetReference("organism", org)
		ds, err := p.DataSet()
		if err != nil {
			return err
		}
		mapItem.AddToCollection("dataSets", ds)
	}

	positions, err := p.db.FeaturePositions(ctx, m.FeatureMapID)
	if err != nil {
		return err
	}

	for _, pos := range positions {
		lg, err := p.linkageGroup(pos.MapFeatureName, mapItem)
		if err != nil {
			return err
		}
		if pos.Position > p.lgLength[lg] {
			p.lgLength[lg] = pos.Position
		}

		switch pos.FeatureTypeID {
		case p.markerType:
			if err := p.placeMarker(pos, lg); err != nil {
				return err
			}
		case p.qtlType:
			if err := p.spanQTL(pos, lg); err != nil {
				return err
			}
		}
		// The linkage group's own featurepos row (feature ==
		// map_feature) only contributes to the length above.
	}
	return nil
}

func (p *Processor) linkageGroup(name string, mapItem *items.Item) (*items.Item, error) {
	lg, created, err := p.BioEntity("LinkageGroup", name)
	if err != nil {
		return nil, err
	}
	if created {
		lg.SetReference("geneticMap", mapItem)
	}
	return lg, nil
}

// placeMarker records the marker's position on the linkage group. A
// marker positioned twice on the same group keeps the last position.
func (p *Processor) placeMarker(pos chado.FeaturePos, lg *items.Item) error {
	marker, err := p.Marker(pos.FeatureName)
	if err != nil {
		return err
	}

	key := pos.FeatureName + "|" + pos.MapFeatureName
	if lgp, ok := p.positions[key]; ok {
		lgp.SetAttribute("position", formatPosition(pos.Position))
		return nil
	}

	lgp, err := p.Item("LinkageGroupPosition")
	if err != nil {
		return err
	}
	lgp.SetAttribute("position", formatPosition(pos.Position))
	lgp.SetReference("linkageGroup", lg)
	marker.AddToCollection("linkageGroupPositions", lgp)
	p.positions[key] = lgp
	return nil
}

// spanQTL folds one featurepos row into the QTL's observed span on the
// linkage group. chado carries a QTL's extent as two or more rows, so
// the range item is only materialized after all rows are read.
func (p *Processor) spanQTL(pos chado.FeaturePos, lg *items.Item) error {
	qtl, _, err := p.BioEntity("QTL", pos.FeatureName)
	if err != nil {
		return err
	}

	key := pos.FeatureName + "|" + pos.MapFeatureName
	span, ok := p.qtlSpans[key]
	if !ok {
		p.qtlSpans[key] = &qtlSpan{qtl: qtl, lg: lg, begin: pos.Position, end: pos.Position}
		p.spanOrder = append(p.spanOrder, key)
		return nil
	}
	if pos.Position < span.begin {
		span.begin = pos.Position
	}
	if pos.Position > span.end {
		span.end = pos.Position
	}
	return nil
}

func (p *Processor) applyQTLSpans() error {
	for _, key := range p.spanOrder {
		span := p.qtlSpans[key]
		r, err := p.Item("LinkageGroupRange")
		if err != nil {
			return err
		}
		r.SetAttribute("begin", formatPosition(span.begin))
		r.SetAttribute("end", formatPosition(span.end))
		r.SetReference("linkageGroup", span.lg)
		span.qtl.AddToCollection("linkageGroupRanges", r)
	}
	return nil
}

func (p *Processor) applyLinkageGroupLengths() {
	for lg, length := range p.lgLength {
		lg.SetAttribute("length", formatPosition(length))
	}
}

// processMarkerRelations fills QTL.markers from the nearest-marker and
// flanking-marker relationship edges. Instances without the flanking
// terms loaded are tolerated.
func (p *Processor) processMarkerRelations(ctx context.Context) error {
	cfg := p.Config()
	edges := 0

	for _, term := range markerRelationTerms {
		typeID, err := p.db.TermID(ctx, "feature_relationship", term)
		if err != nil {
			if term != "nearest_marker" && errors.Is(err, chado.ErrTermNotFound) {
				p.Log.Debug("relationship term not loaded", zap.String("term", term))
				continue
			}
			return err
		}

		rels, err := p.db.Relationships(ctx, cfg.OrganismID, typeID)
		if err != nil {
			return err
		}
		for _, rel := range rels {
			qtl, _, err := p.BioEntity("QTL", rel.SubjectName)
			if err != nil {
				return err
			}
			marker, err := p.Marker(rel.ObjectName)
			if err != nil {
				return err
			}
			qtl.AddToCollection("markers", marker)
			edges++
		}
	}

	p.Log.Info("processed QTL-marker relations", zap.Int("edges", edges))
	return nil
}

func formatPosition(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
