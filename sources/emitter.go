// Package sources contains the shared converter plumbing.
//
// Every converter owns an Emitter: it wraps an item factory and a
// store-once tracker, memoizes get-or-create items by class and key,
// and wires each biological entity to the run's Organism, DataSource
// and DataSet items.
package sources

import (
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/config"
	"github.com/LegumeFederation/lfconvert/items"
)

// Emitter creates, deduplicates and tracks items for one converter run.
type Emitter struct {
	Factory *items.Factory
	Tracker *items.Tracker
	Log     *zap.Logger

	cfg   *config.Source
	byKey map[string]*items.Item

	organism   *items.Item
	dataSource *items.Item
	dataSet    *items.Item
}

// NewEmitter creates an Emitter for the given source properties.
func NewEmitter(cfg *config.Source, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{
		Factory: items.NewFactory("0"),
		Tracker: items.NewTracker(),
		Log:     log,
		cfg:     cfg,
		byKey:   make(map[string]*items.Item),
	}
}

// Config returns the source properties for this run.
func (e *Emitter) Config() *config.Source { return e.cfg }

// Item creates and stores a new item of the given class.
func (e *Emitter) Item(class string) (*items.Item, error) {
	it := e.Factory.NewItem(class)
	if err := e.Tracker.Store(it); err != nil {
		return nil, err
	}
	return it, nil
}

// GetOrCreate returns the item memoized under class and key, creating
// and storing it on first use. The second return reports whether the
// item was created by this call.
func (e *Emitter) GetOrCreate(class, key string) (*items.Item, bool, error) {
	mapKey := class + "|" + key
	if it, ok := e.byKey[mapKey]; ok {
		return it, false, nil
	}
	it, err := e.Item(class)
	if err != nil {
		return nil, false, err
	}
	e.byKey[mapKey] = it
	return it, true, nil
}

// Organism returns the run's Organism item, creating it on first use
// from the configured taxon.
func (e *Emitter) Organism() (*items.Item, error) {
	if e.organism != nil {
		return e.organism, nil
	}
	org, err := e.Item("Organism")
	if err != nil {
		return nil, err
	}
	org.SetAttribute("taxonId", e.cfg.TaxonID)
	if e.cfg.Variety != "" {
		org.SetAttribute("variety", e.cfg.Variety)
	}
	e.organism = org
	return org, nil
}

// DataSet returns the run's DataSet item (with its DataSource), creating
// both on first use from the source properties.
func (e *Emitter) DataSet() (*items.Item, error) {
	if e.dataSet != nil {
		return e.dataSet, nil
	}

	src, err := e.Item("DataSource")
	if err != nil {
		return nil, err
	}
	src.SetAttribute("name", e.cfg.DataSource.Name)
	src.SetAttribute("url", e.cfg.DataSource.URL)
	src.SetAttribute("description", e.cfg.DataSource.Description)

	ds, err := e.Item("DataSet")
	if err != nil {
		return nil, err
	}
	ds.SetAttribute("name", e.cfg.DataSet.Title)
	ds.SetAttribute("version", e.cfg.DataSet.Version)
	ds.SetAttribute("url", e.cfg.DataSet.URL)
	ds.SetAttribute("description", e.cfg.DataSet.Description)
	ds.SetReference("dataSource", src)

	e.dataSource = src
	e.dataSet = ds
	return ds, nil
}

// BioEntity returns the memoized entity of the given class and primary
// identifier, creating it on first use with the organism reference and
// the run's DataSet in its dataSets collection.
func (e *Emitter) BioEntity(class, primaryIdentifier string) (*items.Item, bool, error) {
	it, created, err := e.GetOrCreate(class, primaryIdentifier)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return it, false, nil
	}

	it.SetAttribute("primaryIdentifier", primaryIdentifier)

	org, err := e.Organism()
	if err != nil {
		return nil, false, err
	}
	it.SetReference("organism", org)

	ds, err := e.DataSet()
	if err != nil {
		return nil, false, err
	}
	it.AddToCollection("dataSets", ds)

	return it, true, nil
}

// Chromosome returns the memoized Chromosome for the given identifier.
func (e *Emitter) Chromosome(primaryIdentifier string) (*items.Item, error) {
	it, _, err := e.BioEntity("Chromosome", primaryIdentifier)
	return it, err
}

// Marker returns the memoized GeneticMarker for the given identifier.
func (e *Emitter) Marker(primaryIdentifier string) (*items.Item, error) {
	it, _, err := e.BioEntity("GeneticMarker", primaryIdentifier)
	return it, err
}

// Location creates a Location item placing feature on target with
// 1-based start/end coordinates. Strand is 1, -1 or 0 (unknown).
func (e *Emitter) Location(feature, target *items.Item, start, end int64, strand int) (*items.Item, error) {
	loc, err := e.Item("Location")
	if err != nil {
		return nil, err
	}
	loc.SetAttribute("start", strconv.FormatInt(start, 10))
	loc.SetAttribute("end", strconv.FormatInt(end, 10))
	if strand != 0 {
		loc.SetAttribute("strand", strconv.Itoa(strand))
	}
	loc.SetReference("feature", feature)
	loc.SetReference("locatedOn", target)
	feature.SetReference("chromosomeLocation", loc)
	return loc, nil
}

// Flush serializes every stored item as Items XML to w.
func (e *Emitter) Flush(w io.Writer) error {
	xw := items.NewXMLWriter(w)
	if err := xw.WriteAll(e.Tracker.Items()); err != nil {
		return fmt.Errorf("writing items: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("closing items document: %w", err)
	}
	e.Log.Info("wrote items", zap.Int("count", e.Tracker.Len()))
	return nil
}
