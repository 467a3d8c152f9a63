// Package cmap converts CMap tab-delimited exports into items.
//
// A CMap export is headered and carries one positioned feature per
// row. Rows are dispatched on feature_type_acc: markers become
// GeneticMarker items with a LinkageGroupPosition, QTLs become QTL
// items with a LinkageGroupRange, and other types are skipped. The
// linkage group is derived from map_acc.
package cmap

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/internal/cli"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

// Columns a CMap export must carry.
var requiredColumns = []string{
	"map_acc",
	"map_name",
	"feature_acc",
	"feature_name",
	"feature_aliases",
	"feature_start",
	"feature_stop",
	"feature_type_acc",
}

// Converter emits linkage groups, markers and QTLs from a CMap export.
type Converter struct {
	*sources.Emitter

	// synonyms dedups Synonym items by "feature|alias".
	synonyms map[string]bool

	// lgLength tracks the largest stop position per linkage group.
	lgLength map[*items.Item]float64
}

// New creates a Converter emitting into e.
func New(e *sources.Emitter) *Converter {
	return &Converter{
		Emitter:  e,
		synonyms: make(map[string]bool),
		lgLength: make(map[*items.Item]float64),
	}
}

// Convert reads a CMap export from r and emits items.
func (c *Converter) Convert(r io.Reader) error {
	tr := cli.NewTabReader(r, true)
	if _, err := tr.Headers(); err != nil {
		return fmt.Errorf("reading CMap header: %w", err)
	}

	cols := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		idx, err := tr.FindColumn(name)
		if err != nil {
			return fmt.Errorf("CMap export: %w", err)
		}
		cols[name] = idx
	}

	rows, skipped := 0, 0
	for {
		row, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CMap export: %w", err)
		}

		used, err := c.convertRow(row, cols)
		if err != nil {
			return err
		}
		if used {
			rows++
		} else {
			skipped++
		}
	}

	c.applyLinkageGroupLengths()

	c.Log.Info("converted CMap rows",
		zap.Int("rows", rows),
		zap.Int("skipped", skipped))
	return nil
}

func (c *Converter) convertRow(row []string, cols map[string]int) (bool, error) {
	field := func(name string) string {
		idx := cols[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	lg, err := c.linkageGroup(field("map_acc"), field("map_name"))
	if err != nil {
		return false, err
	}

	start, err := parsePosition(field("feature_start"))
	if err != nil {
		return false, fmt.Errorf("feature %s: %w", field("feature_acc"), err)
	}
	stop, err := parsePosition(field("feature_stop"))
	if err != nil {
		return false, fmt.Errorf("feature %s: %w", field("feature_acc"), err)
	}
	if stop > c.lgLength[lg] {
		c.lgLength[lg] = stop
	}

	name := field("feature_name")
	if name == "" {
		name = field("feature_acc")
	}

	switch strings.ToLower(field("feature_type_acc")) {
	case "marker":
		marker, err := c.Marker(name)
		if err != nil {
			return false, err
		}
		lgp, err := c.Item("LinkageGroupPosition")
		if err != nil {
			return false, err
		}
		lgp.SetAttribute("position", formatPosition(start))
		lgp.SetReference("linkageGroup", lg)
		marker.AddToCollection("linkageGroupPositions", lgp)
		marker.SetAttribute("secondaryIdentifier", field("feature_acc"))
		return true, c.addSynonyms(marker, name, field("feature_aliases"))

	case "qtl":
		qtl, _, err := c.BioEntity("QTL", name)
		if err != nil {
			return false, err
		}
		lgr, err := c.Item("LinkageGroupRange")
		if err != nil {
			return false, err
		}
		lgr.SetAttribute("begin", formatPosition(start))
		lgr.SetAttribute("end", formatPosition(stop))
		lgr.SetReference("linkageGroup", lg)
		qtl.AddToCollection("linkageGroupRanges", lgr)
		return true, c.addSynonyms(qtl, name, field("feature_aliases"))
	}

	c.Log.Debug("skipping CMap feature type",
		zap.String("type", field("feature_type_acc")),
		zap.String("feature", name))
	return false, nil
}

func (c *Converter) linkageGroup(acc, name string) (*items.Item, error) {
	if acc == "" {
		return nil, fmt.Errorf("CMap row has no map_acc")
	}
	lg, created, err := c.BioEntity("LinkageGroup", acc)
	if err != nil {
		return nil, err
	}
	if created && name != "" {
		lg.SetAttribute("secondaryIdentifier", name)
	}
	return lg, nil
}

// addSynonyms turns the comma-separated alias list into Synonym items,
// skipping the feature's own name and aliases already seen.
func (c *Converter) addSynonyms(subject *items.Item, name, aliases string) error {
	if aliases == "" {
		return nil
	}
	for _, alias := range strings.Split(aliases, ",") {
		alias = strings.TrimSpace(alias)
		if alias == "" || alias == name {
			continue
		}
		key := name + "|" + alias
		if c.synonyms[key] {
			continue
		}
		c.synonyms[key] = true

		syn, err := c.Item("Synonym")
		if err != nil {
			return err
		}
		syn.SetAttribute("value", alias)
		syn.SetReference("subject", subject)
		subject.AddToCollection("synonyms", syn)
	}
	return nil
}

func (c *Converter) applyLinkageGroupLengths() {
	for lg, length := range c.lgLength {
		lg.SetAttribute("length", formatPosition(length))
	}
}

func parsePosition(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed position %q", s)
	}
	return v, nil
}

func formatPosition(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
