// Package config loads the per-source properties file.
//
// Every converter run is driven by one data source: a YAML file naming
// the provider, the data set being loaded, the organism, and any
// converter-specific keys. The same properties file can be shared by
// several converters loading files from the same provider.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DataSource identifies the provider of the data.
type DataSource struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// DataSet identifies the release being loaded.
type DataSet struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// Source is the full set of properties for one converter run.
type Source struct {
	DataSource DataSource `yaml:"data_source"`
	DataSet    DataSet    `yaml:"data_set"`

	// TaxonID is the NCBI taxonomy identifier of the organism the
	// emitted items belong to.
	TaxonID string `yaml:"taxon_id"`

	// Variety is an optional infraspecific name, e.g. "G19833".
	Variety string `yaml:"variety"`

	// OrganismID selects the chado organism row for the chado
	// processors. Ignored by the flat-file converters.
	OrganismID int `yaml:"organism_id"`

	// GeneticMap names the map that flat-file linkage groups and QTLs
	// belong to when the input itself does not carry a map name.
	GeneticMap string `yaml:"genetic_map"`

	// SyntenySource is an optional prefix for synteny block
	// identifiers, so blocks computed by different providers over the
	// same chromosome pair do not collide.
	SyntenySource string `yaml:"synteny_source"`

	// SequenceClass selects the class emitted by the FASTA converter:
	// "Chromosome" (default) or "Supercontig".
	SequenceClass string `yaml:"sequence_class"`

	// StoreResidues makes the FASTA converter carry full residue
	// strings on Sequence items.
	StoreResidues bool `yaml:"store_residues"`
}

// Load reads and validates the properties file at path.
func Load(path string) (*Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading source properties: %w", err)
	}
	return Parse(raw)
}

// Parse decodes source properties from YAML.
func Parse(raw []byte) (*Source, error) {
	var s Source
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing source properties: %w", err)
	}
	if s.DataSource.Name == "" {
		return nil, fmt.Errorf("source properties: data_source.name is required")
	}
	if s.DataSet.Title == "" {
		return nil, fmt.Errorf("source properties: data_set.title is required")
	}
	if s.TaxonID == "" {
		return nil, fmt.Errorf("source properties: taxon_id is required")
	}
	if s.SequenceClass == "" {
		s.SequenceClass = "Chromosome"
	}
	return &s, nil
}

// Set overrides one property by its YAML key. Only the scalar
// per-converter keys can be overridden; the data source and data set
// blocks always come from the properties file.
func (s *Source) Set(key, value string) error {
	switch key {
	case "taxon_id":
		s.TaxonID = value
	case "variety":
		s.Variety = value
	case "organism_id":
		id, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("organism_id must be an integer, got %q", value)
		}
		s.OrganismID = id
	case "genetic_map":
		s.GeneticMap = value
	case "synteny_source":
		s.SyntenySource = value
	case "sequence_class":
		s.SequenceClass = value
	case "store_residues":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("store_residues must be a boolean, got %q", value)
		}
		s.StoreResidues = b
	default:
		return fmt.Errorf("unknown source property %q", key)
	}
	return nil
}
