// Package fastaseq converts FASTA assemblies into sequence items.
//
// Each record becomes a Chromosome or Supercontig (selected by the
// sequence_class source property) with an attached Sequence item
// carrying length and checksum. Residues are only carried when the
// store_residues property asks for them.
package fastaseq

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"

	"github.com/LegumeFederation/lfconvert/sources"
)

// Converter emits sequence features from FASTA.
type Converter struct {
	*sources.Emitter
}

// New creates a Converter emitting into e.
func New(e *sources.Emitter) *Converter {
	return &Converter{Emitter: e}
}

// Convert reads FASTA from r and emits items.
func (c *Converter) Convert(r io.Reader) error {
	class := c.Config().SequenceClass
	if class != "Chromosome" && class != "Supercontig" {
		return fmt.Errorf("sequence_class must be Chromosome or Supercontig, got %q", class)
	}

	template := linear.NewSeq("", nil, alphabet.DNA)
	reader := fasta.NewReader(r, template)

	count := 0
	for {
		next, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading FASTA: %w", err)
		}

		s, ok := next.(*linear.Seq)
		if !ok {
			return fmt.Errorf("unexpected sequence type %T", next)
		}
		if err := c.convertSeq(class, s); err != nil {
			return err
		}
		count++
	}

	c.Log.Info("converted sequences",
		zap.String("class", class),
		zap.Int("sequences", count))
	return nil
}

func (c *Converter) convertSeq(class string, s *linear.Seq) error {
	feature, created, err := c.BioEntity(class, s.ID)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("duplicate FASTA record %q", s.ID)
	}

	residues := s.Seq.String()
	feature.SetAttribute("length", strconv.Itoa(len(residues)))

	sum := md5.Sum([]byte(residues))
	seqItem, err := c.Item("Sequence")
	if err != nil {
		return err
	}
	seqItem.SetAttribute("length", strconv.Itoa(len(residues)))
	seqItem.SetAttribute("md5checksum", hex.EncodeToString(sum[:]))
	if c.Config().StoreResidues {
		seqItem.SetAttribute("residues", residues)
	}
	feature.SetReference("sequence", seqItem)
	return nil
}
