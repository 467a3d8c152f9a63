package fastaseq

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/LegumeFederation/lfconvert/config"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

const assembly = `>phavu.Chr01 chromosome 1
ACGTACGTAC
GTACGT
>phavu.Chr02 chromosome 2
TTTTGGGG
`

func testEmitter(class string, residues bool) *sources.Emitter {
	return sources.NewEmitter(&config.Source{
		DataSource:    config.DataSource{Name: "LIS"},
		DataSet:       config.DataSet{Title: "Pv assembly"},
		TaxonID:       "3885",
		SequenceClass: class,
		StoreResidues: residues,
	}, nil)
}

func find(e *sources.Emitter, class, primaryIdentifier string) *items.Item {
	for _, it := range e.Tracker.Items() {
		if it.Class == class && it.Attribute("primaryIdentifier") == primaryIdentifier {
			return it
		}
	}
	return nil
}

func byID(e *sources.Emitter, id string) *items.Item {
	for _, it := range e.Tracker.Items() {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func TestConvertChromosomes(t *testing.T) {
	e := testEmitter("Chromosome", false)
	if err := New(e).Convert(strings.NewReader(assembly)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	chr := find(e, "Chromosome", "phavu.Chr01")
	if chr == nil {
		t.Fatal("chromosome not emitted")
	}
	if chr.Attribute("length") != "16" {
		t.Errorf("length = %q, want 16 (wrapped lines joined)", chr.Attribute("length"))
	}

	seqItem := byID(e, chr.Reference("sequence"))
	if seqItem == nil {
		t.Fatal("sequence item not stored")
	}
	wantSum := md5.Sum([]byte("ACGTACGTACGTACGT"))
	if got := seqItem.Attribute("md5checksum"); got != hex.EncodeToString(wantSum[:]) {
		t.Errorf("md5checksum = %q", got)
	}
	if seqItem.Attribute("residues") != "" {
		t.Error("residues stored without store_residues")
	}
}

func TestConvertStoresResidues(t *testing.T) {
	e := testEmitter("Supercontig", true)
	if err := New(e).Convert(strings.NewReader(assembly)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	sc := find(e, "Supercontig", "phavu.Chr02")
	if sc == nil {
		t.Fatal("supercontig not emitted")
	}
	seqItem := byID(e, sc.Reference("sequence"))
	if seqItem.Attribute("residues") != "TTTTGGGG" {
		t.Errorf("residues = %q", seqItem.Attribute("residues"))
	}
}

func TestConvertRejectsBadClass(t *testing.T) {
	e := testEmitter("Gene", false)
	if err := New(e).Convert(strings.NewReader(assembly)); err == nil {
		t.Error("Convert accepted an unsupported sequence class")
	}
}

func TestConvertRejectsDuplicateRecord(t *testing.T) {
	dup := ">chr1\nACGT\n>chr1\nACGT\n"
	e := testEmitter("Chromosome", false)
	if err := New(e).Convert(strings.NewReader(dup)); err == nil {
		t.Error("Convert accepted a duplicate FASTA record")
	}
}
