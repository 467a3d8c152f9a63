package markervcf

import (
	"strings"
	"testing"

	"github.com/LegumeFederation/lfconvert/config"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

const markerVCF = `##fileformat=VCFv4.2
##contig=<ID=Chr01>
##contig=<ID=Chr02>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
Chr01	12345	ss715639343	A	G	.	PASS	.
Chr01	22000	.	AT	A	.	PASS	.
Chr01	22000	.	AT	AG	.	PASS	.
Chr01	22000	ss715650500	A	G	.	PASS	.
Chr02	900	ss715640001	C	T,G	.	PASS	.
`

func testEmitter() *sources.Emitter {
	return sources.NewEmitter(&config.Source{
		DataSource: config.DataSource{Name: "LIS"},
		DataSet:    config.DataSet{Title: "Pv SNP markers"},
		TaxonID:    "3885",
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

func count(e *sources.Emitter, class string) int {
	n := 0
	for _, it := range e.Tracker.Items() {
		if it.Class == class {
			n++
		}
	}
	return n
}

func TestConvertEmitsMarkers(t *testing.T) {
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(markerVCF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	// Five records, one an anonymous duplicate position.
	if n := count(e, "GeneticMarker"); n != 4 {
		t.Errorf("markers = %d, want 4", n)
	}

	snp := find(e, "GeneticMarker", "ss715639343")
	if snp == nil {
		t.Fatal("named SNP not emitted")
	}
	if snp.Attribute("type") != "SNP" {
		t.Errorf("type = %q, want SNP", snp.Attribute("type"))
	}
	if snp.Reference("chromosomeLocation") == "" {
		t.Error("SNP has no location")
	}
}

func TestConvertNamesAnonymousRecords(t *testing.T) {
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(markerVCF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	indel := find(e, "GeneticMarker", "Chr01_22000")
	if indel == nil {
		t.Fatal("anonymous record not named by position")
	}
	if indel.Attribute("type") != "indel" {
		t.Errorf("type = %q, want indel", indel.Attribute("type"))
	}
}

func TestConvertKeepsNamedRecordAtSeenPosition(t *testing.T) {
	// Only anonymous records dedup by position.
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(markerVCF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	m := find(e, "GeneticMarker", "ss715650500")
	if m == nil {
		t.Fatal("named record at a duplicate position was dropped")
	}
	if m.Attribute("type") != "SNP" {
		t.Errorf("type = %q, want SNP", m.Attribute("type"))
	}
}

func TestConvertMultiAllelicSNP(t *testing.T) {
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(markerVCF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	m := find(e, "GeneticMarker", "ss715640001")
	if m == nil {
		t.Fatal("multi-allelic record not emitted")
	}
	if m.Attribute("type") != "SNP" {
		t.Errorf("type = %q, want SNP (all alleles single-base)", m.Attribute("type"))
	}
}

func TestMarkerType(t *testing.T) {
	cases := []struct {
		ref  string
		alts []string
		want string
	}{
		{"A", []string{"G"}, "SNP"},
		{"A", []string{"G", "T"}, "SNP"},
		{"AT", []string{"A"}, "indel"},
		{"A", []string{"AT"}, "indel"},
	}
	for _, tc := range cases {
		if got := markerType(tc.ref, tc.alts); got != tc.want {
			t.Errorf("markerType(%q, %v) = %q, want %q", tc.ref, tc.alts, got, tc.want)
		}
	}
}
