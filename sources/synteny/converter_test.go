package synteny

import (
	"strings"
	"testing"

	"github.com/LegumeFederation/lfconvert/config"
	"github.com/LegumeFederation/lfconvert/items"
	"github.com/LegumeFederation/lfconvert/sources"
)

const syntenyGFF = `##gff-version 2
phavu.Chr01	DAGchainer	syntenic_region	100	200	.	+	.	Name phavu.Chr01.glyma.Chr02.1;matches glyma.Chr02:1000..2000;median_Ks 0.35
glyma.Chr02	DAGchainer	syntenic_region	1000	2000	.	-	.	Name glyma.Chr02.phavu.Chr01.1;matches phavu.Chr01:100..200;median_Ks 0.35
phavu.Chr01	DAGchainer	gene	500	900	.	+	.	Name notablock
phavu.Chr03	DAGchainer	syntenic_region	10	50	.	+	.	matches glyma.Chr09:70..90
`

func testEmitter() *sources.Emitter {
	return sources.NewEmitter(&config.Source{
		DataSource: config.DataSource{Name: "LIS"},
		DataSet:    config.DataSet{Title: "Pv-Gm synteny"},
		TaxonID:    "3885",
	}, nil)
}

func collect(e *sources.Emitter, class string) []*items.Item {
	var out []*items.Item
	for _, it := range e.Tracker.Items() {
		if it.Class == class {
			out = append(out, it)
		}
	}
	return out
}

func TestConvertCanonicalizesReversedPairs(t *testing.T) {
	e := testEmitter()
	c := New(e)

	if err := c.Convert(strings.NewReader(syntenyGFF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	blocks := collect(e, "SyntenyBlock")
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2 (reversed pair stored once)", len(blocks))
	}

	var first *items.Item
	for _, b := range blocks {
		if strings.Contains(b.Attribute("primaryIdentifier"), "glyma.Chr02:1000..2000") {
			first = b
		}
	}
	if first == nil {
		t.Fatal("Chr01/Chr02 block not found")
	}
	if first.Attribute("medianKs") != "0.35" {
		t.Errorf("medianKs = %q, want 0.35", first.Attribute("medianKs"))
	}
	if first.Reference("sourceRegion") == "" || first.Reference("targetRegion") == "" {
		t.Error("block is missing a region reference")
	}

	// Canonical ordering is lexicographic by region slug.
	wantID := "glyma.Chr02:1000..2000..phavu.Chr01:100..200"
	if got := first.Attribute("primaryIdentifier"); got != wantID {
		t.Errorf("primaryIdentifier = %q, want %q", got, wantID)
	}
}

func TestConvertEmitsRegionsWithLocations(t *testing.T) {
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(syntenyGFF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	regions := collect(e, "SyntenicRegion")
	if len(regions) != 4 {
		t.Fatalf("regions = %d, want 4 (two per stored block)", len(regions))
	}

	for _, r := range regions {
		if r.Reference("chromosomeLocation") == "" {
			t.Errorf("region %s has no location", r.Attribute("primaryIdentifier"))
		}
		if r.Reference("syntenyBlock") == "" {
			t.Errorf("region %s has no block reference", r.Attribute("primaryIdentifier"))
		}
	}

	// Chromosomes are created on demand and shared.
	chrs := collect(e, "Chromosome")
	if len(chrs) != 4 {
		t.Errorf("chromosomes = %d, want 4", len(chrs))
	}
}

const syntenyGFF3 = `##gff-version 3
phavu.Chr01	DAGchainer	syntenic_region	100	200	.	+	.	Name=phavu.Chr01.glyma.Chr02.1;matches=glyma.Chr02:1000..2000;median_Ks=0.35
glyma.Chr02	DAGchainer	syntenic_region	1000	2000	.	-	.	Name=glyma.Chr02.phavu.Chr01.1;matches=phavu.Chr01:100..200;median_Ks=0.35
`

func TestConvertReadsGFF3(t *testing.T) {
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(syntenyGFF3)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	blocks := collect(e, "SyntenyBlock")
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1 (reversed pair stored once)", len(blocks))
	}

	block := blocks[0]
	wantID := "glyma.Chr02:1000..2000..phavu.Chr01:100..200"
	if got := block.Attribute("primaryIdentifier"); got != wantID {
		t.Errorf("primaryIdentifier = %q, want %q", got, wantID)
	}
	if block.Attribute("medianKs") != "0.35" {
		t.Errorf("medianKs = %q, want 0.35", block.Attribute("medianKs"))
	}
	if len(collect(e, "SyntenicRegion")) != 2 {
		t.Errorf("regions = %d, want 2", len(collect(e, "SyntenicRegion")))
	}
}

func TestNormalizeGFFLine(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"##gff-version 3", "##gff-version 2"},
		{"# a comment", "# a comment"},
		{"", ""},
		{
			"chr\tsrc\tsyntenic_region\t1\t10\t.\t+\t.\tName=b1;matches=c:2..9",
			"chr\tsrc\tsyntenic_region\t1\t10\t.\t+\t.\tName b1;matches c:2..9",
		},
		{
			"chr\tsrc\tsyntenic_region\t1\t10\t.\t+\t.\tName b1;matches c:2..9",
			"chr\tsrc\tsyntenic_region\t1\t10\t.\t+\t.\tName b1;matches c:2..9",
		},
	}
	for _, tc := range cases {
		if got := normalizeGFFLine(tc.in); got != tc.want {
			t.Errorf("normalizeGFFLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConvertPrefixesBlockIdentifiers(t *testing.T) {
	e := sources.NewEmitter(&config.Source{
		DataSource:    config.DataSource{Name: "LIS"},
		DataSet:       config.DataSet{Title: "Pv-Gm synteny"},
		TaxonID:       "3885",
		SyntenySource: "DAGchainer",
	}, nil)
	if err := New(e).Convert(strings.NewReader(syntenyGFF)); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	want := "DAGchainer:glyma.Chr02:1000..2000..phavu.Chr01:100..200"
	found := false
	for _, b := range collect(e, "SyntenyBlock") {
		if b.Attribute("primaryIdentifier") == want {
			found = true
		}
	}
	if !found {
		t.Errorf("no block with prefixed identifier %q", want)
	}
}

func TestConvertRejectsMissingMatches(t *testing.T) {
	bad := "##gff-version 2\nphavu.Chr01\tDAGchainer\tsyntenic_region\t1\t10\t.\t+\t.\tName only\n"
	e := testEmitter()
	if err := New(e).Convert(strings.NewReader(bad)); err == nil {
		t.Error("Convert accepted a syntenic_region without matches")
	}
}

func TestParseMatches(t *testing.T) {
	r, err := parseMatches("glyma.Chr02:1000..2000")
	if err != nil {
		t.Fatalf("parseMatches: %v", err)
	}
	if r.chromosome != "glyma.Chr02" || r.start != 1000 || r.end != 2000 {
		t.Errorf("region = %+v", r)
	}

	// Swapped coordinates are normalized.
	r, err = parseMatches("glyma.Chr02:2000..1000")
	if err != nil {
		t.Fatalf("parseMatches: %v", err)
	}
	if r.start != 1000 || r.end != 2000 {
		t.Errorf("region = %+v, want normalized span", r)
	}

	for _, bad := range []string{"", "chr", "chr:10", "chr:a..b"} {
		if _, err := parseMatches(bad); err == nil {
			t.Errorf("parseMatches(%q) expected error", bad)
		}
	}
}
