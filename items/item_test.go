package items

import (
	"errors"
	"testing"
)

func TestFactoryIdentifiers(t *testing.T) {
	f := NewFactory("3")

	a := f.NewItem("Gene")
	b := f.NewItem("QTL")

	if a.ID != "3_1" {
		t.Errorf("first ID = %q, want 3_1", a.ID)
	}
	if b.ID != "3_2" {
		t.Errorf("second ID = %q, want 3_2", b.ID)
	}
	if b.Class != "QTL" {
		t.Errorf("Class = %q, want QTL", b.Class)
	}
	if f.Count() != 2 {
		t.Errorf("Count = %d, want 2", f.Count())
	}
}

func TestFactoryDefaultAlias(t *testing.T) {
	f := NewFactory("")
	if got := f.NewItem("Gene").ID; got != "0_1" {
		t.Errorf("ID = %q, want 0_1", got)
	}
}

func TestSetAttributeReplaces(t *testing.T) {
	it := NewFactory("0").NewItem("Gene")

	it.SetAttribute("primaryIdentifier", "geneA")
	it.SetAttribute("primaryIdentifier", "geneB")

	if got := it.Attribute("primaryIdentifier"); got != "geneB" {
		t.Errorf("attribute = %q, want geneB", got)
	}
	if n := len(it.Attributes()); n != 1 {
		t.Errorf("attribute count = %d, want 1", n)
	}
}

func TestSetReferenceReplaces(t *testing.T) {
	f := NewFactory("0")
	gene := f.NewItem("Gene")
	orgA := f.NewItem("Organism")
	orgB := f.NewItem("Organism")

	gene.SetReference("organism", orgA)
	gene.SetReference("organism", orgB)

	if got := gene.Reference("organism"); got != orgB.ID {
		t.Errorf("reference = %q, want %q", got, orgB.ID)
	}
	if n := len(gene.References()); n != 1 {
		t.Errorf("reference count = %d, want 1", n)
	}
}

func TestCollectionDeduplicates(t *testing.T) {
	f := NewFactory("0")
	qtl := f.NewItem("QTL")
	marker := f.NewItem("GeneticMarker")

	qtl.AddToCollection("markers", marker)
	qtl.AddToCollection("markers", marker)

	if got := qtl.Collection("markers"); len(got) != 1 {
		t.Errorf("collection size = %d, want 1", len(got))
	}
}

func TestCollectionKeepsOrder(t *testing.T) {
	f := NewFactory("0")
	fam := f.NewItem("GeneFamily")
	g1 := f.NewItem("Gene")
	g2 := f.NewItem("Gene")

	fam.AddToCollection("genes", g2)
	fam.AddToCollection("genes", g1)

	got := fam.Collection("genes")
	if len(got) != 2 || got[0] != g2.ID || got[1] != g1.ID {
		t.Errorf("collection = %v, want [%s %s]", got, g2.ID, g1.ID)
	}
}

func TestTrackerStoreOnce(t *testing.T) {
	f := NewFactory("0")
	tr := NewTracker()

	it := f.NewItem("Gene")
	if err := tr.Store(it); err != nil {
		t.Fatalf("first Store: %v", err)
	}

	err := tr.Store(it)
	if !errors.Is(err, ErrDuplicateStore) {
		t.Errorf("second Store error = %v, want ErrDuplicateStore", err)
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestTrackerRejectsEmptyID(t *testing.T) {
	tr := NewTracker()
	if err := tr.Store(&Item{Class: "Gene"}); err == nil {
		t.Error("Store of item with empty ID did not fail")
	}
}

func TestTrackerOrder(t *testing.T) {
	f := NewFactory("0")
	tr := NewTracker()

	first := f.NewItem("Organism")
	second := f.NewItem("Gene")
	if err := tr.StoreAll(first, second); err != nil {
		t.Fatalf("StoreAll: %v", err)
	}

	got := tr.Items()
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Errorf("Items out of store order: %v", got)
	}
}
