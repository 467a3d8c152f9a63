// Package items provides the Item data model shared by all converters.
//
// An Item is the unit of output for every converter: a class name, an
// opaque identifier, and a set of attribute/reference/collection triples.
// Items are created through a Factory, registered with a Tracker exactly
// once, and finally serialized as Items XML for the downstream loader.
package items

import (
	"fmt"
)

// Attribute is a named string value on an Item.
type Attribute struct {
	Name  string
	Value string
}

// Reference is a named pointer to another Item.
type Reference struct {
	Name  string
	RefID string
}

// Collection is a named, ordered list of Item identifiers.
type Collection struct {
	Name   string
	RefIDs []string
}

// Item is a single record destined for the target object store.
type Item struct {
	// ID is the opaque identifier assigned by the Factory.
	ID string

	// Class is the target model class name, e.g. "Gene" or "QTL".
	Class string

	attributes  []Attribute
	references  []Reference
	collections []Collection
}

// SetAttribute sets the named attribute, replacing any previous value.
func (it *Item) SetAttribute(name, value string) {
	for i := range it.attributes {
		if it.attributes[i].Name == name {
			it.attributes[i].Value = value
			return
		}
	}
	it.attributes = append(it.attributes, Attribute{Name: name, Value: value})
}

// Attribute returns the value of the named attribute, or "" if unset.
func (it *Item) Attribute(name string) string {
	for _, a := range it.attributes {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// SetReference points the named reference at the given item, replacing
// any previous target.
func (it *Item) SetReference(name string, target *Item) {
	it.SetReferenceID(name, target.ID)
}

// SetReferenceID points the named reference at an item identifier.
func (it *Item) SetReferenceID(name, refID string) {
	for i := range it.references {
		if it.references[i].Name == name {
			it.references[i].RefID = refID
			return
		}
	}
	it.references = append(it.references, Reference{Name: name, RefID: refID})
}

// Reference returns the identifier the named reference points at, or ""
// if the reference is unset.
func (it *Item) Reference(name string) string {
	for _, r := range it.references {
		if r.Name == name {
			return r.RefID
		}
	}
	return ""
}

// AddToCollection appends the target item to the named collection. An
// identifier already present in the collection is not added again.
func (it *Item) AddToCollection(name string, target *Item) {
	it.addRefID(name, target.ID)
}

// AddRefIDToCollection appends an item identifier to the named collection,
// skipping identifiers already present.
func (it *Item) AddRefIDToCollection(name, refID string) {
	it.addRefID(name, refID)
}

func (it *Item) addRefID(name, refID string) {
	for i := range it.collections {
		if it.collections[i].Name != name {
			continue
		}
		for _, id := range it.collections[i].RefIDs {
			if id == refID {
				return
			}
		}
		it.collections[i].RefIDs = append(it.collections[i].RefIDs, refID)
		return
	}
	it.collections = append(it.collections, Collection{Name: name, RefIDs: []string{refID}})
}

// Collection returns the identifiers in the named collection.
func (it *Item) Collection(name string) []string {
	for _, c := range it.collections {
		if c.Name == name {
			return c.RefIDs
		}
	}
	return nil
}

// Attributes returns the item's attributes in set order.
func (it *Item) Attributes() []Attribute { return it.attributes }

// References returns the item's references in set order.
func (it *Item) References() []Reference { return it.references }

// Collections returns the item's collections in set order.
func (it *Item) Collections() []Collection { return it.collections }

// Factory issues Items with identifiers unique within the factory.
//
// Identifiers have the form "<alias>_<n>" where n increases
// monotonically from 1.
type Factory struct {
	alias string
	next  int
}

// NewFactory creates a Factory with the given identifier alias.
// An empty alias defaults to "0".
func NewFactory(alias string) *Factory {
	if alias == "" {
		alias = "0"
	}
	return &Factory{alias: alias}
}

// NewItem creates an Item of the given class with a fresh identifier.
func (f *Factory) NewItem(class string) *Item {
	f.next++
	return &Item{
		ID:    fmt.Sprintf("%s_%d", f.alias, f.next),
		Class: class,
	}
}

// Count returns the number of items issued so far.
func (f *Factory) Count() int { return f.next }
