package items

import (
	"encoding/xml"
	"fmt"
	"io"
)

// XMLWriter serializes items as Items XML, the wire format accepted by
// the target object store's loader:
//
//	<items>
//	  <item id="0_1" class="Gene">
//	    <attribute name="primaryIdentifier" value="Phvul.001G001100" />
//	    <reference name="organism" ref_id="0_2" />
//	    <collection name="dataSets">
//	      <reference ref_id="0_3" />
//	    </collection>
//	  </item>
//	</items>
type XMLWriter struct {
	enc    *xml.Encoder
	opened bool
}

type xmlAttribute struct {
	XMLName xml.Name `xml:"attribute"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:"value,attr"`
}

type xmlReference struct {
	XMLName xml.Name `xml:"reference"`
	Name    string   `xml:"name,attr,omitempty"`
	RefID   string   `xml:"ref_id,attr"`
}

type xmlCollection struct {
	XMLName    xml.Name       `xml:"collection"`
	Name       string         `xml:"name,attr"`
	References []xmlReference `xml:"reference"`
}

type xmlItem struct {
	XMLName     xml.Name        `xml:"item"`
	ID          string          `xml:"id,attr"`
	Class       string          `xml:"class,attr"`
	Attributes  []xmlAttribute  `xml:"attribute"`
	References  []xmlReference  `xml:"reference"`
	Collections []xmlCollection `xml:"collection"`
}

// NewXMLWriter creates an XMLWriter over w. The document is opened
// lazily by the first Write and finished by Close.
func NewXMLWriter(w io.Writer) *XMLWriter {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &XMLWriter{enc: enc}
}

// Write serializes a single item.
func (w *XMLWriter) Write(it *Item) error {
	if !w.opened {
		if err := w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "items"}}); err != nil {
			return fmt.Errorf("opening items element: %w", err)
		}
		w.opened = true
	}

	x := xmlItem{ID: it.ID, Class: it.Class}
	for _, a := range it.attributes {
		// Empty values carry no information and upset the loader.
		if a.Value == "" {
			continue
		}
		x.Attributes = append(x.Attributes, xmlAttribute{Name: a.Name, Value: a.Value})
	}
	for _, r := range it.references {
		if r.RefID == "" {
			continue
		}
		x.References = append(x.References, xmlReference{Name: r.Name, RefID: r.RefID})
	}
	for _, c := range it.collections {
		if len(c.RefIDs) == 0 {
			continue
		}
		col := xmlCollection{Name: c.Name}
		for _, id := range c.RefIDs {
			col.References = append(col.References, xmlReference{RefID: id})
		}
		x.Collections = append(x.Collections, col)
	}

	if err := w.enc.Encode(x); err != nil {
		return fmt.Errorf("encoding item %s: %w", it.ID, err)
	}
	return nil
}

// WriteAll serializes each item in turn.
func (w *XMLWriter) WriteAll(list []*Item) error {
	for _, it := range list {
		if err := w.Write(it); err != nil {
			return err
		}
	}
	return nil
}

// Close finishes the document. It must be called after the last Write.
func (w *XMLWriter) Close() error {
	if !w.opened {
		// An empty run still produces a well-formed document.
		if err := w.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "items"}}); err != nil {
			return fmt.Errorf("opening items element: %w", err)
		}
		w.opened = true
	}
	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "items"}}); err != nil {
		return fmt.Errorf("closing items element: %w", err)
	}
	return w.enc.Flush()
}
