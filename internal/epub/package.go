package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// packageDoc holds the parts of the OPF that goreader does not expose:
// identifiers and manifest item properties.
type packageDoc struct {
	UniqueID    string `xml:"unique-identifier,attr"`
	Identifiers []struct {
		ID    string `xml:"id,attr"`
		Value string `xml:",chardata"`
	} `xml:"metadata>identifier"`
	Items []struct {
		ID         string `xml:"id,attr"`
		Href       string `xml:"href,attr"`
		Properties string `xml:"properties,attr"`
	} `xml:"manifest>item"`
}

func (b *Book) packageDoc() (*packageDoc, error) {
	if b.pkg != nil {
		return b.pkg, nil
	}
	zr, err := zip.OpenReader(b.path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != b.root.FullPath {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		doc := &packageDoc{}
		if err := xml.NewDecoder(r).Decode(doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Name, err)
		}
		b.pkg = doc
		return doc, nil
	}
	return nil, fmt.Errorf("%s: %w", b.root.FullPath, ErrNoRootfile)
}

// identifier is the package's unique identifier, or the first one listed.
func (d *packageDoc) identifier() string {
	for _, id := range d.Identifiers {
		if d.UniqueID != "" && id.ID == d.UniqueID {
			return strings.TrimSpace(id.Value)
		}
	}
	if len(d.Identifiers) > 0 {
		return strings.TrimSpace(d.Identifiers[0].Value)
	}
	return ""
}

// navHref is the href of the EPUB3 navigation document, if any.
func (d *packageDoc) navHref() string {
	for _, it := range d.Items {
		for _, p := range strings.Fields(it.Properties) {
			if p == "nav" {
				return it.Href
			}
		}
	}
	for _, it := range d.Items {
		if it.ID == "toc" {
			return it.Href
		}
	}
	return ""
}
