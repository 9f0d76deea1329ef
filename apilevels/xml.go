package apilevels

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// xmlFormatVersion is the version attribute of the <api> root element,
// the third revision of the api-versions.xml format (extension SDK
// attributes).
const xmlFormatVersion = 3

// SdkIdentifier describes one extension SDK referenced by sdks
// attributes in the XML output.
type SdkIdentifier struct {
	ID        int
	ShortName string
	Name      string
	Reference string
}

type xmlAPI struct {
	XMLName xml.Name   `xml:"api"`
	Version int        `xml:"version,attr"`
	Min     string     `xml:"min,attr,omitempty"`
	Sdks    []xmlSdk   `xml:"sdk"`
	Classes []xmlClass `xml:"class"`
}

type xmlSdk struct {
	ID        int    `xml:"id,attr"`
	ShortName string `xml:"shortname,attr"`
	Name      string `xml:"name,attr"`
	Reference string `xml:"reference,attr,omitempty"`
}

type xmlClass struct {
	Name       string      `xml:"name,attr"`
	Module     string      `xml:"module,attr,omitempty"`
	Since      string      `xml:"since,attr,omitempty"`
	Deprecated string      `xml:"deprecated,attr,omitempty"`
	Removed    string      `xml:"removed,attr,omitempty"`
	Sdks       string      `xml:"sdks,attr,omitempty"`
	Extends    []xmlMember `xml:"extends"`
	Implements []xmlMember `xml:"implements"`
	Methods    []xmlMember `xml:"method"`
	Fields     []xmlMember `xml:"field"`
}

type xmlMember struct {
	Name       string `xml:"name,attr"`
	Since      string `xml:"since,attr,omitempty"`
	Deprecated string `xml:"deprecated,attr,omitempty"`
	Removed    string `xml:"removed,attr,omitempty"`
	Sdks       string `xml:"sdks,attr,omitempty"`
}

// WriteXML renders the history as api-versions XML. Member attributes
// equal to the containing class's values are omitted, matching readers
// that inherit them from the class element.
func WriteXML(w io.Writer, api *Api, sdks []SdkIdentifier) error {
	doc := xmlAPI{Version: xmlFormatVersion}
	if api.MinVersion() > 1 {
		doc.Min = strconv.Itoa(api.MinVersion())
	}
	for _, sdk := range sdks {
		doc.Sdks = append(doc.Sdks, xmlSdk{
			ID:        sdk.ID,
			ShortName: sdk.ShortName,
			Name:      sdk.Name,
			Reference: sdk.Reference,
		})
	}

	max := api.MaxVersion()
	for _, cls := range api.Classes() {
		if cls.Hidden() {
			continue
		}
		entry := xmlClass{
			Name:       cls.Name(),
			Module:     cls.MainlineModule(),
			Since:      strconv.Itoa(cls.Since()),
			Deprecated: attrNonZero(cls.DeprecatedIn()),
			Removed:    removedAttr(&cls.ApiElement, max),
			Sdks:       cls.Sdks(),
		}
		for _, super := range cls.SuperClasses() {
			entry.Extends = append(entry.Extends, memberAttrs(super, &cls.ApiElement, max))
		}
		for _, iface := range cls.Interfaces() {
			entry.Implements = append(entry.Implements, memberAttrs(iface, &cls.ApiElement, max))
		}
		for _, m := range cls.Methods() {
			entry.Methods = append(entry.Methods, memberAttrs(m, &cls.ApiElement, max))
		}
		for _, f := range cls.Fields() {
			entry.Fields = append(entry.Fields, memberAttrs(f, &cls.ApiElement, max))
		}
		doc.Classes = append(doc.Classes, entry)
	}

	if _, err := io.WriteString(w, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding api versions: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func memberAttrs(e *ApiElement, parent *ApiElement, max int) xmlMember {
	m := xmlMember{Name: e.Name()}
	if e.Since() != parent.Since() {
		m.Since = strconv.Itoa(e.Since())
	}
	if e.DeprecatedIn() != parent.DeprecatedIn() {
		m.Deprecated = attrNonZero(e.DeprecatedIn())
	}
	if removed := removedAttr(e, max); removed != removedAttr(parent, max) {
		m.Removed = removed
	}
	if e.Sdks() != parent.Sdks() {
		m.Sdks = e.Sdks()
	}
	return m
}

func attrNonZero(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// removedAttr is the first level the element was gone in, empty while it
// is still present in the newest level.
func removedAttr(e *ApiElement, max int) string {
	if e.LastPresentIn() >= max {
		return ""
	}
	return strconv.Itoa(e.LastPresentIn() + 1)
}
