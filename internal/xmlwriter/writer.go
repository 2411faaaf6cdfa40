// =============================================================================
// txgen - XML Statement Writer
// =============================================================================
//
// This module renders ledger account states as an XML statement. It backs
// `txgen ledger --format xml`.
//
// OUTPUT STRUCTURE:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <statement generated="2024-01-15T14:30:22Z" accounts="2">
//     <account n="1" client="1">
//       <available>2</available>
//       <held>0</held>
//       <total>2</total>
//       <locked>true</locked>
//     </account>
//     ...
//   </statement>
//
// Accounts keep the order they are given in (client order from the ledger).
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ginjaninja78/txgen/internal/ledger"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion and Encoding go into the declaration.
	// Defaults: "1.0" and "UTF-8"
	XMLVersion string
	Encoding   string

	// RootAttributes are additional attributes for the root element.
	// Example: {"xmlns": "http://example.com/statement"}
	RootAttributes map[string]string

	// AccountIndexAttribute names the 1-based position attribute on each
	// account element.
	// Default: "n"
	AccountIndexAttribute string

	// GeneratedAt is stamped on the root element. Zero means now.
	GeneratedAt time.Time
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
		RootAttributes:        make(map[string]string),
		AccountIndexAttribute: "n",
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates a statement document with the default options.
func Generate(snapshots []ledger.Snapshot) ([]byte, error) {
	return GenerateWithOptions(snapshots, DefaultGenerateOptions())
}

// GenerateWithOptions creates a statement document with custom options.
func GenerateWithOptions(snapshots []ledger.Snapshot, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	doc := buildDocument(snapshots, options)

	xmlBytes, err := marshalWithIndent(doc, options.Indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}

	buffer.Write(xmlBytes)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLDocument represents the root of the XML document.
type XMLDocument struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Children   []XMLElement
}

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// buildDocument constructs the statement document.
func buildDocument(snapshots []ledger.Snapshot, options GenerateOptions) *XMLDocument {
	generatedAt := options.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	doc := &XMLDocument{
		XMLName: xml.Name{Local: "statement"},
		Attributes: []xml.Attr{
			attr("generated", generatedAt.UTC().Format(time.RFC3339)),
			attr("accounts", strconv.Itoa(len(snapshots))),
		},
	}

	// Map iteration order is random; sort extra attributes for stable output.
	keys := make([]string, 0, len(options.RootAttributes))
	for key := range options.RootAttributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		doc.Attributes = append(doc.Attributes, attr(key, options.RootAttributes[key]))
	}

	for i, s := range snapshots {
		doc.Children = append(doc.Children, buildAccountElement(i+1, s, options))
	}

	return doc
}

// buildAccountElement constructs one account element.
func buildAccountElement(index int, s ledger.Snapshot, options GenerateOptions) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: "account"},
		Attributes: []xml.Attr{
			attr(options.AccountIndexAttribute, strconv.Itoa(index)),
			attr("client", strconv.Itoa(s.Client)),
		},
		Children: []XMLElement{
			createSimpleElement("available", s.Available.String()),
			createSimpleElement("held", s.Held.String()),
			createSimpleElement("total", s.Total.String()),
			createSimpleElement("locked", strconv.FormatBool(s.Locked)),
		},
	}
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// createSimpleElement creates an element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// marshalWithIndent marshals the document with indentation.
func marshalWithIndent(doc *XMLDocument, indent string) ([]byte, error) {
	var buffer bytes.Buffer

	if doc.XMLName.Local == "" {
		return nil, fmt.Errorf("document has no root element")
	}

	buffer.WriteString("<")
	buffer.WriteString(doc.XMLName.Local)
	writeAttributes(&buffer, doc.Attributes)

	if len(doc.Children) == 0 {
		buffer.WriteString("/>\n")
		return buffer.Bytes(), nil
	}

	buffer.WriteString(">\n")

	for _, child := range doc.Children {
		writeElement(&buffer, child, indent, 1)
	}

	buffer.WriteString("</")
	buffer.WriteString(doc.XMLName.Local)
	buffer.WriteString(">\n")

	return buffer.Bytes(), nil
}

func writeAttributes(buffer *bytes.Buffer, attrs []xml.Attr) {
	for _, a := range attrs {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", a.Name.Local, escapeXML(a.Value)))
	}
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)
	writeAttributes(buffer, element.Attributes)

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
