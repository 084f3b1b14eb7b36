package loader

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"unicode"

	"golang.org/x/net/html/charset"
)

// colladaParserImpl is the implementation of the colladaParser interface.
type colladaParserImpl struct {
	document *colladaDocument
}

// colladaParser defines the interface for turning raw COLLADA text into a queryable document tree.
// This is internal to the loader package.
type colladaParser interface {
	// Parse parses a complete document held in memory.
	//
	// Parameters:
	//   - data: the raw document text
	//
	// Returns:
	//   - error: ErrEmptyDocument for blank input, ErrMalformedDocument for unparseable markup
	Parse(data []byte) error

	// ParseReader parses a document from a reader.
	//
	// Parameters:
	//   - r: reader containing the document text
	//
	// Returns:
	//   - error: error if reading or parsing fails
	ParseReader(r io.Reader) error

	// Document returns the parsed document.
	// Returns nil if Parse has not been called successfully.
	//
	// Returns:
	//   - *colladaDocument: the parsed document or nil
	Document() *colladaDocument
}

var _ colladaParser = &colladaParserImpl{}

// newColladaParser creates a new COLLADA parser instance.
//
// Returns:
//   - colladaParser: a new parser instance
func newColladaParser() colladaParser {
	return &colladaParserImpl{}
}

func (p *colladaParserImpl) Document() *colladaDocument {
	return p.document
}

func (p *colladaParserImpl) ParseReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	return p.Parse(data)
}

func (p *colladaParserImpl) Parse(data []byte) error {
	p.document = nil
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyDocument
	}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	var stack []*colladaElement
	var root *colladaElement
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return fmt.Errorf("%w: unexpected element %s after document end", ErrMalformedDocument, t.Name.Local)
			}
			elem := &colladaElement{
				tag:   t.Name.Local,
				attrs: convertAttrs(t.Attr),
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, elem)
				elem.parent = parent
			} else {
				root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 && root != nil {
					rootClosed = true
				}
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isIgnorableOutsideRoot(t) {
					return fmt.Errorf("%w: unexpected character data outside root element", ErrMalformedDocument)
				}
				continue
			}
			stack[len(stack)-1].text.Write(t)
		}
	}

	if root == nil {
		return fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	if len(stack) > 0 {
		return fmt.Errorf("%w: unclosed element %s", ErrMalformedDocument, stack[len(stack)-1].tag)
	}

	p.document = &colladaDocument{root: root}
	return nil
}

func convertAttrs(xmlAttrs []xml.Attr) []colladaAttr {
	if len(xmlAttrs) == 0 {
		return nil
	}
	out := make([]colladaAttr, 0, len(xmlAttrs))
	for _, a := range xmlAttrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out = append(out, colladaAttr{local: a.Name.Local, value: a.Value})
	}
	return out
}

func isIgnorableOutsideRoot(data []byte) bool {
	for _, r := range string(data) {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
