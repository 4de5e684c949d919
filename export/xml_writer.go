// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/pingcap/errors"
)

// Document element and attribute names. Fixed, so an importer can rely on
// them; only column element names vary with the source schema.
const (
	elemDatabase   = "database"
	elemSchema     = "schema"
	elemGenerators = "generators"
	elemGenerator  = "generator"
	elemTable      = "table"
	elemColumn     = "column"
	elemForeignKey = "fk"
	elemData       = "data"
	elemRow        = "row"

	attrName     = "name"
	attrNull     = "null"
	attrEncoding = "enc"
)

// DocumentWriter emits one XML document incrementally. The token encoder
// keeps the open-element stack, so mismatched nesting is caught at write
// time instead of producing a malformed file. Nothing larger than the
// current row is retained in memory; Flush pushes buffered bytes to the
// underlying writer.
type DocumentWriter struct {
	w     io.Writer
	enc   *xml.Encoder
	depth int
}

// NewDocumentWriter wraps w. The writer owns no file handle; closing and
// discarding the underlying stream is the session controller's business.
func NewDocumentWriter(w io.Writer) *DocumentWriter {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &DocumentWriter{w: w, enc: enc}
}

// OpenDocument writes the declaration and the root element. exported may be
// empty (deterministic mode), in which case the attribute is omitted.
func (dw *DocumentWriter) OpenDocument(source, exported string) error {
	// The declaration bypasses the token encoder so the root element
	// starts on its own line.
	if _, err := io.WriteString(dw.w, xml.Header); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	attrs := []xml.Attr{attr("source", source)}
	if exported != "" {
		attrs = append(attrs, attr("exported", exported))
	}
	return dw.OpenElement(elemDatabase, attrs...)
}

// OpenElement pushes a container element.
func (dw *DocumentWriter) OpenElement(name string, attrs ...xml.Attr) error {
	err := dw.enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: attrs,
	})
	if err != nil {
		return tagErr(ErrOutputIO, err)
	}
	dw.depth++
	return nil
}

// CloseElement pops the innermost open element.
func (dw *DocumentWriter) CloseElement(name string) error {
	if err := dw.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}}); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	dw.depth--
	return nil
}

// EmptyElement writes an element with attributes and no content.
func (dw *DocumentWriter) EmptyElement(name string, attrs ...xml.Attr) error {
	if err := dw.OpenElement(name, attrs...); err != nil {
		return err
	}
	return dw.CloseElement(name)
}

// TextElement writes an element wrapping escaped character data.
func (dw *DocumentWriter) TextElement(name, text string, attrs ...xml.Attr) error {
	if err := dw.OpenElement(name, attrs...); err != nil {
		return err
	}
	if err := dw.enc.EncodeToken(xml.CharData(text)); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	return dw.CloseElement(name)
}

// Comment writes an XML comment at the current nesting level.
func (dw *DocumentWriter) Comment(text string) error {
	// "--" must not appear inside a comment; one pass leaves a pair
	// behind for odd runs of dashes.
	for strings.Contains(text, "--") {
		text = strings.ReplaceAll(text, "--", "- -")
	}
	if err := dw.enc.EncodeToken(xml.Comment(" " + text + " ")); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	return nil
}

// OpenTable pushes one table element inside the data section.
func (dw *DocumentWriter) OpenTable(name string) error {
	return dw.OpenElement(elemTable, attr(attrName, name))
}

// CloseTable pops the table element.
func (dw *DocumentWriter) CloseTable() error {
	return dw.CloseElement(elemTable)
}

// WriteRow emits one row element with one child per column. Children are
// named after the escaped column name; when escaping changed the name, the
// raw name rides along in a name attribute. NULL cells become empty
// elements with the null marker, distinguishable from empty strings.
func (dw *DocumentWriter) WriteRow(cols []ColumnInfo, cells []RenderedCell) error {
	if len(cols) != len(cells) {
		return tagErrf(ErrOutputIO, "row has %d cells for %d columns", len(cells), len(cols))
	}
	if err := dw.OpenElement(elemRow); err != nil {
		return err
	}
	for i := range cols {
		name := EscapeElementName(cols[i].Name)
		var attrs []xml.Attr
		if name != cols[i].Name {
			attrs = append(attrs, attr(attrName, cols[i].Name))
		}
		cell := cells[i]
		if cell.IsNull {
			attrs = append(attrs, attr(attrNull, "true"))
			if err := dw.EmptyElement(name, attrs...); err != nil {
				return err
			}
			continue
		}
		if cell.Base64 {
			attrs = append(attrs, attr(attrEncoding, "base64"))
		}
		if err := dw.TextElement(name, cell.Text, attrs...); err != nil {
			return err
		}
	}
	return dw.CloseElement(elemRow)
}

// CloseDocument closes the root element and flushes. Only after it returns
// nil is the document complete; an importer must verify the closing root
// tag before trusting the file.
func (dw *DocumentWriter) CloseDocument() error {
	if err := dw.CloseElement(elemDatabase); err != nil {
		return err
	}
	if dw.depth != 0 {
		return tagErrf(ErrOutputIO, "document closed with %d dangling elements", dw.depth)
	}
	return dw.Flush()
}

// Flush drains the encoder's buffer into the underlying writer.
func (dw *DocumentWriter) Flush() error {
	if err := dw.enc.Flush(); err != nil {
		return tagErr(ErrOutputIO, errors.Trace(err))
	}
	return nil
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// EscapeElementName makes an arbitrary column name a valid XML element
// name, reversibly: every offending rune becomes _xHHHH_ (eight digits for
// runes beyond the basic plane), and a literal "_x" is itself escaped so
// decoding is unambiguous.
func EscapeElementName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' && strings.HasPrefix(name[i:], "_x"):
			b.WriteString("_x005F_")
		case i == 0 && !isNameStartChar(r):
			b.WriteString(escapeRune(r))
		case i > 0 && !isNameChar(r):
			b.WriteString(escapeRune(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeElementName inverts EscapeElementName.
func UnescapeElementName(name string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(name); {
		if !strings.HasPrefix(name[i:], "_x") {
			b.WriteByte(name[i])
			i++
			continue
		}
		rest := name[i+2:]
		width := 0
		for _, n := range []int{4, 8} {
			if len(rest) > n && rest[n] == '_' && isHex(rest[:n]) {
				width = n
				break
			}
		}
		if width == 0 {
			return "", errors.Errorf("invalid name escape at offset %d in %q", i, name)
		}
		code, err := strconv.ParseUint(rest[:width], 16, 32)
		if err != nil {
			return "", errors.Trace(err)
		}
		b.WriteRune(rune(code))
		i += 2 + width + 1
	}
	return b.String(), nil
}

func escapeRune(r rune) string {
	if r > 0xFFFF {
		return fmt.Sprintf("_x%08X_", r)
	}
	return fmt.Sprintf("_x%04X_", r)
}

func isNameStartChar(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isNameChar(r rune) bool {
	return isNameStartChar(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
