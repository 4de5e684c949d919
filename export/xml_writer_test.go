// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"bytes"
	"encoding/xml"
	stderrors "errors"
	"io"
	"strings"

	. "github.com/pingcap/check"
)

var _ = Suite(&testXMLWriterSuite{})

type testXMLWriterSuite struct{}

func (s *testXMLWriterSuite) TestEscapeElementName(c *C) {
	cases := []struct {
		raw, escaped string
	}{
		{"ID", "ID"},
		{"ORDER_ID", "ORDER_ID"},
		{"ORDER ID", "ORDER_x0020_ID"},
		{"2ND_COL", "_x0032_ND_COL"},
		{"WEIRD%NAME", "WEIRD_x0025_NAME"},
		{"A<B", "A_x003C_B"},
		{"COL_x", "COL_x005F_x"},
		{"_xFF", "_x005F_xFF"},
		{"ДАТА", "ДАТА"},
		{"NAME-OK.1", "NAME-OK.1"},
	}
	for _, ca := range cases {
		got := EscapeElementName(ca.raw)
		c.Assert(got, Equals, ca.escaped, Commentf("raw %q", ca.raw))
		back, err := UnescapeElementName(got)
		c.Assert(err, IsNil)
		c.Assert(back, Equals, ca.raw)
	}
}

func (s *testXMLWriterSuite) TestEscapeElementNameAstral(c *C) {
	got := EscapeElementName("A\U0001F600B")
	c.Assert(got, Equals, "A_x0001F600_B")
	back, err := UnescapeElementName(got)
	c.Assert(err, IsNil)
	c.Assert(back, Equals, "A\U0001F600B")
}

func (s *testXMLWriterSuite) TestUnescapeInvalid(c *C) {
	for _, name := range []string{"_x", "_x12", "_x12Z4_", "_xGGGG_", "_x0041"} {
		_, err := UnescapeElementName(name)
		c.Assert(err, NotNil, Commentf("name %q", name))
	}
}

func (s *testXMLWriterSuite) TestGoldenDocument(c *C) {
	var buf bytes.Buffer
	doc := NewDocumentWriter(&buf)
	c.Assert(doc.OpenDocument("t.fdb", ""), IsNil)
	c.Assert(doc.OpenElement(elemData), IsNil)
	c.Assert(doc.OpenTable("T"), IsNil)
	cols := []ColumnInfo{{Name: "ID", TypeCode: fbTypeInteger}}
	cells := []RenderedCell{{Text: "1"}}
	c.Assert(doc.WriteRow(cols, cells), IsNil)
	c.Assert(doc.CloseTable(), IsNil)
	c.Assert(doc.CloseElement(elemData), IsNil)
	c.Assert(doc.CloseDocument(), IsNil)

	expected := `<?xml version="1.0" encoding="UTF-8"?>
<database source="t.fdb">
  <data>
    <table name="T">
      <row>
        <ID>1</ID>
      </row>
    </table>
  </data>
</database>`
	c.Assert(buf.String(), Equals, expected)
}

func (s *testXMLWriterSuite) TestHostileNamesStayWellFormed(c *C) {
	var buf bytes.Buffer
	doc := NewDocumentWriter(&buf)
	c.Assert(doc.OpenDocument(`we"ird&<db>.fdb`, "2021-06-01T12:00:00"), IsNil)
	c.Assert(doc.OpenTable(`T<&>"`), IsNil)
	cols := []ColumnInfo{
		{Name: "ORDER ID", TypeCode: fbTypeInteger},
		{Name: "A<B", TypeCode: fbTypeVarchar},
	}
	cells := []RenderedCell{
		{Text: "7"},
		{Text: `x < y && z > "w"`},
	}
	c.Assert(doc.WriteRow(cols, cells), IsNil)
	c.Assert(doc.CloseTable(), IsNil)
	c.Assert(doc.CloseDocument(), IsNil)

	out := buf.String()
	c.Assert(out, Matches, `(?s).*<ORDER_x0020_ID name="ORDER ID">7</ORDER_x0020_ID>.*`)
	assertWellFormed(c, out)
}

func (s *testXMLWriterSuite) TestNullVersusEmptyString(c *C) {
	var buf bytes.Buffer
	doc := NewDocumentWriter(&buf)
	c.Assert(doc.OpenTable("T"), IsNil)
	cols := []ColumnInfo{
		{Name: "A", TypeCode: fbTypeVarchar},
		{Name: "B", TypeCode: fbTypeVarchar},
	}
	cells := []RenderedCell{
		{IsNull: true},
		{Text: ""},
	}
	c.Assert(doc.WriteRow(cols, cells), IsNil)
	c.Assert(doc.CloseTable(), IsNil)
	c.Assert(doc.Flush(), IsNil)

	out := buf.String()
	c.Assert(strings.Contains(out, `<A null="true"></A>`), IsTrue)
	c.Assert(strings.Contains(out, `<B></B>`), IsTrue)
	c.Assert(strings.Contains(out, `<B null`), IsFalse)
}

func (s *testXMLWriterSuite) TestWriteRowArityMismatch(c *C) {
	var buf bytes.Buffer
	doc := NewDocumentWriter(&buf)
	c.Assert(doc.OpenTable("T"), IsNil)
	err := doc.WriteRow([]ColumnInfo{{Name: "A"}}, nil)
	c.Assert(err, NotNil)
	c.Assert(stderrors.Is(err, ErrOutputIO), IsTrue)
}

func (s *testXMLWriterSuite) TestCommentNeverBreaksDocument(c *C) {
	var buf bytes.Buffer
	doc := NewDocumentWriter(&buf)
	c.Assert(doc.OpenDocument("t.fdb", ""), IsNil)
	c.Assert(doc.Comment("dashes -- inside --> here"), IsNil)
	// Odd runs survive a single replacement pass.
	c.Assert(doc.Comment("odd runs --- and ----- too"), IsNil)
	c.Assert(doc.CloseDocument(), IsNil)
	assertWellFormed(c, buf.String())
}

func (s *testXMLWriterSuite) TestCloseDocumentCatchesDanglingElements(c *C) {
	var buf bytes.Buffer
	doc := NewDocumentWriter(&buf)
	c.Assert(doc.OpenDocument("t.fdb", ""), IsNil)
	c.Assert(doc.OpenElement(elemData), IsNil)
	// Closing the root with data still open is a writer bug, not
	// something to silently emit.
	err := doc.CloseDocument()
	c.Assert(err, NotNil)
}

func assertWellFormed(c *C, doc string) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		c.Assert(err, IsNil)
	}
}
