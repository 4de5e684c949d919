// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	stderrors "errors"

	. "github.com/pingcap/check"
)

var _ = Suite(&testMetadataSuite{})

type testMetadataSuite struct{}

func (s *testMetadataSuite) TestValidate(c *C) {
	c.Assert(ColumnInfo{Name: "ID", TypeCode: fbTypeInteger}.validate("T"), IsNil)

	err := ColumnInfo{Name: "X", TypeCode: 999}.validate("T")
	c.Assert(err, NotNil)
	c.Assert(stderrors.Is(err, ErrMetadata), IsTrue)
}

func (s *testMetadataSuite) TestSQLType(c *C) {
	cases := []struct {
		col      ColumnInfo
		expected string
	}{
		{ColumnInfo{TypeCode: fbTypeSmallint}, "SMALLINT"},
		{ColumnInfo{TypeCode: fbTypeInteger}, "INTEGER"},
		{ColumnInfo{TypeCode: fbTypeBigint}, "BIGINT"},
		{ColumnInfo{TypeCode: fbTypeFloat}, "FLOAT"},
		{ColumnInfo{TypeCode: fbTypeDouble}, "DOUBLE PRECISION"},
		{ColumnInfo{TypeCode: fbTypeBoolean}, "BOOLEAN"},
		{ColumnInfo{TypeCode: fbTypeDate}, "DATE"},
		{ColumnInfo{TypeCode: fbTypeTime}, "TIME"},
		{ColumnInfo{TypeCode: fbTypeTimestamp}, "TIMESTAMP"},
		{ColumnInfo{TypeCode: fbTypeChar, Length: 10}, "CHAR(10)"},
		{ColumnInfo{TypeCode: fbTypeChar, Length: 40, CharLength: 10}, "CHAR(10)"},
		{ColumnInfo{TypeCode: fbTypeVarchar, CharLength: 20}, "VARCHAR(20)"},
		{ColumnInfo{TypeCode: fbTypeCString, Length: 32}, "VARCHAR(32)"},
		{ColumnInfo{TypeCode: fbTypeBigint, SubType: numericSubTypeNumeric, Precision: 18, Scale: -2}, "NUMERIC(18,2)"},
		{ColumnInfo{TypeCode: fbTypeInteger, SubType: numericSubTypeDecimal, Precision: 9, Scale: -3}, "DECIMAL(9,3)"},
		{ColumnInfo{TypeCode: fbTypeBlob, SubType: blobSubTypeBinary}, "BLOB SUB_TYPE BINARY"},
		{ColumnInfo{TypeCode: fbTypeBlob, SubType: blobSubTypeText}, "BLOB SUB_TYPE TEXT"},
		{ColumnInfo{TypeCode: fbTypeBlob, SubType: 5}, "BLOB SUB_TYPE 5"},
	}
	for _, ca := range cases {
		c.Assert(ca.col.SQLType(), Equals, ca.expected, Commentf("%+v", ca.col))
	}
}

func (s *testMetadataSuite) TestTypePredicates(c *C) {
	scaled := ColumnInfo{TypeCode: fbTypeInteger, Scale: -2}
	c.Assert(scaled.isNumericStorage(), IsTrue)

	plain := ColumnInfo{TypeCode: fbTypeInteger}
	c.Assert(plain.isNumericStorage(), IsFalse)

	c.Assert(ColumnInfo{TypeCode: fbTypeBlob, SubType: blobSubTypeText}.isTextBlob(), IsTrue)
	c.Assert(ColumnInfo{TypeCode: fbTypeBlob, SubType: blobSubTypeBinary}.isBinaryBlob(), IsTrue)
	c.Assert(ColumnInfo{TypeCode: fbTypeChar}.isFixedChar(), IsTrue)
	c.Assert(ColumnInfo{TypeCode: fbTypeVarchar}.isFixedChar(), IsFalse)
}
