// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"fmt"
)

// Firebird field type codes as stored in RDB$FIELDS.RDB$FIELD_TYPE.
const (
	fbTypeSmallint  = 7
	fbTypeInteger   = 8
	fbTypeFloat     = 10
	fbTypeDate      = 12
	fbTypeTime      = 13
	fbTypeChar      = 14
	fbTypeBigint    = 16
	fbTypeBoolean   = 23
	fbTypeDouble    = 27
	fbTypeTimestamp = 35
	fbTypeVarchar   = 37
	fbTypeCString   = 40
	fbTypeBlob      = 261
)

// Blob subtypes.
const (
	blobSubTypeBinary = 0
	blobSubTypeText   = 1
)

// Numeric subtypes of the integral storage types.
const (
	numericSubTypeNumeric = 1
	numericSubTypeDecimal = 2
)

// ColumnInfo describes one column the way the catalog declares it. Field
// order inside TableInfo matches RDB$FIELD_POSITION and therefore the
// physical row layout of SELECT *.
type ColumnInfo struct {
	Name       string
	TypeCode   int
	SubType    int
	Length     int
	Precision  int
	Scale      int
	CharLength int
	CharsetID  int
	NotNull    bool
	PrimaryKey bool
}

// TableInfo is the immutable descriptor of one user table.
type TableInfo struct {
	Name    string
	Columns []ColumnInfo
}

// ForeignKey describes one referential constraint of a table.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
}

// Generator is a sequence with its current value.
type Generator struct {
	Name  string
	Value int64
}

var knownTypeCodes = map[int]struct{}{
	fbTypeSmallint:  {},
	fbTypeInteger:   {},
	fbTypeFloat:     {},
	fbTypeDate:      {},
	fbTypeTime:      {},
	fbTypeChar:      {},
	fbTypeBigint:    {},
	fbTypeBoolean:   {},
	fbTypeDouble:    {},
	fbTypeTimestamp: {},
	fbTypeVarchar:   {},
	fbTypeCString:   {},
	fbTypeBlob:      {},
}

func (col ColumnInfo) validate(table string) error {
	if _, ok := knownTypeCodes[col.TypeCode]; !ok {
		return tagErrf(ErrMetadata, "table %s column %s references unknown type code %d", table, col.Name, col.TypeCode)
	}
	return nil
}

func (col ColumnInfo) isNumericStorage() bool {
	switch col.TypeCode {
	case fbTypeSmallint, fbTypeInteger, fbTypeBigint:
		return col.SubType == numericSubTypeNumeric || col.SubType == numericSubTypeDecimal || col.Scale < 0
	}
	return false
}

func (col ColumnInfo) isTextBlob() bool {
	return col.TypeCode == fbTypeBlob && col.SubType == blobSubTypeText
}

func (col ColumnInfo) isBinaryBlob() bool {
	return col.TypeCode == fbTypeBlob && col.SubType != blobSubTypeText
}

func (col ColumnInfo) isFixedChar() bool {
	return col.TypeCode == fbTypeChar
}

// declaredLength prefers the character length over the byte length for
// multi-byte character sets.
func (col ColumnInfo) declaredLength() int {
	if col.CharLength > 0 {
		return col.CharLength
	}
	return col.Length
}

// SQLType renders the declared SQL type the way DDL would spell it.
func (col ColumnInfo) SQLType() string {
	if col.isNumericStorage() && col.SubType != 0 {
		name := "NUMERIC"
		if col.SubType == numericSubTypeDecimal {
			name = "DECIMAL"
		}
		return fmt.Sprintf("%s(%d,%d)", name, col.Precision, -col.Scale)
	}
	switch col.TypeCode {
	case fbTypeSmallint:
		return "SMALLINT"
	case fbTypeInteger:
		return "INTEGER"
	case fbTypeBigint:
		return "BIGINT"
	case fbTypeFloat:
		return "FLOAT"
	case fbTypeDouble:
		return "DOUBLE PRECISION"
	case fbTypeBoolean:
		return "BOOLEAN"
	case fbTypeDate:
		return "DATE"
	case fbTypeTime:
		return "TIME"
	case fbTypeTimestamp:
		return "TIMESTAMP"
	case fbTypeChar:
		return fmt.Sprintf("CHAR(%d)", col.declaredLength())
	case fbTypeVarchar, fbTypeCString:
		return fmt.Sprintf("VARCHAR(%d)", col.declaredLength())
	case fbTypeBlob:
		switch col.SubType {
		case blobSubTypeBinary:
			return "BLOB SUB_TYPE BINARY"
		case blobSubTypeText:
			return "BLOB SUB_TYPE TEXT"
		default:
			return fmt.Sprintf("BLOB SUB_TYPE %d", col.SubType)
		}
	}
	return fmt.Sprintf("UNKNOWN(%d)", col.TypeCode)
}
