// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

// TableDataIR is the intermediate representation of one table's data
// between the row streamer and the serializer.
type TableDataIR interface {
	TableName() string
	Columns() []ColumnInfo
	Rows() SQLRowIter
	Close() error
}

// SQLRowIter is the iterator over a table's rows. Err reports a cursor
// failure once HasNext turns false.
type SQLRowIter interface {
	Next(RowReceiver) error
	HasNext() bool
	Err() error
}

// RowReceiver binds scan destinations for one row.
type RowReceiver interface {
	BindAddress([]interface{})
}
