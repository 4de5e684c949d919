// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"database/sql"

	"github.com/pingcap/errors"
)

// rowIter implements SQLRowIter over a live cursor.
// Note: To create a rowIter, please use `newRowIter()` instead of struct literal.
type rowIter struct {
	rows    *sql.Rows
	hasNext bool
	args    []interface{}
}

func newRowIter(rows *sql.Rows, argLen int) *rowIter {
	r := &rowIter{
		rows: rows,
		args: make([]interface{}, argLen),
	}
	r.hasNext = r.rows.Next()
	return r
}

func (iter *rowIter) Next(row RowReceiver) error {
	err := decodeFromRows(iter.rows, iter.args, row)
	iter.hasNext = iter.rows.Next()
	return err
}

func (iter *rowIter) HasNext() bool {
	return iter.hasNext
}

// Err distinguishes a clean end-of-set from a dropped cursor once HasNext
// reports false.
func (iter *rowIter) Err() error {
	return errors.Trace(iter.rows.Err())
}

func decodeFromRows(rows *sql.Rows, args []interface{}, row RowReceiver) error {
	row.BindAddress(args)
	if err := rows.Scan(args...); err != nil {
		return errors.Trace(err)
	}
	return nil
}

type tableData struct {
	table *TableInfo
	rows  *sql.Rows
}

func (td *tableData) TableName() string {
	return td.table.Name
}

func (td *tableData) Columns() []ColumnInfo {
	return td.table.Columns
}

func (td *tableData) Rows() SQLRowIter {
	return newRowIter(td.rows, len(td.table.Columns))
}

func (td *tableData) Close() error {
	return td.rows.Close()
}

// SelectAllFromTable opens the streaming cursor over one table. Transient
// engine conflicts on opening are retried with backoff.
func SelectAllFromTable(db *sql.DB, table *TableInfo) (TableDataIR, error) {
	query := buildSelectAllQuery(table.Name)
	rows, err := queryWithRetry(db, query)
	if err != nil {
		return nil, tagErr(ErrQuery, errors.Annotate(err, query))
	}
	return &tableData{table: table, rows: rows}, nil
}
