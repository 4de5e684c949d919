//+build !codes

package export

import (
	"fmt"
)

type mockWriter struct {
	buf string
}

func (m *mockWriter) Write(p []byte) (int, error) {
	if string(p) == "poison" {
		return 0, fmt.Errorf("poison_error")
	}
	m.buf += string(p)
	return len(p), nil
}

type failingWriter struct {
	failAfter int
	written   int
}

func (m *failingWriter) Write(p []byte) (int, error) {
	m.written += len(p)
	if m.written > m.failAfter {
		return 0, fmt.Errorf("disk full")
	}
	return len(p), nil
}

type mockSQLRowIter struct {
	idx  int
	data [][]interface{}
	args []interface{}
	err  error
}

// Next keeps one args slice across rows, like rowIter does, so a receiver
// that binds once stays bound for the whole iteration.
func (m *mockSQLRowIter) Next(row RowReceiver) error {
	if m.args == nil {
		m.args = make([]interface{}, len(m.data[m.idx]))
	}
	row.BindAddress(m.args)
	for i := range m.args {
		*(m.args[i]).(*interface{}) = m.data[m.idx][i]
	}
	m.idx += 1
	return nil
}

func (m *mockSQLRowIter) HasNext() bool {
	return m.idx < len(m.data)
}

func (m *mockSQLRowIter) Err() error {
	return m.err
}

type mockTableDataIR struct {
	table *TableInfo
	data  [][]interface{}
	err   error
}

func (m *mockTableDataIR) TableName() string {
	return m.table.Name
}

func (m *mockTableDataIR) Columns() []ColumnInfo {
	return m.table.Columns
}

func (m *mockTableDataIR) Rows() SQLRowIter {
	return &mockSQLRowIter{data: m.data, err: m.err}
}

func (m *mockTableDataIR) Close() error {
	return nil
}
