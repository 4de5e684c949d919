// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	stderrors "errors"
	"fmt"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/pingcap/check"
)

var _ = Suite(&testIRImplSuite{})

type testIRImplSuite struct{}

func (s *testIRImplSuite) TestRowIter(c *C) {
	db, mock, err := sqlmock.New()
	c.Assert(err, IsNil)
	defer db.Close()

	expectedRows := mock.NewRows([]string{"id"}).
		AddRow(1).AddRow(2).AddRow(3)
	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(expectedRows)
	rows, err := db.Query("SELECT id FROM t")
	c.Assert(err, IsNil)

	iter := newRowIter(rows, 1)
	for i := int64(1); i <= 3; i++ {
		// HasNext is stable until the next fetch.
		c.Assert(iter.HasNext(), IsTrue)
		c.Assert(iter.HasNext(), IsTrue)
		receiver := MakeRowReceiver(1)
		c.Assert(iter.Next(receiver), IsNil)
		c.Assert(receiver.Cell(0).Raw, Equals, i)
	}
	c.Assert(iter.HasNext(), IsFalse)
	c.Assert(iter.Err(), IsNil)
}

func (s *testIRImplSuite) TestRowIterReportsDroppedCursor(c *C) {
	db, mock, err := sqlmock.New()
	c.Assert(err, IsNil)
	defer db.Close()

	expectedRows := mock.NewRows([]string{"id"}).
		AddRow(1).AddRow(2).
		RowError(1, fmt.Errorf("cursor dropped"))
	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(expectedRows)
	rows, err := db.Query("SELECT id FROM t")
	c.Assert(err, IsNil)

	iter := newRowIter(rows, 1)
	c.Assert(iter.HasNext(), IsTrue)
	receiver := MakeRowReceiver(1)
	c.Assert(iter.Next(receiver), IsNil)
	c.Assert(receiver.Cell(0).Raw, Equals, int64(1))

	// The second row never arrives; the iterator ends and reports why.
	c.Assert(iter.HasNext(), IsFalse)
	c.Assert(iter.Err(), ErrorMatches, ".*cursor dropped.*")
}

func (s *testIRImplSuite) TestSelectAllFromTable(c *C) {
	db, mock, err := sqlmock.New()
	c.Assert(err, IsNil)
	defer db.Close()

	table := &TableInfo{Name: "ITEMS", Columns: []ColumnInfo{
		{Name: "ID", TypeCode: fbTypeInteger},
		{Name: "NAME", TypeCode: fbTypeVarchar, CharsetID: charsetUTF8},
	}}
	mock.ExpectQuery(`SELECT \* FROM "ITEMS"`).
		WillReturnRows(mock.NewRows([]string{"ID", "NAME"}).AddRow(1, "ada"))

	td, err := SelectAllFromTable(db, table)
	c.Assert(err, IsNil)
	defer td.Close()

	c.Assert(td.TableName(), Equals, "ITEMS")
	c.Assert(td.Columns(), HasLen, 2)

	iter := td.Rows()
	c.Assert(iter.HasNext(), IsTrue)
	receiver := MakeRowReceiver(2)
	c.Assert(iter.Next(receiver), IsNil)
	c.Assert(receiver.Cell(1).Raw, Equals, "ada")
	c.Assert(iter.HasNext(), IsFalse)
	c.Assert(mock.ExpectationsWereMet(), IsNil)
}

func (s *testIRImplSuite) TestSelectAllFromTableRejected(c *C) {
	db, mock, err := sqlmock.New()
	c.Assert(err, IsNil)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "GHOST"`).
		WillReturnError(fmt.Errorf("table GHOST is not defined"))

	_, err = SelectAllFromTable(db, &TableInfo{Name: "GHOST"})
	c.Assert(err, NotNil)
	c.Assert(stderrors.Is(err, ErrQuery), IsTrue)
}
