// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pingcap/errors"
)

// All catalog access goes through the engine's own system relations. Field
// order in the column query matches RDB$FIELD_POSITION so descriptors line
// up with the physical row layout of SELECT *.

const listTablesQuery = `SELECT TRIM(RDB$RELATION_NAME)
FROM RDB$RELATIONS
WHERE RDB$SYSTEM_FLAG = 0 AND RDB$VIEW_BLR IS NULL
ORDER BY RDB$RELATION_NAME`

const listColumnsQuery = `SELECT TRIM(rf.RDB$FIELD_NAME),
	f.RDB$FIELD_TYPE,
	COALESCE(f.RDB$FIELD_SUB_TYPE, 0),
	COALESCE(f.RDB$FIELD_LENGTH, 0),
	COALESCE(f.RDB$FIELD_PRECISION, 0),
	COALESCE(f.RDB$FIELD_SCALE, 0),
	COALESCE(rf.RDB$NULL_FLAG, 0),
	COALESCE(f.RDB$CHARACTER_LENGTH, 0),
	COALESCE(f.RDB$CHARACTER_SET_ID, 0)
FROM RDB$RELATION_FIELDS rf
JOIN RDB$FIELDS f ON rf.RDB$FIELD_SOURCE = f.RDB$FIELD_NAME
WHERE rf.RDB$RELATION_NAME = ?
ORDER BY rf.RDB$FIELD_POSITION`

const listPrimaryKeyQuery = `SELECT TRIM(sg.RDB$FIELD_NAME)
FROM RDB$RELATION_CONSTRAINTS rc
JOIN RDB$INDEX_SEGMENTS sg ON rc.RDB$INDEX_NAME = sg.RDB$INDEX_NAME
WHERE rc.RDB$RELATION_NAME = ? AND rc.RDB$CONSTRAINT_TYPE = 'PRIMARY KEY'
ORDER BY sg.RDB$FIELD_POSITION`

const listForeignKeysQuery = `SELECT TRIM(rc.RDB$CONSTRAINT_NAME),
	TRIM(sg.RDB$FIELD_NAME),
	TRIM(rc2.RDB$RELATION_NAME),
	TRIM(sg2.RDB$FIELD_NAME)
FROM RDB$RELATION_CONSTRAINTS rc
JOIN RDB$INDEX_SEGMENTS sg ON rc.RDB$INDEX_NAME = sg.RDB$INDEX_NAME
JOIN RDB$REF_CONSTRAINTS ref ON rc.RDB$CONSTRAINT_NAME = ref.RDB$CONSTRAINT_NAME
JOIN RDB$RELATION_CONSTRAINTS rc2 ON ref.RDB$CONST_NAME_UQ = rc2.RDB$CONSTRAINT_NAME
JOIN RDB$INDEX_SEGMENTS sg2 ON rc2.RDB$INDEX_NAME = sg2.RDB$INDEX_NAME
WHERE rc.RDB$RELATION_NAME = ? AND rc.RDB$CONSTRAINT_TYPE = 'FOREIGN KEY'`

const listGeneratorsQuery = `SELECT TRIM(RDB$GENERATOR_NAME)
FROM RDB$GENERATORS
WHERE RDB$SYSTEM_FLAG = 0
ORDER BY RDB$GENERATOR_NAME`

func simpleQuery(db *sql.DB, query string, handleOneRow func(*sql.Rows) error, args ...interface{}) error {
	rows, err := db.Query(query, args...)
	if err != nil {
		return errors.Annotate(err, query)
	}
	defer rows.Close()

	for rows.Next() {
		if err := handleOneRow(rows); err != nil {
			return errors.Annotate(err, query)
		}
	}
	return errors.Trace(rows.Err())
}

type oneStrColumnTable struct {
	data []string
}

func (o *oneStrColumnTable) handleOneRow(rows *sql.Rows) error {
	var str string
	if err := rows.Scan(&str); err != nil {
		return errors.Trace(err)
	}
	o.data = append(o.data, str)
	return nil
}

// ListTables enumerates user tables, ordered by name for determinism.
// Views and system relations are excluded.
func ListTables(db *sql.DB) ([]string, error) {
	var res oneStrColumnTable
	if err := simpleQuery(db, listTablesQuery, res.handleOneRow); err != nil {
		return nil, tagErr(ErrQuery, err)
	}
	return res.data, nil
}

// ListColumns reads the column descriptors of one table in field position
// order and validates every type code against the known set.
func ListColumns(db *sql.DB, table string) ([]ColumnInfo, error) {
	var cols []ColumnInfo
	handleOneRow := func(rows *sql.Rows) error {
		var col ColumnInfo
		var notNull int
		err := rows.Scan(&col.Name, &col.TypeCode, &col.SubType, &col.Length,
			&col.Precision, &col.Scale, &notNull, &col.CharLength, &col.CharsetID)
		if err != nil {
			return errors.Trace(err)
		}
		col.NotNull = notNull != 0
		cols = append(cols, col)
		return nil
	}
	if err := simpleQuery(db, listColumnsQuery, handleOneRow, table); err != nil {
		return nil, tagErr(ErrMetadata, err)
	}
	if len(cols) == 0 {
		return nil, tagErrf(ErrMetadata, "table %s has no columns in the catalog", table)
	}
	for _, col := range cols {
		if err := col.validate(table); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

// DescribeTable builds the full descriptor of one table, including which
// columns take part in the primary key.
func DescribeTable(db *sql.DB, table string) (*TableInfo, error) {
	cols, err := ListColumns(db, table)
	if err != nil {
		return nil, err
	}
	pk, err := listPrimaryKey(db, table)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if _, ok := pk[cols[i].Name]; ok {
			cols[i].PrimaryKey = true
		}
	}
	return &TableInfo{Name: table, Columns: cols}, nil
}

func listPrimaryKey(db *sql.DB, table string) (map[string]struct{}, error) {
	var res oneStrColumnTable
	if err := simpleQuery(db, listPrimaryKeyQuery, res.handleOneRow, table); err != nil {
		return nil, tagErr(ErrMetadata, err)
	}
	pk := make(map[string]struct{}, len(res.data))
	for _, name := range res.data {
		pk[name] = struct{}{}
	}
	return pk, nil
}

// ListForeignKeys reads the referential constraints of one table.
func ListForeignKeys(db *sql.DB, table string) ([]ForeignKey, error) {
	var fks []ForeignKey
	handleOneRow := func(rows *sql.Rows) error {
		var fk ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return errors.Trace(err)
		}
		fks = append(fks, fk)
		return nil
	}
	if err := simpleQuery(db, listForeignKeysQuery, handleOneRow, table); err != nil {
		return nil, tagErr(ErrMetadata, err)
	}
	return fks, nil
}

// ListGenerators reads user sequences with their current values.
func ListGenerators(db *sql.DB) ([]Generator, error) {
	var res oneStrColumnTable
	if err := simpleQuery(db, listGeneratorsQuery, res.handleOneRow); err != nil {
		return nil, tagErr(ErrQuery, err)
	}
	gens := make([]Generator, 0, len(res.data))
	for _, name := range res.data {
		var value int64
		query := fmt.Sprintf("SELECT GEN_ID(%s, 0) FROM RDB$DATABASE", quoteIdentifier(name))
		handleOneRow := func(rows *sql.Rows) error {
			return errors.Trace(rows.Scan(&value))
		}
		if err := simpleQuery(db, query, handleOneRow); err != nil {
			return nil, tagErr(ErrQuery, err)
		}
		gens = append(gens, Generator{Name: name, Value: value})
	}
	return gens, nil
}

// buildSelectAllQuery produces the per-table cursor query. Identifiers are
// always quoted, dialect-3 style.
func buildSelectAllQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(table))
}

// quoteIdentifier wraps an identifier in double quotes, doubling any quote
// characters inside it, per the engine's dialect-3 rules.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
