// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"database/sql"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fdbtools/fdb2xml/log"
)

const exportedAtLayout = "2006-01-02T15:04:05"

// Dump runs one export end to end: connect, extract metadata, stream every
// user table into the XML document, finalize. A non-nil error means total
// failure and no output file is left behind; otherwise the Summary's Status
// distinguishes full from partial success.
func Dump(conf *Config) (*Summary, error) {
	adjustConfig(conf)
	summary := &Summary{}

	db, err := Connect(conf)
	if err != nil {
		return summary, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("closing database failed", zap.Error(err))
		}
	}()

	info := DetectEngineInfo(db)
	if info.Raw != "" {
		log.Info("connected", zap.String("database", conf.DatabasePath),
			zap.String("engine version", info.Raw))
	}

	tableNames, err := ListTables(db)
	if err != nil {
		// Without the relation catalog there is nothing to export.
		return summary, err
	}
	log.Info("enumerated user tables", zap.Int("count", len(tableNames)))

	tables := make([]*TableInfo, 0, len(tableNames))
	for _, name := range tableNames {
		table, err := DescribeTable(db, name)
		if err != nil {
			if isFatal(err) {
				return summary, err
			}
			errorCount.WithLabelValues().Inc()
			skippedTablesCounter.WithLabelValues().Inc()
			summary.recordSkipped(name, err)
			log.Warn("skipping table with broken catalog metadata",
				zap.String("table", name), zap.Error(err))
			continue
		}
		tables = append(tables, table)
	}

	sink, err := NewFileSink(conf.ActualOutputPath())
	if err != nil {
		return summary, err
	}
	// Any fatal failure from here on discards the partial file; only the
	// finalize path below may keep it.
	finalized := false
	defer func() {
		if !finalized {
			sink.Discard()
		}
	}()

	doc := NewDocumentWriter(sink)
	exported := ""
	if !conf.Deterministic {
		exported = time.Now().Format(exportedAtLayout)
	}
	if err := doc.OpenDocument(filepath.Base(conf.DatabasePath), exported); err != nil {
		return summary, err
	}

	if conf.IncludeSchema {
		if err := writeSchemaSection(db, doc, tables, summary); err != nil {
			return summary, err
		}
	}

	if err := doc.OpenElement(elemData); err != nil {
		return summary, err
	}
	for _, table := range tables {
		if err := dumpTable(db, conf, doc, table, summary); err != nil {
			return summary, err
		}
	}
	if err := doc.CloseElement(elemData); err != nil {
		return summary, err
	}

	if err := doc.CloseDocument(); err != nil {
		return summary, err
	}
	if err := sink.Finalize(); err != nil {
		return summary, err
	}
	finalized = true

	log.Info("export finished",
		zap.String("path", sink.Path()),
		zap.Int("tables", summary.Tables),
		zap.Uint64("rows", summary.Rows),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("truncated", len(summary.Truncated)),
		zap.String("status", summary.Status().String()))
	return summary, nil
}

// writeSchemaSection emits generators, columns and referential constraints.
// Catalog failures here degrade to warnings; only output failures abort.
func writeSchemaSection(db *sql.DB, doc *DocumentWriter, tables []*TableInfo, summary *Summary) error {
	if err := doc.OpenElement(elemSchema); err != nil {
		return err
	}

	gens, err := ListGenerators(db)
	if err != nil {
		summary.recordWarning(fmt.Sprintf("generators not exported: %s", err.Error()))
		log.Warn("reading generators failed", zap.Error(err))
	}
	if len(gens) > 0 {
		if err := doc.OpenElement(elemGenerators); err != nil {
			return err
		}
		for _, gen := range gens {
			err := doc.EmptyElement(elemGenerator,
				attr(attrName, gen.Name),
				attr("value", fmt.Sprintf("%d", gen.Value)))
			if err != nil {
				return err
			}
		}
		if err := doc.CloseElement(elemGenerators); err != nil {
			return err
		}
	}

	for _, table := range tables {
		if err := doc.OpenElement(elemTable, attr(attrName, table.Name)); err != nil {
			return err
		}
		for _, col := range table.Columns {
			if err := writeColumnElement(doc, col); err != nil {
				return err
			}
		}
		fks, err := ListForeignKeys(db, table.Name)
		if err != nil {
			summary.recordWarning(fmt.Sprintf("table %s: foreign keys not exported: %s", table.Name, err.Error()))
			log.Warn("reading foreign keys failed", zap.String("table", table.Name), zap.Error(err))
		}
		for _, fk := range fks {
			err := doc.EmptyElement(elemForeignKey,
				attr(attrName, fk.Name),
				attr("column", fk.Column),
				attr("references", fmt.Sprintf("%s(%s)", fk.RefTable, fk.RefColumn)))
			if err != nil {
				return err
			}
		}
		if err := doc.CloseElement(elemTable); err != nil {
			return err
		}
	}

	return doc.CloseElement(elemSchema)
}

func writeColumnElement(doc *DocumentWriter, col ColumnInfo) error {
	attrs := []xml.Attr{
		attr(attrName, col.Name),
		attr("type", col.SQLType()),
	}
	if col.NotNull {
		attrs = append(attrs, attr("notnull", "true"))
	}
	if col.PrimaryKey {
		attrs = append(attrs, attr("pk", "true"))
	}
	return doc.EmptyElement(elemColumn, attrs...)
}

// dumpTable streams one table into the document. Fetch failures truncate
// the table but never the run; only output failures propagate.
func dumpTable(db *sql.DB, conf *Config, doc *DocumentWriter, table *TableInfo, summary *Summary) error {
	log.Debug("start dumping table", zap.String("table", table.Name))
	td, err := SelectAllFromTable(db, table)
	if err != nil {
		errorCount.WithLabelValues().Inc()
		skippedTablesCounter.WithLabelValues().Inc()
		summary.recordSkipped(table.Name, err)
		log.Warn("skipping table, cursor rejected", zap.String("table", table.Name), zap.Error(err))
		return nil
	}
	defer func() {
		if err := td.Close(); err != nil {
			log.Warn("closing cursor failed", zap.String("table", table.Name), zap.Error(err))
		}
	}()
	return WriteTableData(conf, doc, td, summary)
}

// WriteTableData streams one open cursor into the document as a complete
// table element. A dropped cursor truncates the element (marked with a
// comment) without failing the run.
func WriteTableData(conf *Config, doc *DocumentWriter, td TableDataIR, summary *Summary) error {
	name := td.TableName()
	if err := doc.OpenTable(name); err != nil {
		return err
	}

	cols := td.Columns()
	receiver := MakeRowReceiver(len(cols))
	rendered := make([]RenderedCell, len(cols))
	warn := func(warnErr error) {
		errorCount.WithLabelValues().Inc()
		summary.recordWarning(warnErr.Error())
		log.Warn("cell substituted", zap.String("table", name), zap.Error(warnErr))
	}

	iter := td.Rows()
	var (
		tableRows uint64
		batchRows int
		fetchErr  error
	)
	for iter.HasNext() {
		if err := iter.Next(receiver); err != nil {
			fetchErr = err
			break
		}
		for i := range cols {
			rendered[i] = RenderCell(cols[i], receiver.Cell(i).Raw, warn)
		}
		if err := doc.WriteRow(cols, rendered); err != nil {
			return err
		}
		tableRows++
		batchRows++
		if batchRows >= conf.BatchSize {
			// The batch bound is the only backpressure mechanism: flush
			// before fetching more so memory stays independent of N.
			if err := doc.Flush(); err != nil {
				return err
			}
			batchRows = 0
		}
	}
	if fetchErr == nil {
		fetchErr = iter.Err()
	}

	if fetchErr != nil {
		fetchErr = tagErr(ErrRowFetch, fetchErr)
		errorCount.WithLabelValues().Inc()
		skippedTablesCounter.WithLabelValues().Inc()
		summary.recordTruncated(name, fetchErr)
		log.Warn("table truncated, fetch failed mid-stream",
			zap.String("table", name), zap.Uint64("rows", tableRows), zap.Error(fetchErr))
		comment := fmt.Sprintf("truncated: row fetch failed after %d rows", tableRows)
		if err := doc.Comment(comment); err != nil {
			return err
		}
	} else {
		finishedTablesCounter.WithLabelValues().Inc()
	}

	if err := doc.CloseTable(); err != nil {
		return err
	}
	if err := doc.Flush(); err != nil {
		return err
	}

	summary.Tables++
	summary.Rows += tableRows
	finishedRowsCounter.WithLabelValues().Add(float64(tableRows))
	log.Debug("finished dumping table",
		zap.String("table", name), zap.Uint64("rows", tableRows))
	return nil
}
