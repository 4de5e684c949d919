// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "2006-01-02"
	timeLayout      = "15:04:05.000"
	timestampLayout = "2006-01-02T15:04:05.000"
)

// Cell holds one raw value scanned from the driver. The driver decides the
// Go representation; RenderCell maps it to text using the column descriptor.
type Cell struct {
	Raw interface{}
}

// BindAddress implements RowReceiver.
func (c *Cell) BindAddress(args []interface{}) {
	args[0] = &c.Raw
}

// RowReceiverArr binds one Cell per column, reused across every row of a
// table. Only the current row's cells are ever live.
type RowReceiverArr struct {
	bound bool
	cells []Cell
}

// MakeRowReceiver constructs a receiver for n columns.
func MakeRowReceiver(n int) *RowReceiverArr {
	return &RowReceiverArr{cells: make([]Cell, n)}
}

// BindAddress implements RowReceiver. Binding is idempotent: the scan
// destinations stay stable for the lifetime of the cursor.
func (r *RowReceiverArr) BindAddress(args []interface{}) {
	if r.bound {
		return
	}
	r.bound = true
	for i := range args {
		r.cells[i].BindAddress(args[i : i+1])
	}
}

// Cell returns the receiver slot of column i.
func (r *RowReceiverArr) Cell(i int) *Cell {
	return &r.cells[i]
}

// RenderedCell is the textual form of one cell, ready for serialization.
type RenderedCell struct {
	Text string
	// IsNull marks an engine NULL, distinguished from an empty string.
	IsNull bool
	// Base64 marks binary content carried as base64 text.
	Base64 bool
}

// RenderCell converts a raw cell into its canonical text, a pure function
// of the column descriptor and the driver value. Untranslatable character
// data is substituted and reported through warn, never fatal.
func RenderCell(col ColumnInfo, raw interface{}, warn func(error)) RenderedCell {
	if raw == nil {
		return RenderedCell{IsNull: true}
	}

	switch v := raw.(type) {
	case int16:
		return renderInteger(col, int64(v))
	case int32:
		return renderInteger(col, int64(v))
	case int64:
		return renderInteger(col, v)
	case int:
		return renderInteger(col, int64(v))
	case float32:
		return RenderedCell{Text: strconv.FormatFloat(float64(v), 'g', -1, 32)}
	case float64:
		return RenderedCell{Text: strconv.FormatFloat(v, 'g', -1, 64)}
	case bool:
		return RenderedCell{Text: strconv.FormatBool(v)}
	case decimal.Decimal:
		return renderDecimal(col, v)
	case time.Time:
		return renderTime(col, v)
	case []byte:
		return renderBytes(col, v, warn)
	case string:
		return renderBytes(col, []byte(v), warn)
	default:
		return RenderedCell{Text: fmt.Sprint(v)}
	}
}

func renderInteger(col ColumnInfo, v int64) RenderedCell {
	if col.Scale < 0 {
		return RenderedCell{Text: formatScaled(v, col.Scale)}
	}
	return RenderedCell{Text: strconv.FormatInt(v, 10)}
}

func renderDecimal(col ColumnInfo, v decimal.Decimal) RenderedCell {
	if col.Scale < 0 {
		// StringFixed keeps the trailing zeros the declared scale implies.
		return RenderedCell{Text: v.StringFixed(int32(-col.Scale))}
	}
	return RenderedCell{Text: v.String()}
}

// formatScaled renders an unscaled integer with the decimal point inserted
// scale digits from the right. Trailing zeros are preserved, nothing is
// rounded.
func formatScaled(unscaled int64, scale int) string {
	digits := strconv.FormatInt(unscaled, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	frac := -scale
	if len(digits) <= frac {
		digits = strings.Repeat("0", frac-len(digits)+1) + digits
	}
	out := digits[:len(digits)-frac] + "." + digits[len(digits)-frac:]
	if neg {
		out = "-" + out
	}
	return out
}

func renderTime(col ColumnInfo, v time.Time) RenderedCell {
	// Engine times are timezone-naive; the driver's location is ignored.
	switch col.TypeCode {
	case fbTypeDate:
		return RenderedCell{Text: v.Format(dateLayout)}
	case fbTypeTime:
		return RenderedCell{Text: v.Format(timeLayout)}
	default:
		return RenderedCell{Text: v.Format(timestampLayout)}
	}
}

func renderBytes(col ColumnInfo, raw []byte, warn func(error)) RenderedCell {
	if col.isBinaryBlob() || col.CharsetID == charsetOctets {
		return RenderedCell{
			Text:   base64.StdEncoding.EncodeToString(raw),
			Base64: true,
		}
	}

	text, replaced := decodeText(raw, col.CharsetID)
	if replaced && warn != nil {
		warn(tagErrf(ErrEncoding, "column %s: bytes not translatable from charset %d, substituted", col.Name, col.CharsetID))
	}
	if col.isFixedChar() {
		// CHAR columns are space padded by the engine.
		text = strings.TrimRight(text, " ")
	}
	return RenderedCell{Text: text}
}
