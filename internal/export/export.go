// Package export serializes run results as delimited text files for download
// and scheduled delivery.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"oder/internal/domain"
)

// Write serializes a header row plus data rows to w using the given
// delimiter. SQL NULL cells render as empty fields.
func Write(w io.Writer, delimiter string, columns []string, rows []map[string]*string) error {
	var b strings.Builder

	for i, c := range columns {
		if i > 0 {
			b.WriteString(delimiter)
		}
		b.WriteString(escapeField(c, delimiter))
	}
	b.WriteString("\n")

	for _, row := range rows {
		for i, c := range columns {
			if i > 0 {
				b.WriteString(delimiter)
			}
			if v := row[c]; v != nil {
				b.WriteString(escapeField(*v, delimiter))
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteRowSet serializes a raw row set, shaping values the same way the
// preview does.
func WriteRowSet(w io.Writer, delimiter string, rs *domain.RowSet) error {
	rows := make([]map[string]*string, 0, len(rs.Rows))
	for _, raw := range rs.Rows {
		row := make(map[string]*string, len(rs.Columns))
		for i, c := range rs.Columns {
			row[c] = domain.FormatCell(raw[i])
		}
		rows = append(rows, row)
	}
	return Write(w, delimiter, rs.Columns, rows)
}

// Filename names a delivered file `<code>_<timestamp>.<ext>`.
func Filename(code, extension string, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", code, at.Format("20060102150405"), extension)
}

// escapeField quotes a cell when it contains the delimiter, a quote, or a
// line break. Embedded quotes are doubled only for comma-delimited output;
// other delimiters keep the cell text verbatim inside the quotes.
func escapeField(v, delimiter string) string {
	if !strings.Contains(v, delimiter) && !strings.ContainsAny(v, "\"\n\r") {
		return v
	}
	if delimiter == "," {
		v = strings.ReplaceAll(v, `"`, `""`)
	}
	return `"` + v + `"`
}
