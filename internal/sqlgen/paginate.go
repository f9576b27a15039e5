package sqlgen

import (
	"fmt"
	"strings"
)

// RowNumColumn is the synthetic row-number column added by the pagination
// wrapper; it is stripped from shaped results.
const RowNumColumn = "RNUM"

// WrapPage wraps a compiled statement in the classic double-ROWNUM
// pagination query: the base result ordered by its first column, row numbers
// assigned, then sliced to (offset, offset+pageSize]. The slice is a
// contiguous 1-indexed window of the ordered sample.
func WrapPage(stmt string, offset, pageSize int) string {
	var b strings.Builder
	b.WriteString("WITH base_query AS (\n")
	b.WriteString(stmt)
	b.WriteString("\n)\n")
	b.WriteString("SELECT *\n")
	b.WriteString("FROM (\n")
	b.WriteString("  SELECT a.*, ROWNUM rnum\n")
	b.WriteString("  FROM (\n")
	b.WriteString("    SELECT * FROM base_query\n")
	b.WriteString("    ORDER BY 1\n")
	fmt.Fprintf(&b, "  ) a WHERE ROWNUM <= %d\n", offset+pageSize)
	fmt.Fprintf(&b, ") WHERE rnum > %d", offset)
	return b.String()
}

// WrapCount wraps a compiled statement in its sibling COUNT(*) query.
func WrapCount(stmt string) string {
	var b strings.Builder
	b.WriteString("WITH base_query AS (\n")
	b.WriteString(stmt)
	b.WriteString("\n)\n")
	b.WriteString("SELECT COUNT(*) AS TOTAL_COUNT\nFROM base_query")
	return b.String()
}
