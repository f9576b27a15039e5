// Package sqlgen renders an extract definition into the SQL statement that
// runs against the membership warehouse. Compilation is pure and
// deterministic: the same ordered fields and criteria steps always produce
// byte-identical text.
package sqlgen

import (
	"strings"
	"time"

	"oder/internal/domain"
)

// Fixed statement scaffolding. Every compiled statement reads from the same
// membership join, is pinned to one source system, and carries the 50-row
// sample ceiling in its own text — pagination later slices within that
// sample, never the true result set.
const (
	baseClause   = `FROM MEMBERSHIP M INNER JOIN MEMBER_COVERAGE MC ON M.MEMBER_ID = MC.MEMBER_ID`
	tenantFilter = `M.SOURCE_SYS_ID='2001'`
	ceiling      = `rownum <=50`
)

const dateLayout = "2006-01-02"

// Compile renders the SELECT statement for the given ordered fields and
// criteria steps. Fields must already be ordered by display order and steps
// by chain order; the caller is responsible for finalizing the chain (last
// connector nil) before compiling.
//
// An empty field list yields an empty SELECT list and an empty step list
// yields a WHERE clause holding only the tenant filter and ceiling; neither
// is an error.
func Compile(fields []domain.SelectedField, steps []domain.CriteriaStep) (string, error) {
	var b strings.Builder

	b.WriteString("SELECT ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.ColumnName)
		b.WriteString(` "`)
		b.WriteString(f.DisplayName)
		b.WriteString(`"`)
	}

	b.WriteString(" ")
	b.WriteString(baseClause)
	b.WriteString(" WHERE ")

	for i, s := range steps {
		cond, err := renderCondition(s)
		if err != nil {
			return "", err
		}
		b.WriteString(cond)
		if i < len(steps)-1 {
			connector := domain.ConnectorAnd
			if s.Connector != nil {
				connector = *s.Connector
			}
			b.WriteString(" ")
			b.WriteString(connector)
			b.WriteString(" ")
		}
	}

	if len(steps) > 0 {
		b.WriteString(" AND ")
	}
	b.WriteString(tenantFilter)
	b.WriteString(" and ")
	b.WriteString(ceiling)

	return b.String(), nil
}

// renderCondition renders "<column> <operator> <value>" for one step.
func renderCondition(s domain.CriteriaStep) (string, error) {
	value, err := renderValue(s.FieldType, s.Value)
	if err != nil {
		return "", err
	}
	return s.ColumnName + " " + s.OperatorSymbol + " " + value, nil
}

// renderValue renders a criteria literal according to its field type.
//
// DATE values must be ISO dates and are wrapped in TO_DATE; VARCHAR values
// are single-quoted with embedded quotes doubled so a literal like O'Brien
// (or an attempted injection) stays an inert string; anything else is
// emitted verbatim and must therefore be numeric.
func renderValue(fieldType, value string) (string, error) {
	switch fieldType {
	case domain.FieldTypeDate:
		if _, err := time.Parse(dateLayout, value); err != nil {
			return "", domain.ErrValidation("date criteria value %q is not in YYYY-MM-DD format", value)
		}
		return "TO_DATE('" + value + "','YYYY-MM-DD')", nil
	case domain.FieldTypeVarchar:
		return "'" + escapeLiteral(value) + "'", nil
	default:
		if !isNumeric(value) {
			return "", domain.ErrValidation("criteria value %q is not numeric for field type %s", value, fieldType)
		}
		return value, nil
	}
}

// escapeLiteral doubles embedded single quotes for safe inlining.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// isNumeric reports whether s is a plain (optionally negative, optionally
// fractional) decimal number.
func isNumeric(s string) bool {
	if s == "" || s == "-" || s == "." {
		return false
	}
	dots := 0
	for i, c := range s {
		switch {
		case c == '-' && i == 0:
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		case c < '0' || c > '9':
			return false
		}
	}
	return true
}
