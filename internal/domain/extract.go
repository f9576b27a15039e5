package domain

import "time"

// Connector tokens joining one criteria step's condition to the next.
const (
	ConnectorAnd = "AND"
	ConnectorOr  = "OR"
)

// Catalog field types the compiler understands.
const (
	FieldTypeVarchar = "VARCHAR"
	FieldTypeDate    = "DATE"
	FieldTypeNumber  = "NUMBER"
)

// Extract is a user-defined eligibility-data extract: selected output
// columns plus a criteria chain, compiled into a SQL statement that runs
// against the membership warehouse.
type Extract struct {
	ID          int64
	Code        string // generated "<LOB prefix>-<sub-LOB prefix>-<YYMMDDHHMMSS>"
	Name        string
	Description string
	CreatedBy   int64
	IsPublic    bool
	LobID       int64
	SubLobID    *int64
	Statement   string // compiled SELECT; empty until first generation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ExtractSummary is the list-view projection of an extract.
type ExtractSummary struct {
	ID          int64
	Code        string
	Name        string
	Description string
	LobName     string
	SubLobName  string
}

// SelectedField is an ordered reference from an extract to a selectable
// catalog field. DisplayOrder is 1-based and contiguous; it defines SELECT
// clause column order. ColumnName/DisplayName are resolved from the catalog
// on read and are zero-valued on write.
type SelectedField struct {
	FieldID      int64
	DisplayOrder int
	ColumnName   string
	DisplayName  string
}

// CriteriaStep is one condition in the WHERE-clause chain: a criteria group
// and its single row collapsed into one unit. Connector is the outbound
// AND/OR joining this step's condition to the next; it is nil on the last
// step. Order is 1-based and contiguous across the extract.
//
// The persisted model keeps groups and rows as separate tables (a group may
// nominally hold several rows) but construction only ever creates them
// pairwise, so the in-memory type treats them as one.
type CriteriaStep struct {
	FieldID    int64
	OperatorID int64
	Value      string
	Order      int
	Connector  *string

	// Resolved from the catalog on read; zero-valued on write.
	ColumnName     string
	DisplayName    string
	FieldType      string
	OperatorSymbol string
}

// ExtractDefinition bundles everything needed to save or compile an extract.
type ExtractDefinition struct {
	Name        string
	Description string
	SubLobID    *int64
	Fields      []SelectedField
	Steps       []CriteriaStep
}
