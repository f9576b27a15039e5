package domain

import (
	"context"
	"time"
)

// ExtractRepository persists extracts and their definitions in the metadata
// store. Visibility-checked reads take the requesting user ID and must
// return NotFoundError both when the extract does not exist and when it is
// private and owned by someone else.
type ExtractRepository interface {
	// Create inserts the extract with its fields, criteria steps, and
	// compiled statement in one transaction, returning the assigned ID.
	Create(ctx context.Context, e *Extract, fields []SelectedField, steps []CriteriaStep) (int64, error)

	// GetVisible returns the extract iff it is public or owned by userID.
	GetVisible(ctx context.Context, id, userID int64) (*Extract, error)

	// List returns summaries visible to userID, optionally filtered by a
	// case-insensitive name search, newest first.
	List(ctx context.Context, userID int64, search string) ([]ExtractSummary, error)

	// Fields returns the extract's selected fields resolved against the
	// catalog, ordered by display order.
	Fields(ctx context.Context, id int64) ([]SelectedField, error)

	// Steps returns the extract's criteria steps resolved against the
	// catalog, ordered by group order then criteria order.
	Steps(ctx context.Context, id int64) ([]CriteriaStep, error)

	// ReplaceDefinition wholesale-replaces the extract's name, description,
	// sub-LOB, fields, criteria, and compiled statement in one transaction
	// (delete-then-insert). On error nothing is applied.
	ReplaceDefinition(ctx context.Context, id int64, def ExtractDefinition, statement string) error
}

// CatalogRepository reads the field/operator reference data.
type CatalogRepository interface {
	LinesOfBusiness(ctx context.Context) ([]LineOfBusiness, error)
	SubLinesOfBusiness(ctx context.Context, lobID int64) ([]SubLineOfBusiness, error)
	SelectFields(ctx context.Context, lobID int64) ([]SelectField, error)
	CriteriaFields(ctx context.Context, lobID int64) ([]CriteriaField, error)
	CriteriaValues(ctx context.Context, fieldID int64) ([]string, error)
	OperatorsForFieldType(ctx context.Context, fieldType string) ([]Operator, error)

	// Lookups used when compiling; a missing ID is a plain NotFoundError
	// which the service translates into a CompileError.
	SelectFieldByID(ctx context.Context, id int64) (*SelectField, error)
	CriteriaFieldByID(ctx context.Context, id int64) (*CriteriaField, error)
	OperatorByID(ctx context.Context, id int64) (*Operator, error)

	// Prefixes returns the LOB and sub-LOB prefixes for extract-code
	// generation.
	Prefixes(ctx context.Context, lobID, subLobID int64) (lobPrefix, subLobPrefix string, err error)
}

// ConfigRepository persists per-extract delivery configuration and reads the
// delivery reference data.
type ConfigRepository interface {
	Get(ctx context.Context, extractID int64) (*ExtractConfig, error)
	Upsert(ctx context.Context, c *ExtractConfig) error

	FileFormats(ctx context.Context) ([]FileFormat, error)
	FileDelimiters(ctx context.Context) ([]FileDelimiter, error)
	SftpServers(ctx context.Context) ([]SftpServer, error)
	ScheduleParameters(ctx context.Context) ([]ScheduleParameter, error)

	// ScheduledExtracts returns every extract with a schedule configured,
	// resolved for the scheduler.
	ScheduledExtracts(ctx context.Context) ([]ScheduledExtract, error)
	SetLastRun(ctx context.Context, extractID int64, at time.Time) error
}

// RowSet is the raw result of a member-store query: column names in result
// order plus row values as returned by the driver.
type RowSet struct {
	Columns []string
	Rows    [][]interface{}
}

// MemberStore executes generated statements against the membership
// warehouse. Implementations must translate driver failures into
// ExecutionError / UnavailableError / TimeoutError.
type MemberStore interface {
	Query(ctx context.Context, stmt string) (*RowSet, error)
}
