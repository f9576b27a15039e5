package domain

// Read-only reference data. Lines of business scope which fields are
// selectable and filterable; operators are scoped to a field type, not to an
// individual field.

// LineOfBusiness is the top-level tenant/category dimension.
type LineOfBusiness struct {
	ID          int64
	Name        string
	Prefix      string
	SourceSysID string
}

// SubLineOfBusiness subdivides a line of business.
type SubLineOfBusiness struct {
	ID     int64
	LobID  int64
	Name   string
	Prefix string
}

// SelectField is a catalog column that may appear in an extract's SELECT list.
type SelectField struct {
	ID          int64
	LobID       int64
	FieldName   string // internal column name
	DisplayName string // SELECT alias
}

// CriteriaField is a catalog column that may appear in an extract's criteria.
type CriteriaField struct {
	ID          int64
	LobID       int64
	FieldName   string
	DisplayName string
	FieldType   string // FieldTypeVarchar, FieldTypeDate, FieldTypeNumber
}

// Operator is a comparison operator applicable to one field type.
type Operator struct {
	ID        int64
	FieldType string
	Symbol    string // "=", ">", "LIKE", ...
}

// FileFormat is a deliverable file format (CSV, TXT).
type FileFormat struct {
	ID          int64
	Name        string
	Description string
	Extension   string
}

// FileDelimiter is a selectable output delimiter.
type FileDelimiter struct {
	ID    int64
	Name  string
	Value string // the literal delimiter character(s)
}

// SftpServer is a configured delivery destination.
type SftpServer struct {
	ID          int64
	Name        string
	Description string
}

// ScheduleParameter is a delivery cadence. CronExpr drives the scheduler;
// Frequency is the human-readable label shown in the picker.
type ScheduleParameter struct {
	ID        int64
	Frequency string
	CronExpr  string
}
