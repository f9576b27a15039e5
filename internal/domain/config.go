package domain

import "time"

// ExtractConfig is the scheduling/delivery configuration persisted per
// extract: output format and delimiter, cadence, runtime, SFTP destination,
// and the notification distribution list. All references are optional — a
// config may be saved incrementally from the wizard.
type ExtractConfig struct {
	ExtractID           int64
	FileFormatID        *int64
	FileDelimiterID     *int64
	ScheduleParameterID *int64
	Runtime             string
	SftpServerID        *int64
	SftpPath            string
	EmailDLList         string
	LastRunAt           *time.Time
}

// ScheduledExtract is the scheduler's view of a configured extract: the
// extract identity and statement plus the resolved cadence and output
// settings. The statement is carried here so scheduled runs need no
// requesting principal.
type ScheduledExtract struct {
	ExtractID   int64
	ExtractCode string
	ExtractName string
	Statement   string
	CronExpr    string
	Delimiter   string
	Extension   string
}
