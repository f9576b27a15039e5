package repository

import (
	"context"
	"database/sql"
	"time"

	"oder/internal/domain"
)

type ConfigRepo struct {
	write *sql.DB
	read  *sql.DB
}

func NewConfigRepo(write, read *sql.DB) *ConfigRepo {
	return &ConfigRepo{write: write, read: read}
}

func (r *ConfigRepo) Get(ctx context.Context, extractID int64) (*domain.ExtractConfig, error) {
	row := r.read.QueryRowContext(ctx,
		`SELECT extract_id, file_format_id, file_delimiter_id, schedule_parameter_id,
		        runtime, sftp_server_id, sftp_path, email_dl_list, last_run_at
		 FROM extract_configs WHERE extract_id = ?`,
		extractID)

	var c domain.ExtractConfig
	var format, delimiter, schedule, server sql.NullInt64
	var lastRun sql.NullTime
	if err := row.Scan(&c.ExtractID, &format, &delimiter, &schedule,
		&c.Runtime, &server, &c.SftpPath, &c.EmailDLList, &lastRun); err != nil {
		return nil, mapDBError(err)
	}
	c.FileFormatID = nullableID(format)
	c.FileDelimiterID = nullableID(delimiter)
	c.ScheduleParameterID = nullableID(schedule)
	c.SftpServerID = nullableID(server)
	if lastRun.Valid {
		t := lastRun.Time
		c.LastRunAt = &t
	}
	return &c, nil
}

func (r *ConfigRepo) Upsert(ctx context.Context, c *domain.ExtractConfig) error {
	_, err := r.write.ExecContext(ctx,
		`INSERT INTO extract_configs
		   (extract_id, file_format_id, file_delimiter_id, schedule_parameter_id, runtime, sftp_server_id, sftp_path, email_dl_list)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (extract_id) DO UPDATE SET
		   file_format_id = excluded.file_format_id,
		   file_delimiter_id = excluded.file_delimiter_id,
		   schedule_parameter_id = excluded.schedule_parameter_id,
		   runtime = excluded.runtime,
		   sftp_server_id = excluded.sftp_server_id,
		   sftp_path = excluded.sftp_path,
		   email_dl_list = excluded.email_dl_list`,
		c.ExtractID, c.FileFormatID, c.FileDelimiterID, c.ScheduleParameterID,
		c.Runtime, c.SftpServerID, c.SftpPath, c.EmailDLList)
	return mapDBError(err)
}

func (r *ConfigRepo) FileFormats(ctx context.Context) ([]domain.FileFormat, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, name, description, extension FROM file_formats ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FileFormat
	for rows.Next() {
		var f domain.FileFormat
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Extension); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *ConfigRepo) FileDelimiters(ctx context.Context) ([]domain.FileDelimiter, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, name, value FROM file_delimiters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FileDelimiter
	for rows.Next() {
		var d domain.FileDelimiter
		if err := rows.Scan(&d.ID, &d.Name, &d.Value); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *ConfigRepo) SftpServers(ctx context.Context) ([]domain.SftpServer, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, name, description FROM sftp_servers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SftpServer
	for rows.Next() {
		var s domain.SftpServer
		if err := rows.Scan(&s.ID, &s.Name, &s.Description); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ConfigRepo) ScheduleParameters(ctx context.Context) ([]domain.ScheduleParameter, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, frequency, cron_expr FROM schedule_parameters ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduleParameter
	for rows.Next() {
		var p domain.ScheduleParameter
		if err := rows.Scan(&p.ID, &p.Frequency, &p.CronExpr); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ScheduledExtracts resolves every schedulable extract: a schedule must be
// chosen and the extract must have a compiled statement to run.
func (r *ConfigRepo) ScheduledExtracts(ctx context.Context) ([]domain.ScheduledExtract, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT e.id, e.code, e.name, e.statement, sp.cron_expr, COALESCE(fd.value, ','), COALESCE(ff.extension, 'csv')
		 FROM extract_configs c
		 JOIN extracts e ON e.id = c.extract_id
		 JOIN schedule_parameters sp ON sp.id = c.schedule_parameter_id
		 LEFT JOIN file_delimiters fd ON fd.id = c.file_delimiter_id
		 LEFT JOIN file_formats ff ON ff.id = c.file_format_id
		 WHERE e.statement <> ''
		 ORDER BY e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduledExtract
	for rows.Next() {
		var s domain.ScheduledExtract
		if err := rows.Scan(&s.ExtractID, &s.ExtractCode, &s.ExtractName, &s.Statement, &s.CronExpr, &s.Delimiter, &s.Extension); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ConfigRepo) SetLastRun(ctx context.Context, extractID int64, at time.Time) error {
	res, err := r.write.ExecContext(ctx,
		`UPDATE extract_configs SET last_run_at = ? WHERE extract_id = ?`, at.UTC(), extractID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("no config for extract %d", extractID)
	}
	return nil
}
