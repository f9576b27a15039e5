package repository

import (
	"context"
	"database/sql"

	"oder/internal/domain"
)

type ExtractRepo struct {
	write *sql.DB
	read  *sql.DB
}

func NewExtractRepo(write, read *sql.DB) *ExtractRepo {
	return &ExtractRepo{write: write, read: read}
}

func (r *ExtractRepo) Create(ctx context.Context, e *domain.Extract, fields []domain.SelectedField, steps []domain.CriteriaStep) (int64, error) {
	tx, err := r.write.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO extracts (code, name, description, created_by, is_public, lob_id, sub_lob_id, statement)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Code, e.Name, e.Description, e.CreatedBy, boolToInt(e.IsPublic), e.LobID, e.SubLobID, e.Statement)
	if err != nil {
		return 0, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := insertDefinition(ctx, tx, id, fields, steps); err != nil {
		return 0, mapDBError(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// GetVisible folds the visibility rule into the lookup itself so a private
// extract owned by someone else is indistinguishable from a missing one.
func (r *ExtractRepo) GetVisible(ctx context.Context, id, userID int64) (*domain.Extract, error) {
	row := r.read.QueryRowContext(ctx,
		`SELECT id, code, name, description, created_by, is_public, lob_id, sub_lob_id, statement, created_at, updated_at
		 FROM extracts
		 WHERE id = ? AND (is_public = 1 OR created_by = ?)`,
		id, userID)

	var e domain.Extract
	var isPublic int64
	var subLob sql.NullInt64
	if err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Description, &e.CreatedBy, &isPublic,
		&e.LobID, &subLob, &e.Statement, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, mapDBError(err)
	}
	e.IsPublic = isPublic == 1
	e.SubLobID = nullableID(subLob)
	return &e, nil
}

func (r *ExtractRepo) List(ctx context.Context, userID int64, search string) ([]domain.ExtractSummary, error) {
	query := `SELECT e.id, e.code, e.name, e.description, l.name, COALESCE(s.name, '')
		 FROM extracts e
		 JOIN lines_of_business l ON l.id = e.lob_id
		 LEFT JOIN sub_lines_of_business s ON s.id = e.sub_lob_id
		 WHERE (e.is_public = 1 OR e.created_by = ?)`
	args := []interface{}{userID}
	if search != "" {
		query += ` AND LOWER(e.name) LIKE '%' || LOWER(?) || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY e.created_at DESC, e.id DESC`

	rows, err := r.read.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ExtractSummary
	for rows.Next() {
		var s domain.ExtractSummary
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.LobName, &s.SubLobName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ExtractRepo) Fields(ctx context.Context, id int64) ([]domain.SelectedField, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT ef.field_id, ef.display_order, sf.field_name, sf.display_name
		 FROM extract_fields ef
		 JOIN select_fields sf ON sf.id = ef.field_id
		 WHERE ef.extract_id = ?
		 ORDER BY ef.display_order`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SelectedField
	for rows.Next() {
		var f domain.SelectedField
		if err := rows.Scan(&f.FieldID, &f.DisplayOrder, &f.ColumnName, &f.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *ExtractRepo) Steps(ctx context.Context, id int64) ([]domain.CriteriaStep, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT cr.field_id, cr.operator_id, cr.value, cg.group_order, cg.connector,
		        cf.field_name, cf.display_name, cf.field_type, o.symbol
		 FROM criteria_groups cg
		 JOIN criteria_rows cr ON cr.group_id = cg.id
		 JOIN criteria_fields cf ON cf.id = cr.field_id
		 JOIN operators o ON o.id = cr.operator_id
		 WHERE cg.extract_id = ?
		 ORDER BY cg.group_order, cr.criteria_order`,
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CriteriaStep
	for rows.Next() {
		var s domain.CriteriaStep
		var connector sql.NullString
		if err := rows.Scan(&s.FieldID, &s.OperatorID, &s.Value, &s.Order, &connector,
			&s.ColumnName, &s.DisplayName, &s.FieldType, &s.OperatorSymbol); err != nil {
			return nil, err
		}
		s.Connector = nullableString(connector)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ExtractRepo) ReplaceDefinition(ctx context.Context, id int64, def domain.ExtractDefinition, statement string) error {
	tx, err := r.write.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE extracts
		 SET name = ?, description = ?, sub_lob_id = ?, statement = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		def.Name, def.Description, def.SubLobID, statement, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("extract %d not found", id)
	}

	// Wholesale replace: drop the old definition and reinsert. Criteria rows
	// go with their groups via the cascade.
	if _, err := tx.ExecContext(ctx, `DELETE FROM extract_fields WHERE extract_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM criteria_groups WHERE extract_id = ?`, id); err != nil {
		return err
	}
	if err := insertDefinition(ctx, tx, id, def.Fields, def.Steps); err != nil {
		return mapDBError(err)
	}

	return tx.Commit()
}

// insertDefinition writes the field selection and criteria chain. Each step
// becomes a group holding a single row; the group carries the step's order
// and outbound connector.
func insertDefinition(ctx context.Context, tx *sql.Tx, extractID int64, fields []domain.SelectedField, steps []domain.CriteriaStep) error {
	for i, f := range fields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO extract_fields (extract_id, field_id, display_order) VALUES (?, ?, ?)`,
			extractID, f.FieldID, i+1); err != nil {
			return err
		}
	}

	for i, s := range steps {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO criteria_groups (extract_id, group_order, connector) VALUES (?, ?, ?)`,
			extractID, i+1, s.Connector)
		if err != nil {
			return err
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO criteria_rows (group_id, field_id, operator_id, value, criteria_order) VALUES (?, ?, ?, ?, 1)`,
			groupID, s.FieldID, s.OperatorID, s.Value); err != nil {
			return err
		}
	}
	return nil
}
