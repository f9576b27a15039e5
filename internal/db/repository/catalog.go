package repository

import (
	"context"
	"database/sql"

	"oder/internal/domain"
)

type CatalogRepo struct {
	read *sql.DB
}

func NewCatalogRepo(read *sql.DB) *CatalogRepo {
	return &CatalogRepo{read: read}
}

func (r *CatalogRepo) LinesOfBusiness(ctx context.Context) ([]domain.LineOfBusiness, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, name, prefix, source_sys_id FROM lines_of_business ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LineOfBusiness
	for rows.Next() {
		var l domain.LineOfBusiness
		if err := rows.Scan(&l.ID, &l.Name, &l.Prefix, &l.SourceSysID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) SubLinesOfBusiness(ctx context.Context, lobID int64) ([]domain.SubLineOfBusiness, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, lob_id, name, prefix FROM sub_lines_of_business WHERE lob_id = ? ORDER BY name`, lobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SubLineOfBusiness
	for rows.Next() {
		var s domain.SubLineOfBusiness
		if err := rows.Scan(&s.ID, &s.LobID, &s.Name, &s.Prefix); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) SelectFields(ctx context.Context, lobID int64) ([]domain.SelectField, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, lob_id, field_name, display_name FROM select_fields WHERE lob_id = ? ORDER BY display_name`, lobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SelectField
	for rows.Next() {
		var f domain.SelectField
		if err := rows.Scan(&f.ID, &f.LobID, &f.FieldName, &f.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) CriteriaFields(ctx context.Context, lobID int64) ([]domain.CriteriaField, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, lob_id, field_name, display_name, field_type FROM criteria_fields WHERE lob_id = ? ORDER BY display_name`, lobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CriteriaField
	for rows.Next() {
		var f domain.CriteriaField
		if err := rows.Scan(&f.ID, &f.LobID, &f.FieldName, &f.DisplayName, &f.FieldType); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) CriteriaValues(ctx context.Context, fieldID int64) ([]string, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT value FROM criteria_values WHERE field_id = ? ORDER BY value`, fieldID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) OperatorsForFieldType(ctx context.Context, fieldType string) ([]domain.Operator, error) {
	rows, err := r.read.QueryContext(ctx,
		`SELECT id, field_type, symbol FROM operators WHERE field_type = ? ORDER BY id`, fieldType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Operator
	for rows.Next() {
		var o domain.Operator
		if err := rows.Scan(&o.ID, &o.FieldType, &o.Symbol); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) SelectFieldByID(ctx context.Context, id int64) (*domain.SelectField, error) {
	var f domain.SelectField
	err := r.read.QueryRowContext(ctx,
		`SELECT id, lob_id, field_name, display_name FROM select_fields WHERE id = ?`, id).
		Scan(&f.ID, &f.LobID, &f.FieldName, &f.DisplayName)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &f, nil
}

func (r *CatalogRepo) CriteriaFieldByID(ctx context.Context, id int64) (*domain.CriteriaField, error) {
	var f domain.CriteriaField
	err := r.read.QueryRowContext(ctx,
		`SELECT id, lob_id, field_name, display_name, field_type FROM criteria_fields WHERE id = ?`, id).
		Scan(&f.ID, &f.LobID, &f.FieldName, &f.DisplayName, &f.FieldType)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &f, nil
}

func (r *CatalogRepo) OperatorByID(ctx context.Context, id int64) (*domain.Operator, error) {
	var o domain.Operator
	err := r.read.QueryRowContext(ctx,
		`SELECT id, field_type, symbol FROM operators WHERE id = ?`, id).
		Scan(&o.ID, &o.FieldType, &o.Symbol)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &o, nil
}

func (r *CatalogRepo) Prefixes(ctx context.Context, lobID, subLobID int64) (string, string, error) {
	var lobPrefix, subPrefix string
	err := r.read.QueryRowContext(ctx,
		`SELECT l.prefix, s.prefix
		 FROM lines_of_business l
		 JOIN sub_lines_of_business s ON s.lob_id = l.id
		 WHERE l.id = ? AND s.id = ?`,
		lobID, subLobID).Scan(&lobPrefix, &subPrefix)
	if err != nil {
		return "", "", mapDBError(err)
	}
	return lobPrefix, subPrefix, nil
}
