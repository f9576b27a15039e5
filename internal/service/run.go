package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"oder/internal/domain"
	"oder/internal/sqlgen"
)

// RunService executes persisted statements against the member warehouse:
// paginated test runs for the builder preview and full-sample snapshots for
// export and scheduled delivery.
type RunService struct {
	extracts domain.ExtractRepository
	store    domain.MemberStore
	timeout  time.Duration
}

func NewRunService(extracts domain.ExtractRepository, store domain.MemberStore, timeout time.Duration) *RunService {
	return &RunService{extracts: extracts, store: store, timeout: timeout}
}

// Run executes one page of the extract's statement together with its sibling
// count query. The two queries run concurrently; either failure fails the
// run. A page past the end of the sample returns empty rows, not an error.
func (s *RunService) Run(ctx context.Context, id int64, page domain.PageRequest) (*domain.RunResult, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}
	page, err := page.Normalize()
	if err != nil {
		return nil, err
	}

	e, err := s.extracts.GetVisible(ctx, id, principal.UserID)
	if err != nil {
		return nil, err
	}
	if e.Statement == "" {
		return nil, domain.ErrValidation("extract %d has no generated statement", id)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var rs *domain.RowSet
	var total int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rs, err = s.store.Query(gctx, sqlgen.WrapPage(e.Statement, page.Offset(), page.PageSize))
		return err
	})
	g.Go(func() error {
		countSet, err := s.store.Query(gctx, sqlgen.WrapCount(e.Statement))
		if err != nil {
			return err
		}
		total, err = scanCount(countSet)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	columns, rows := shapeRows(rs)
	return &domain.RunResult{
		ExtractID:   e.ID,
		ExtractName: e.Name,
		Columns:     columns,
		Rows:        rows,
		TotalCount:  total,
		CurrentPage: page.Page,
		PageSize:    page.PageSize,
		HasMore:     page.Page*page.PageSize < total,
	}, nil
}

// Snapshot runs the extract's statement unpaginated, returning the whole
// sample (the statement's own ceiling bounds it).
func (s *RunService) Snapshot(ctx context.Context, id int64) (*domain.RunResult, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}

	e, err := s.extracts.GetVisible(ctx, id, principal.UserID)
	if err != nil {
		return nil, err
	}
	if e.Statement == "" {
		return nil, domain.ErrValidation("extract %d has no generated statement", id)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rs, err := s.store.Query(ctx, e.Statement)
	if err != nil {
		return nil, err
	}

	columns, rows := shapeRows(rs)
	return &domain.RunResult{
		ExtractID:   e.ID,
		ExtractName: e.Name,
		Columns:     columns,
		Rows:        rows,
		TotalCount:  len(rows),
		CurrentPage: 1,
		PageSize:    len(rows),
	}, nil
}

// shapeRows turns a raw row set into column-keyed records, dropping the
// pagination wrapper's RNUM column.
func shapeRows(rs *domain.RowSet) ([]string, []map[string]*string) {
	keep := make([]int, 0, len(rs.Columns))
	columns := make([]string, 0, len(rs.Columns))
	for i, c := range rs.Columns {
		if strings.EqualFold(c, sqlgen.RowNumColumn) {
			continue
		}
		keep = append(keep, i)
		columns = append(columns, c)
	}

	rows := make([]map[string]*string, 0, len(rs.Rows))
	for _, raw := range rs.Rows {
		row := make(map[string]*string, len(keep))
		for j, i := range keep {
			row[columns[j]] = domain.FormatCell(raw[i])
		}
		rows = append(rows, row)
	}
	return columns, rows
}

// scanCount pulls the single COUNT(*) value out of the count query's result.
func scanCount(rs *domain.RowSet) (int, error) {
	if len(rs.Rows) == 0 || len(rs.Rows[0]) == 0 {
		return 0, domain.ErrExecution("count query returned no rows")
	}
	switch v := rs.Rows[0][0].(type) {
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return 0, domain.ErrExecution("count query returned non-numeric value %q", v)
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, domain.ErrExecution("count query returned non-numeric value %q", v)
		}
		return n, nil
	default:
		return 0, domain.ErrExecution("count query returned unexpected type %T", v)
	}
}
