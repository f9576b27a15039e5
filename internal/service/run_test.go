package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oder/internal/domain"
)

func visibleExtract(stmt string) *mockExtractRepo {
	return &mockExtractRepo{
		GetVisibleFn: func(_ context.Context, id, userID int64) (*domain.Extract, error) {
			return &domain.Extract{ID: id, Name: "Active members", CreatedBy: userID, Statement: stmt}, nil
		},
	}
}

func TestRunService_Run(t *testing.T) {
	dob := time.Date(1961, 4, 2, 0, 0, 0, 0, time.UTC)
	store := &mockMemberStore{
		QueryFn: func(_ context.Context, stmt string) (*domain.RowSet, error) {
			if strings.Contains(stmt, "COUNT(*)") {
				return &domain.RowSet{Columns: []string{"TOTAL_COUNT"}, Rows: [][]interface{}{{int64(37)}}}, nil
			}
			// Page query: wrapper shape with default paging.
			assert.Contains(t, stmt, "WITH base_query AS (")
			assert.Contains(t, stmt, "ROWNUM <= 10")
			assert.Contains(t, stmt, "rnum > 0")
			return &domain.RowSet{
				Columns: []string{"Member ID", "Date of Birth", "Termination Date", "RNUM"},
				Rows: [][]interface{}{
					{int64(1001), dob, nil, int64(1)},
					{[]byte("1002"), dob, dob, int64(2)},
				},
			}, nil
		},
	}
	svc := NewRunService(visibleExtract("SELECT 1"), store, 0)

	result, err := svc.Run(userCtx(7), 5, domain.PageRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.ExtractID)
	assert.Equal(t, "Active members", result.ExtractName)
	assert.Equal(t, []string{"Member ID", "Date of Birth", "Termination Date"}, result.Columns)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	assert.NotContains(t, first, "RNUM")
	require.NotNil(t, first["Member ID"])
	assert.Equal(t, "1001", *first["Member ID"])
	require.NotNil(t, first["Date of Birth"])
	assert.Equal(t, "1961-04-02", *first["Date of Birth"])
	assert.Nil(t, first["Termination Date"])

	assert.Equal(t, 37, result.TotalCount)
	assert.Equal(t, 1, result.CurrentPage)
	assert.Equal(t, 10, result.PageSize)
	assert.True(t, result.HasMore)
}

func TestRunService_Run_PagePastEnd(t *testing.T) {
	store := &mockMemberStore{
		QueryFn: func(_ context.Context, stmt string) (*domain.RowSet, error) {
			if strings.Contains(stmt, "COUNT(*)") {
				return &domain.RowSet{Columns: []string{"TOTAL_COUNT"}, Rows: [][]interface{}{{int64(3)}}}, nil
			}
			return &domain.RowSet{Columns: []string{"Member ID", "RNUM"}}, nil
		},
	}
	svc := NewRunService(visibleExtract("SELECT 1"), store, 0)

	result, err := svc.Run(userCtx(7), 5, domain.PageRequest{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, 3, result.TotalCount)
	assert.False(t, result.HasMore)
}

func TestRunService_Run_LastExactPage(t *testing.T) {
	store := &mockMemberStore{
		QueryFn: func(_ context.Context, stmt string) (*domain.RowSet, error) {
			if strings.Contains(stmt, "COUNT(*)") {
				return &domain.RowSet{Columns: []string{"TOTAL_COUNT"}, Rows: [][]interface{}{{[]byte("20")}}}, nil
			}
			return &domain.RowSet{Columns: []string{"Member ID", "RNUM"}}, nil
		},
	}
	svc := NewRunService(visibleExtract("SELECT 1"), store, 0)

	result, err := svc.Run(userCtx(7), 5, domain.PageRequest{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 20, result.TotalCount)
	assert.False(t, result.HasMore)
}

func TestRunService_Run_NoStatement(t *testing.T) {
	svc := NewRunService(visibleExtract(""), &mockMemberStore{}, 0)

	_, err := svc.Run(userCtx(7), 5, domain.PageRequest{})
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRunService_Run_InvalidPage(t *testing.T) {
	svc := NewRunService(visibleExtract("SELECT 1"), &mockMemberStore{}, 0)

	_, err := svc.Run(userCtx(7), 5, domain.PageRequest{Page: -1})
	var validation *domain.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRunService_Run_NotVisible(t *testing.T) {
	repo := &mockExtractRepo{
		GetVisibleFn: func(_ context.Context, id, userID int64) (*domain.Extract, error) {
			return nil, domain.ErrNotFound("extract %d not found", id)
		},
	}
	svc := NewRunService(repo, &mockMemberStore{}, 0)

	_, err := svc.Run(userCtx(8), 5, domain.PageRequest{})
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRunService_Run_StoreFailure(t *testing.T) {
	store := &mockMemberStore{
		QueryFn: func(_ context.Context, stmt string) (*domain.RowSet, error) {
			return nil, domain.ErrExecution("ORA-00904: invalid identifier")
		},
	}
	svc := NewRunService(visibleExtract("SELECT 1"), store, 0)

	_, err := svc.Run(userCtx(7), 5, domain.PageRequest{})
	var execution *domain.ExecutionError
	assert.ErrorAs(t, err, &execution)
}

func TestRunService_Run_Timeout(t *testing.T) {
	store := &mockMemberStore{
		QueryFn: func(ctx context.Context, stmt string) (*domain.RowSet, error) {
			<-ctx.Done()
			return nil, domain.ErrTimeout("member warehouse query timed out")
		},
	}
	svc := NewRunService(visibleExtract("SELECT 1"), store, time.Millisecond)

	_, err := svc.Run(userCtx(7), 5, domain.PageRequest{})
	var timeout *domain.TimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestRunService_Snapshot(t *testing.T) {
	store := &mockMemberStore{
		QueryFn: func(_ context.Context, stmt string) (*domain.RowSet, error) {
			// Snapshot runs the persisted statement as-is, no wrapper.
			assert.Equal(t, "SELECT 1", stmt)
			return &domain.RowSet{
				Columns: []string{"Member ID"},
				Rows:    [][]interface{}{{int64(1)}, {int64(2)}, {int64(3)}},
			}, nil
		},
	}
	svc := NewRunService(visibleExtract("SELECT 1"), store, 0)

	result, err := svc.Snapshot(userCtx(7), 5)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, 3, result.TotalCount)
	assert.False(t, result.HasMore)
}

func TestScanCount_BadValue(t *testing.T) {
	_, err := scanCount(&domain.RowSet{Columns: []string{"TOTAL_COUNT"}, Rows: [][]interface{}{{"abc"}}})
	var execution *domain.ExecutionError
	assert.ErrorAs(t, err, &execution)

	_, err = scanCount(&domain.RowSet{Columns: []string{"TOTAL_COUNT"}})
	assert.ErrorAs(t, err, &execution)
}
