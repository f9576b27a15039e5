package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/alexbrainman/odbc"

	"oder/internal/domain"
)

// MemberWarehouse executes generated statements against the membership
// warehouse over ODBC. It implements domain.MemberStore.
type MemberWarehouse struct {
	db *sql.DB
}

// OpenMemberWarehouse connects to the warehouse using the given ODBC DSN and
// verifies the connection.
func OpenMemberWarehouse(dsn string) (*MemberWarehouse, error) {
	conn, err := sql.Open("odbc", dsn)
	if err != nil {
		return nil, fmt.Errorf("open member warehouse: %w", err)
	}

	conn.SetMaxOpenConns(8)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping member warehouse: %w", err)
	}

	return &MemberWarehouse{db: conn}, nil
}

// Close releases the warehouse connection pool.
func (w *MemberWarehouse) Close() error {
	return w.db.Close()
}

// PingContext verifies the warehouse connection, for health checks.
func (w *MemberWarehouse) PingContext(ctx context.Context) error {
	return w.db.PingContext(ctx)
}

// Query runs stmt and materializes the full result. Statements carry their
// own row ceiling, so result sets stay small enough to hold in memory.
func (w *MemberWarehouse) Query(ctx context.Context, stmt string) (*domain.RowSet, error) {
	rows, err := w.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, translateWarehouseError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, translateWarehouseError(err)
	}

	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, translateWarehouseError(err)
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, translateWarehouseError(err)
	}

	return &domain.RowSet{Columns: cols, Rows: out}, nil
}

// translateWarehouseError maps driver failures onto domain errors: deadline
// overruns become TimeoutError, connection-level failures UnavailableError,
// and everything else (the warehouse rejecting the statement) ExecutionError.
func translateWarehouseError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isDriverTimeout(err) {
		return domain.ErrTimeout("member warehouse query timed out")
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) || isConnectionFailure(err) {
		return domain.ErrUnavailable("member warehouse unavailable: %v", err)
	}
	return domain.ErrExecution("member warehouse query failed: %v", err)
}

// The ODBC driver only exposes SQLSTATE through the error text: class 08xxx
// is a connection exception, HYT00/HYT01 are driver-level timeouts.

func isConnectionFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 08") || strings.Contains(msg, "SQLSTATE: 08")
}

func isDriverTimeout(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "HYT00") || strings.Contains(msg, "HYT01")
}
