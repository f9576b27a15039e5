package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oder/internal/db"
	"oder/internal/db/repository"
	"oder/internal/domain"
	"oder/internal/middleware"
	"oder/internal/service"
)

type fakeMemberStore struct {
	QueryFn func(ctx context.Context, stmt string) (*domain.RowSet, error)
}

func (f *fakeMemberStore) Query(ctx context.Context, stmt string) (*domain.RowSet, error) {
	return f.QueryFn(ctx, stmt)
}

// newTestServer wires the full stack over a migrated throwaway metastore,
// with requests running as user 1.
func newTestServer(t *testing.T, store domain.MemberStore) *httptest.Server {
	t.Helper()
	writeDB, readDB := db.OpenTestSQLite(t)

	extractRepo := repository.NewExtractRepo(writeDB, readDB)
	catalogRepo := repository.NewCatalogRepo(readDB)
	configRepo := repository.NewConfigRepo(writeDB, readDB)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(
		service.NewExtractService(extractRepo, catalogRepo),
		service.NewRunService(extractRepo, store, time.Second),
		service.NewCatalogService(catalogRepo, time.Minute),
		service.NewConfigService(configRepo, extractRepo),
		readDB, nil, logger,
	)

	r := chi.NewRouter()
	r.Use(middleware.Principal(1))
	h.Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body, out interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// validCreateBody selects Member ID for Medicare Advantage members with an
// active coverage row.
func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"name":     "Active MA Members",
		"lobId":    1,
		"subLobId": 1,
		"isPublic": true,
		"fields":   []map[string]interface{}{{"fieldId": 1}},
		"criteria": []map[string]interface{}{
			{"fieldId": 1, "operatorId": 1, "value": "ACTIVE"},
		},
	}
}

const wantStatement = `SELECT M.MEMBER_ID "Member ID" FROM MEMBERSHIP M INNER JOIN MEMBER_COVERAGE MC ON M.MEMBER_ID = MC.MEMBER_ID WHERE MC.COVERAGE_STATUS = 'ACTIVE' AND M.SOURCE_SYS_ID='2001' and rownum <=50`

func createExtract(t *testing.T, srv *httptest.Server) extractResponse {
	t.Helper()
	var created extractResponse
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extracts", validCreateBody(), &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return created
}

func TestHealth_BuilderOnlyDeployment(t *testing.T) {
	srv := newTestServer(t, nil)

	var health healthResponse
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/health", nil, &health)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.MetaStore)
	assert.Equal(t, "disabled", health.MemberStore)
}

func TestCreateExtract(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createExtract(t, srv)

	assert.True(t, strings.HasPrefix(created.Code, "MCR-MA-"), "code %q", created.Code)
	assert.Equal(t, wantStatement, created.Statement)
	assert.Equal(t, int64(1), created.CreatedBy)
	require.Len(t, created.Fields, 1)
	assert.Equal(t, "Member ID", created.Fields[0].DisplayName)
	require.Len(t, created.Criteria, 1)
	assert.Equal(t, "=", created.Criteria[0].OperatorSymbol)

	t.Run("get_round_trips", func(t *testing.T) {
		var got extractResponse
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/extracts/"+itoa(created.ID), nil, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, created.Code, got.Code)
		assert.Equal(t, wantStatement, got.Statement)
	})

	t.Run("appears_in_listing", func(t *testing.T) {
		var list []extractSummaryDTO
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/extracts", nil, &list)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, list, 1)
		assert.Equal(t, "Medicare", list[0].LobName)
		assert.Equal(t, "Medicare Advantage", list[0].SubLobName)
	})
}

func TestCreateExtract_Rejections(t *testing.T) {
	srv := newTestServer(t, nil)

	cases := []struct {
		name       string
		mutate     func(body map[string]interface{})
		wantStatus int
	}{
		{
			"missing_name",
			func(b map[string]interface{}) { b["name"] = "" },
			http.StatusBadRequest,
		},
		{
			"unknown_select_field",
			func(b map[string]interface{}) {
				b["fields"] = []map[string]interface{}{{"fieldId": 999}}
			},
			http.StatusUnprocessableEntity,
		},
		{
			"operator_field_type_mismatch",
			func(b map[string]interface{}) {
				// operator 4 is NUMBER =, field 1 is VARCHAR
				b["criteria"] = []map[string]interface{}{
					{"fieldId": 1, "operatorId": 4, "value": "ACTIVE"},
				}
			},
			http.StatusUnprocessableEntity,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validCreateBody()
			tc.mutate(body)
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/extracts", body, nil)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestGetExtract_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/extracts/12345", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunExtract(t *testing.T) {
	store := &fakeMemberStore{
		QueryFn: func(ctx context.Context, stmt string) (*domain.RowSet, error) {
			if strings.Contains(stmt, "COUNT(*)") {
				return &domain.RowSet{Columns: []string{"TOTAL_COUNT"}, Rows: [][]interface{}{{int64(5)}}}, nil
			}
			return &domain.RowSet{
				Columns: []string{"Member ID", "RNUM"},
				Rows: [][]interface{}{
					{int64(1001), int64(1)},
					{int64(1002), int64(2)},
				},
			}, nil
		},
	}
	srv := newTestServer(t, store)
	created := createExtract(t, srv)

	var result runResponse
	resp := doJSON(t, http.MethodGet,
		srv.URL+"/api/v1/extracts/"+itoa(created.ID)+"/run?page=1&pageSize=2", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []string{"Member ID"}, result.Columns, "pagination column is stripped")
	require.Len(t, result.Rows, 2)
	require.NotNil(t, result.Rows[0]["Member ID"])
	assert.Equal(t, "1001", *result.Rows[0]["Member ID"])
	assert.Equal(t, 5, result.TotalCount)
	assert.True(t, result.HasMore)
}

func TestRunExtract_WarehouseDown(t *testing.T) {
	store := &fakeMemberStore{
		QueryFn: func(ctx context.Context, stmt string) (*domain.RowSet, error) {
			return nil, domain.ErrUnavailable("member warehouse not configured")
		},
	}
	srv := newTestServer(t, store)
	created := createExtract(t, srv)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/extracts/"+itoa(created.ID)+"/run", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestExportExtract(t *testing.T) {
	store := &fakeMemberStore{
		QueryFn: func(ctx context.Context, stmt string) (*domain.RowSet, error) {
			return &domain.RowSet{
				Columns: []string{"Member ID"},
				Rows:    [][]interface{}{{int64(1001)}, {nil}},
			}, nil
		},
	}
	srv := newTestServer(t, store)
	created := createExtract(t, srv)

	resp, err := http.Get(srv.URL + "/api/v1/extracts/" + itoa(created.ID) + "/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	disposition := resp.Header.Get("Content-Disposition")
	assert.Contains(t, disposition, created.Code)
	assert.Contains(t, disposition, ".csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Member ID\n1001\n\n", string(body))
}

func TestConfigRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)
	created := createExtract(t, srv)
	configURL := srv.URL + "/api/v1/extracts/" + itoa(created.ID) + "/config"

	var empty extractConfigDTO
	resp := doJSON(t, http.MethodGet, configURL, nil, &empty)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, empty.FileFormatID)

	put := extractConfigDTO{
		FileFormatID:        ptr(int64(2)),
		FileDelimiterID:     ptr(int64(2)),
		ScheduleParameterID: ptr(int64(1)),
		SftpServerID:        ptr(int64(1)),
		SftpPath:            "/outbound/medicare",
		EmailDLList:         "eligibility-team@example.com",
	}
	var saved extractConfigDTO
	resp = doJSON(t, http.MethodPut, configURL, put, &saved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, saved.FileDelimiterID)
	assert.Equal(t, int64(2), *saved.FileDelimiterID)
	assert.Equal(t, "/outbound/medicare", saved.SftpPath)

	var got extractConfigDTO
	resp = doJSON(t, http.MethodGet, configURL, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, saved, got)
}

func TestConfig_UnknownExtract(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/extracts/999/config",
		extractConfigDTO{SftpPath: "/outbound"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("lines_of_business", func(t *testing.T) {
		var lobs []lineOfBusinessDTO
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/lines-of-business", nil, &lobs)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, lobs, 2)
		assert.Equal(t, "COM", lobs[0].Prefix)
		assert.Equal(t, "MCR", lobs[1].Prefix)
	})

	t.Run("sub_lines", func(t *testing.T) {
		var subs []subLineOfBusinessDTO
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/lines-of-business/1/sub-lines", nil, &subs)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, subs, 2)
	})

	t.Run("operators_follow_field_type", func(t *testing.T) {
		var ops []operatorDTO
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/criteria-fields/1/operators", nil, &ops)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, ops, 3)
		for _, op := range ops {
			assert.Equal(t, "VARCHAR", op.FieldType)
		}
	})

	t.Run("criteria_values", func(t *testing.T) {
		var values []string
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/criteria-fields/1/values", nil, &values)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"ACTIVE", "PENDING", "TERMED"}, values)
	})

	t.Run("free_text_field_has_no_values", func(t *testing.T) {
		var values []string
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/catalog/criteria-fields/2/values", nil, &values)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, values)
	})
}

func TestReferenceEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	var formats []fileFormatDTO
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/reference/file-formats", nil, &formats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, formats, 2)
	assert.Equal(t, "csv", formats[0].Extension)

	var delims []fileDelimiterDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/reference/file-delimiters", nil, &delims)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, delims, 3)

	var servers []sftpServerDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/reference/sftp-servers", nil, &servers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, servers, 2)

	var params []scheduleParameterDTO
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/reference/schedule-parameters", nil, &params)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, params, 3)
	assert.Equal(t, "0 2 * * *", params[0].CronExpr)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func ptr[T any](v T) *T {
	return &v
}
