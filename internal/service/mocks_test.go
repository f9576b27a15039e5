package service

import (
	"context"
	"time"

	"oder/internal/domain"
)

type mockExtractRepo struct {
	CreateFn            func(ctx context.Context, e *domain.Extract, fields []domain.SelectedField, steps []domain.CriteriaStep) (int64, error)
	GetVisibleFn        func(ctx context.Context, id, userID int64) (*domain.Extract, error)
	ListFn              func(ctx context.Context, userID int64, search string) ([]domain.ExtractSummary, error)
	FieldsFn            func(ctx context.Context, id int64) ([]domain.SelectedField, error)
	StepsFn             func(ctx context.Context, id int64) ([]domain.CriteriaStep, error)
	ReplaceDefinitionFn func(ctx context.Context, id int64, def domain.ExtractDefinition, statement string) error
}

func (m *mockExtractRepo) Create(ctx context.Context, e *domain.Extract, fields []domain.SelectedField, steps []domain.CriteriaStep) (int64, error) {
	return m.CreateFn(ctx, e, fields, steps)
}

func (m *mockExtractRepo) GetVisible(ctx context.Context, id, userID int64) (*domain.Extract, error) {
	return m.GetVisibleFn(ctx, id, userID)
}

func (m *mockExtractRepo) List(ctx context.Context, userID int64, search string) ([]domain.ExtractSummary, error) {
	return m.ListFn(ctx, userID, search)
}

func (m *mockExtractRepo) Fields(ctx context.Context, id int64) ([]domain.SelectedField, error) {
	if m.FieldsFn == nil {
		return nil, nil
	}
	return m.FieldsFn(ctx, id)
}

func (m *mockExtractRepo) Steps(ctx context.Context, id int64) ([]domain.CriteriaStep, error) {
	if m.StepsFn == nil {
		return nil, nil
	}
	return m.StepsFn(ctx, id)
}

func (m *mockExtractRepo) ReplaceDefinition(ctx context.Context, id int64, def domain.ExtractDefinition, statement string) error {
	return m.ReplaceDefinitionFn(ctx, id, def, statement)
}

type mockCatalogRepo struct {
	LinesOfBusinessFn       func(ctx context.Context) ([]domain.LineOfBusiness, error)
	SubLinesOfBusinessFn    func(ctx context.Context, lobID int64) ([]domain.SubLineOfBusiness, error)
	SelectFieldsFn          func(ctx context.Context, lobID int64) ([]domain.SelectField, error)
	CriteriaFieldsFn        func(ctx context.Context, lobID int64) ([]domain.CriteriaField, error)
	CriteriaValuesFn        func(ctx context.Context, fieldID int64) ([]string, error)
	OperatorsForFieldTypeFn func(ctx context.Context, fieldType string) ([]domain.Operator, error)
	SelectFieldByIDFn       func(ctx context.Context, id int64) (*domain.SelectField, error)
	CriteriaFieldByIDFn     func(ctx context.Context, id int64) (*domain.CriteriaField, error)
	OperatorByIDFn          func(ctx context.Context, id int64) (*domain.Operator, error)
	PrefixesFn              func(ctx context.Context, lobID, subLobID int64) (string, string, error)
}

func (m *mockCatalogRepo) LinesOfBusiness(ctx context.Context) ([]domain.LineOfBusiness, error) {
	return m.LinesOfBusinessFn(ctx)
}

func (m *mockCatalogRepo) SubLinesOfBusiness(ctx context.Context, lobID int64) ([]domain.SubLineOfBusiness, error) {
	return m.SubLinesOfBusinessFn(ctx, lobID)
}

func (m *mockCatalogRepo) SelectFields(ctx context.Context, lobID int64) ([]domain.SelectField, error) {
	return m.SelectFieldsFn(ctx, lobID)
}

func (m *mockCatalogRepo) CriteriaFields(ctx context.Context, lobID int64) ([]domain.CriteriaField, error) {
	return m.CriteriaFieldsFn(ctx, lobID)
}

func (m *mockCatalogRepo) CriteriaValues(ctx context.Context, fieldID int64) ([]string, error) {
	return m.CriteriaValuesFn(ctx, fieldID)
}

func (m *mockCatalogRepo) OperatorsForFieldType(ctx context.Context, fieldType string) ([]domain.Operator, error) {
	return m.OperatorsForFieldTypeFn(ctx, fieldType)
}

func (m *mockCatalogRepo) SelectFieldByID(ctx context.Context, id int64) (*domain.SelectField, error) {
	return m.SelectFieldByIDFn(ctx, id)
}

func (m *mockCatalogRepo) CriteriaFieldByID(ctx context.Context, id int64) (*domain.CriteriaField, error) {
	return m.CriteriaFieldByIDFn(ctx, id)
}

func (m *mockCatalogRepo) OperatorByID(ctx context.Context, id int64) (*domain.Operator, error) {
	return m.OperatorByIDFn(ctx, id)
}

func (m *mockCatalogRepo) Prefixes(ctx context.Context, lobID, subLobID int64) (string, string, error) {
	return m.PrefixesFn(ctx, lobID, subLobID)
}

type mockConfigRepo struct {
	GetFn                func(ctx context.Context, extractID int64) (*domain.ExtractConfig, error)
	UpsertFn             func(ctx context.Context, c *domain.ExtractConfig) error
	FileFormatsFn        func(ctx context.Context) ([]domain.FileFormat, error)
	FileDelimitersFn     func(ctx context.Context) ([]domain.FileDelimiter, error)
	SftpServersFn        func(ctx context.Context) ([]domain.SftpServer, error)
	ScheduleParametersFn func(ctx context.Context) ([]domain.ScheduleParameter, error)
	ScheduledExtractsFn  func(ctx context.Context) ([]domain.ScheduledExtract, error)
	SetLastRunFn         func(ctx context.Context, extractID int64, at time.Time) error
}

func (m *mockConfigRepo) Get(ctx context.Context, extractID int64) (*domain.ExtractConfig, error) {
	return m.GetFn(ctx, extractID)
}

func (m *mockConfigRepo) Upsert(ctx context.Context, c *domain.ExtractConfig) error {
	return m.UpsertFn(ctx, c)
}

func (m *mockConfigRepo) FileFormats(ctx context.Context) ([]domain.FileFormat, error) {
	return m.FileFormatsFn(ctx)
}

func (m *mockConfigRepo) FileDelimiters(ctx context.Context) ([]domain.FileDelimiter, error) {
	return m.FileDelimitersFn(ctx)
}

func (m *mockConfigRepo) SftpServers(ctx context.Context) ([]domain.SftpServer, error) {
	return m.SftpServersFn(ctx)
}

func (m *mockConfigRepo) ScheduleParameters(ctx context.Context) ([]domain.ScheduleParameter, error) {
	return m.ScheduleParametersFn(ctx)
}

func (m *mockConfigRepo) ScheduledExtracts(ctx context.Context) ([]domain.ScheduledExtract, error) {
	return m.ScheduledExtractsFn(ctx)
}

func (m *mockConfigRepo) SetLastRun(ctx context.Context, extractID int64, at time.Time) error {
	return m.SetLastRunFn(ctx, extractID, at)
}

type mockMemberStore struct {
	QueryFn func(ctx context.Context, stmt string) (*domain.RowSet, error)
}

func (m *mockMemberStore) Query(ctx context.Context, stmt string) (*domain.RowSet, error) {
	return m.QueryFn(ctx, stmt)
}
