// Package service implements the application services over the domain ports:
// extract lifecycle and compilation, paginated execution against the member
// warehouse, cached catalog reads, and delivery configuration.
package service

import (
	"context"
	"sync"
	"time"

	"oder/internal/domain"
	"oder/internal/sqlgen"
)

const codeTimestampLayout = "060102150405"

// ExtractDetail is the full read model of one extract: the record plus its
// resolved field selection and criteria chain.
type ExtractDetail struct {
	Extract domain.Extract
	Fields  []domain.SelectedField
	Steps   []domain.CriteriaStep
}

// CreateExtractRequest carries everything needed to create an extract.
type CreateExtractRequest struct {
	LobID      int64
	IsPublic   bool
	Definition domain.ExtractDefinition
}

// ExtractService owns the extract lifecycle. Mutations of one extract are
// serialized through a per-extract mutex; reads are not.
type ExtractService struct {
	extracts domain.ExtractRepository
	catalog  domain.CatalogRepository
	now      func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewExtractService(extracts domain.ExtractRepository, catalog domain.CatalogRepository) *ExtractService {
	return &ExtractService{
		extracts: extracts,
		catalog:  catalog,
		now:      time.Now,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Create validates the definition, compiles it, generates the extract code,
// and persists everything in one transaction.
func (s *ExtractService) Create(ctx context.Context, req CreateExtractRequest) (*ExtractDetail, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}

	def := req.Definition
	if def.Name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if req.LobID == 0 {
		return nil, domain.ErrValidation("line of business is required")
	}
	if def.SubLobID == nil {
		return nil, domain.ErrValidation("sub-line of business is required")
	}
	if err := domain.ValidateSteps(def.Steps); err != nil {
		return nil, err
	}
	def.Steps = domain.FinalizeSteps(def.Steps)

	stmt, err := s.compile(ctx, def)
	if err != nil {
		return nil, err
	}

	lobPrefix, subPrefix, err := s.catalog.Prefixes(ctx, req.LobID, *def.SubLobID)
	if err != nil {
		return nil, err
	}

	e := &domain.Extract{
		Code:        lobPrefix + "-" + subPrefix + "-" + s.now().Format(codeTimestampLayout),
		Name:        def.Name,
		Description: def.Description,
		CreatedBy:   principal.UserID,
		IsPublic:    req.IsPublic,
		LobID:       req.LobID,
		SubLobID:    def.SubLobID,
		Statement:   stmt,
	}

	id, err := s.extracts.Create(ctx, e, def.Fields, def.Steps)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id, principal.UserID)
}

// Get returns the extract with its resolved definition, iff visible to the
// caller.
func (s *ExtractService) Get(ctx context.Context, id int64) (*ExtractDetail, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}
	return s.detail(ctx, id, principal.UserID)
}

// List returns summaries visible to the caller, optionally filtered by name.
func (s *ExtractService) List(ctx context.Context, search string) ([]domain.ExtractSummary, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}
	return s.extracts.List(ctx, principal.UserID, search)
}

// Update replaces the extract's definition and recompiles its statement.
// The replacement is all-or-nothing: on any failure the prior definition and
// statement remain authoritative.
func (s *ExtractService) Update(ctx context.Context, id int64, def domain.ExtractDefinition) (*ExtractDetail, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}

	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.extracts.GetVisible(ctx, id, principal.UserID); err != nil {
		return nil, err
	}

	if def.Name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if err := domain.ValidateSteps(def.Steps); err != nil {
		return nil, err
	}
	def.Steps = domain.FinalizeSteps(def.Steps)

	stmt, err := s.compile(ctx, def)
	if err != nil {
		return nil, err
	}

	if err := s.extracts.ReplaceDefinition(ctx, id, def, stmt); err != nil {
		return nil, err
	}
	return s.detail(ctx, id, principal.UserID)
}

func (s *ExtractService) detail(ctx context.Context, id, userID int64) (*ExtractDetail, error) {
	e, err := s.extracts.GetVisible(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	fields, err := s.extracts.Fields(ctx, id)
	if err != nil {
		return nil, err
	}
	steps, err := s.extracts.Steps(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ExtractDetail{Extract: *e, Fields: fields, Steps: steps}, nil
}

// compile resolves every catalog reference in the definition and renders the
// statement. A dangling field or operator ID, or an operator whose field type
// does not match its field's, is a CompileError.
func (s *ExtractService) compile(ctx context.Context, def domain.ExtractDefinition) (string, error) {
	fields := make([]domain.SelectedField, len(def.Fields))
	for i, f := range def.Fields {
		sf, err := s.catalog.SelectFieldByID(ctx, f.FieldID)
		if err != nil {
			if _, ok := err.(*domain.NotFoundError); ok {
				return "", domain.ErrCompile("select field %d is not in the catalog", f.FieldID)
			}
			return "", err
		}
		fields[i] = domain.SelectedField{
			FieldID:      f.FieldID,
			DisplayOrder: i + 1,
			ColumnName:   sf.FieldName,
			DisplayName:  sf.DisplayName,
		}
	}

	steps := make([]domain.CriteriaStep, len(def.Steps))
	for i, st := range def.Steps {
		cf, err := s.catalog.CriteriaFieldByID(ctx, st.FieldID)
		if err != nil {
			if _, ok := err.(*domain.NotFoundError); ok {
				return "", domain.ErrCompile("criteria field %d is not in the catalog", st.FieldID)
			}
			return "", err
		}
		op, err := s.catalog.OperatorByID(ctx, st.OperatorID)
		if err != nil {
			if _, ok := err.(*domain.NotFoundError); ok {
				return "", domain.ErrCompile("operator %d is not in the catalog", st.OperatorID)
			}
			return "", err
		}
		if op.FieldType != cf.FieldType {
			return "", domain.ErrCompile("operator %q does not apply to %s field %q", op.Symbol, cf.FieldType, cf.DisplayName)
		}
		steps[i] = st
		steps[i].ColumnName = cf.FieldName
		steps[i].DisplayName = cf.DisplayName
		steps[i].FieldType = cf.FieldType
		steps[i].OperatorSymbol = op.Symbol
	}

	return sqlgen.Compile(fields, steps)
}

func (s *ExtractService) lockFor(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[id] = l
	return l
}
