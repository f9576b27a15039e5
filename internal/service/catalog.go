package service

import (
	"context"
	"fmt"
	"time"

	"oder/internal/cache"
	"oder/internal/domain"
)

// CatalogService serves the builder's reference reads through a TTL cache.
// The catalog changes on the order of releases, not requests, so a long TTL
// is safe; extract-specific data is never cached here.
type CatalogService struct {
	repo domain.CatalogRepository

	lobs      *cache.TTL[[]domain.LineOfBusiness]
	subs      *cache.TTL[[]domain.SubLineOfBusiness]
	selects   *cache.TTL[[]domain.SelectField]
	criteria  *cache.TTL[[]domain.CriteriaField]
	values    *cache.TTL[[]string]
	operators *cache.TTL[[]domain.Operator]
}

func NewCatalogService(repo domain.CatalogRepository, ttl time.Duration) *CatalogService {
	return &CatalogService{
		repo:      repo,
		lobs:      cache.NewTTL[[]domain.LineOfBusiness](ttl),
		subs:      cache.NewTTL[[]domain.SubLineOfBusiness](ttl),
		selects:   cache.NewTTL[[]domain.SelectField](ttl),
		criteria:  cache.NewTTL[[]domain.CriteriaField](ttl),
		values:    cache.NewTTL[[]string](ttl),
		operators: cache.NewTTL[[]domain.Operator](ttl),
	}
}

func (s *CatalogService) LinesOfBusiness(ctx context.Context) ([]domain.LineOfBusiness, error) {
	if v, ok := s.lobs.Get("all"); ok {
		return v, nil
	}
	v, err := s.repo.LinesOfBusiness(ctx)
	if err != nil {
		return nil, err
	}
	s.lobs.Set("all", v)
	return v, nil
}

func (s *CatalogService) SubLinesOfBusiness(ctx context.Context, lobID int64) ([]domain.SubLineOfBusiness, error) {
	key := fmt.Sprintf("lob:%d", lobID)
	if v, ok := s.subs.Get(key); ok {
		return v, nil
	}
	v, err := s.repo.SubLinesOfBusiness(ctx, lobID)
	if err != nil {
		return nil, err
	}
	s.subs.Set(key, v)
	return v, nil
}

func (s *CatalogService) SelectFields(ctx context.Context, lobID int64) ([]domain.SelectField, error) {
	key := fmt.Sprintf("lob:%d", lobID)
	if v, ok := s.selects.Get(key); ok {
		return v, nil
	}
	v, err := s.repo.SelectFields(ctx, lobID)
	if err != nil {
		return nil, err
	}
	s.selects.Set(key, v)
	return v, nil
}

func (s *CatalogService) CriteriaFields(ctx context.Context, lobID int64) ([]domain.CriteriaField, error) {
	key := fmt.Sprintf("lob:%d", lobID)
	if v, ok := s.criteria.Get(key); ok {
		return v, nil
	}
	v, err := s.repo.CriteriaFields(ctx, lobID)
	if err != nil {
		return nil, err
	}
	s.criteria.Set(key, v)
	return v, nil
}

func (s *CatalogService) CriteriaValues(ctx context.Context, fieldID int64) ([]string, error) {
	key := fmt.Sprintf("field:%d", fieldID)
	if v, ok := s.values.Get(key); ok {
		return v, nil
	}
	v, err := s.repo.CriteriaValues(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	s.values.Set(key, v)
	return v, nil
}

// OperatorsForField returns the operators applicable to a criteria field,
// resolved through the field's type.
func (s *CatalogService) OperatorsForField(ctx context.Context, fieldID int64) ([]domain.Operator, error) {
	field, err := s.repo.CriteriaFieldByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	key := "type:" + field.FieldType
	if v, ok := s.operators.Get(key); ok {
		return v, nil
	}
	v, err := s.repo.OperatorsForFieldType(ctx, field.FieldType)
	if err != nil {
		return nil, err
	}
	s.operators.Set(key, v)
	return v, nil
}
