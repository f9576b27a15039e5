package service

import (
	"context"

	"oder/internal/domain"
)

// ConfigService manages per-extract delivery configuration and its reference
// data. Access follows the extract's visibility.
type ConfigService struct {
	configs  domain.ConfigRepository
	extracts domain.ExtractRepository
}

func NewConfigService(configs domain.ConfigRepository, extracts domain.ExtractRepository) *ConfigService {
	return &ConfigService{configs: configs, extracts: extracts}
}

// Get returns the extract's delivery config. An extract that has never been
// configured yields an empty config rather than an error so the wizard can
// prefill.
func (s *ConfigService) Get(ctx context.Context, extractID int64) (*domain.ExtractConfig, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}
	if _, err := s.extracts.GetVisible(ctx, extractID, principal.UserID); err != nil {
		return nil, err
	}

	c, err := s.configs.Get(ctx, extractID)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			return &domain.ExtractConfig{ExtractID: extractID}, nil
		}
		return nil, err
	}
	return c, nil
}

// Save upserts the extract's delivery config.
func (s *ConfigService) Save(ctx context.Context, c *domain.ExtractConfig) (*domain.ExtractConfig, error) {
	principal, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrAccessDenied("no requesting principal")
	}
	if _, err := s.extracts.GetVisible(ctx, c.ExtractID, principal.UserID); err != nil {
		return nil, err
	}

	if err := s.configs.Upsert(ctx, c); err != nil {
		return nil, err
	}
	return s.configs.Get(ctx, c.ExtractID)
}

func (s *ConfigService) FileFormats(ctx context.Context) ([]domain.FileFormat, error) {
	return s.configs.FileFormats(ctx)
}

func (s *ConfigService) FileDelimiters(ctx context.Context) ([]domain.FileDelimiter, error) {
	return s.configs.FileDelimiters(ctx)
}

func (s *ConfigService) SftpServers(ctx context.Context) ([]domain.SftpServer, error) {
	return s.configs.SftpServers(ctx)
}

func (s *ConfigService) ScheduleParameters(ctx context.Context) ([]domain.ScheduleParameter, error) {
	return s.configs.ScheduleParameters(ctx)
}

// Output resolves the delimiter and file extension configured for an
// extract, defaulting to comma/csv when nothing is chosen.
func (s *ConfigService) Output(ctx context.Context, extractID int64) (delimiter, extension string, err error) {
	c, err := s.Get(ctx, extractID)
	if err != nil {
		return "", "", err
	}

	delimiter = ","
	if c.FileDelimiterID != nil {
		delims, err := s.configs.FileDelimiters(ctx)
		if err != nil {
			return "", "", err
		}
		for _, d := range delims {
			if d.ID == *c.FileDelimiterID {
				delimiter = d.Value
				break
			}
		}
	}

	extension = "csv"
	if c.FileFormatID != nil {
		formats, err := s.configs.FileFormats(ctx)
		if err != nil {
			return "", "", err
		}
		for _, f := range formats {
			if f.ID == *c.FileFormatID {
				extension = f.Extension
				break
			}
		}
	}

	return delimiter, extension, nil
}
