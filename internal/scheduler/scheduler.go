// Package scheduler runs configured extracts on their delivery cadence and
// writes the output files to the local spool directory. SFTP transport is
// out of scope; a separate shipper picks spool files up.
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"oder/internal/domain"
	"oder/internal/export"
)

type Scheduler struct {
	configs  domain.ConfigRepository
	store    domain.MemberStore
	spoolDir string
	logger   *slog.Logger

	cron *cron.Cron
	now  func() time.Time
}

func New(configs domain.ConfigRepository, store domain.MemberStore, spoolDir string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		configs:  configs,
		store:    store,
		spoolDir: spoolDir,
		logger:   logger.With("component", "scheduler"),
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start loads every schedulable extract and registers its cron entry.
// Schedules are read once at startup; a config change takes effect on the
// next restart.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.spoolDir, 0o755); err != nil {
		return err
	}

	scheduled, err := s.configs.ScheduledExtracts(ctx)
	if err != nil {
		return err
	}

	for _, se := range scheduled {
		se := se
		if _, err := s.cron.AddFunc(se.CronExpr, func() { s.runOne(se) }); err != nil {
			s.logger.Error("skipping extract with invalid cron expression",
				"extract_code", se.ExtractCode, "cron", se.CronExpr, "error", err)
			continue
		}
		s.logger.Info("scheduled extract", "extract_code", se.ExtractCode, "cron", se.CronExpr)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runOne(se domain.ScheduledExtract) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	started := s.now()
	rs, err := s.store.Query(ctx, se.Statement)
	if err != nil {
		s.logger.Error("scheduled run failed", "extract_code", se.ExtractCode, "error", err)
		return
	}

	path := filepath.Join(s.spoolDir, export.Filename(se.ExtractCode, se.Extension, started))
	f, err := os.Create(path)
	if err != nil {
		s.logger.Error("spool file create failed", "extract_code", se.ExtractCode, "path", path, "error", err)
		return
	}
	if err := export.WriteRowSet(f, se.Delimiter, rs); err != nil {
		_ = f.Close()
		s.logger.Error("spool file write failed", "extract_code", se.ExtractCode, "path", path, "error", err)
		return
	}
	if err := f.Close(); err != nil {
		s.logger.Error("spool file close failed", "extract_code", se.ExtractCode, "path", path, "error", err)
		return
	}

	if err := s.configs.SetLastRun(ctx, se.ExtractID, started); err != nil {
		s.logger.Error("last-run stamp failed", "extract_code", se.ExtractCode, "error", err)
	}
	s.logger.Info("scheduled run delivered",
		"extract_code", se.ExtractCode, "path", path, "rows", len(rs.Rows))
}
