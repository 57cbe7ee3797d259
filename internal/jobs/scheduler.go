package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/CodingBreaker07/nema-traders/internal/products"
	"github.com/CodingBreaker07/nema-traders/internal/settings"
)

// Scheduler runs the in-process maintenance jobs: scheduled snapshot backups
// and a daily low stock scan.
type Scheduler struct {
	logger    *slog.Logger
	settings  *settings.Service
	products  *products.Service
	backupDir string
	cron      *cron.Cron
}

// NewScheduler constructs the scheduler without starting it.
func NewScheduler(logger *slog.Logger, settingsService *settings.Service, productService *products.Service, backupDir string) *Scheduler {
	return &Scheduler{
		logger:    logger,
		settings:  settingsService,
		products:  productService,
		backupDir: backupDir,
	}
}

// Start registers the cron entries and runs them until ctx is done. The
// backup schedule is read from settings at fire time, so changing autoBackup
// needs no restart.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("0 2 * * *", func() { s.runBackup(ctx) }); err != nil {
		return fmt.Errorf("register backup job: %w", err)
	}
	if _, err := s.cron.AddFunc("0 9 * * *", func() { s.runLowStockScan(ctx) }); err != nil {
		return fmt.Errorf("register low stock job: %w", err)
	}
	s.cron.Start()
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	return nil
}

func (s *Scheduler) runBackup(ctx context.Context) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("backup: load settings", slog.Any("error", err))
		return
	}
	switch cfg.AutoBackup {
	case settings.BackupDaily:
	case settings.BackupWeekly:
		if time.Now().Weekday() != time.Sunday {
			return
		}
	default:
		return
	}
	path, err := s.WriteBackup(ctx)
	if err != nil {
		s.logger.Error("backup failed", slog.Any("error", err))
		return
	}
	s.logger.Info("backup written", slog.String("path", path))
}

// WriteBackup exports a snapshot to a timestamped file in the backup dir.
func (s *Scheduler) WriteBackup(ctx context.Context) (string, error) {
	snap, err := s.settings.Export(ctx)
	if err != nil {
		return "", fmt.Errorf("export snapshot: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := fmt.Sprintf("nema-backup-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

func (s *Scheduler) runLowStockScan(ctx context.Context) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("low stock scan: load settings", slog.Any("error", err))
		return
	}
	low, err := s.products.LowStock(ctx, cfg.LowStockThreshold)
	if err != nil {
		s.logger.Error("low stock scan failed", slog.Any("error", err))
		return
	}
	for _, p := range low {
		s.logger.Warn("product below stock threshold",
			slog.String("productId", p.ID),
			slog.String("name", p.Name),
			slog.Int("currentStock", p.CurrentStock))
	}
}
