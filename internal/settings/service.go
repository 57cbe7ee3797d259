package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
	"github.com/CodingBreaker07/nema-traders/internal/platform/kv"
)

type Service struct {
	store *kv.Store
}

func NewService(store *kv.Store) *Service {
	return &Service{store: store}
}

// Get returns the stored settings, falling back to defaults when nothing has
// been saved yet.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	cfg := Defaults()
	if _, err := s.store.GetSettings(&cfg); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return cfg, nil
}

// Update overwrites the editable fields and keeps the password hash intact.
func (s *Service) Update(ctx context.Context, req UpdateSettingsRequest) (Settings, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	cfg.BusinessName = req.BusinessName
	cfg.BusinessPhone = req.BusinessPhone
	cfg.BusinessEmail = req.BusinessEmail
	cfg.BusinessAddress = req.BusinessAddress
	cfg.BusinessGST = req.BusinessGST
	cfg.InvoicePrefix = req.InvoicePrefix
	cfg.QuotationPrefix = req.QuotationPrefix
	cfg.DefaultTax = req.DefaultTax
	cfg.PaymentTerms = req.PaymentTerms
	cfg.LowStockThreshold = req.LowStockThreshold
	cfg.AutoBackup = req.AutoBackup
	if err := s.store.PutSettings(cfg); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return cfg, nil
}

// PasswordHash returns the stored bcrypt hash, empty when no password is set.
func (s *Service) PasswordHash(ctx context.Context) (string, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return cfg.PasswordHash, nil
}

// SetPasswordHash stores a new password hash; an empty hash removes the gate.
func (s *Service) SetPasswordHash(ctx context.Context, hash string) error {
	cfg, err := s.Get(ctx)
	if err != nil {
		return err
	}
	cfg.PasswordHash = hash
	if err := s.store.PutSettings(cfg); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Export serializes the full store into a snapshot for download or backup.
func (s *Service) Export(ctx context.Context) (*kv.Snapshot, error) {
	return s.store.Export()
}

// Import replaces the store contents with a snapshot. Counters in older
// exports were written as strings or floats, so they are coerced leniently
// before the strict all-or-nothing import runs.
func (s *Service) Import(ctx context.Context, raw json.RawMessage) error {
	snap, err := normalizeSnapshot(raw)
	if err != nil {
		return err
	}
	return s.store.Import(snap)
}

// Reset clears every collection and reseeds counters; settings survive.
func (s *Service) Reset(ctx context.Context) error {
	return s.store.Reset()
}

type looseSnapshot struct {
	Collections map[string][]json.RawMessage `json:"collections"`
	Settings    json.RawMessage              `json:"settings,omitempty"`
	Counters    map[string]any               `json:"counters"`
	ExportedAt  *time.Time                   `json:"exportedAt,omitempty"`
}

func normalizeSnapshot(raw json.RawMessage) (*kv.Snapshot, error) {
	var loose looseSnapshot
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrBadSnapshot, err)
	}
	snap := &kv.Snapshot{
		Collections: loose.Collections,
		Settings:    loose.Settings,
		Counters:    make(map[string]int64, len(loose.Counters)),
	}
	if loose.ExportedAt != nil {
		snap.ExportedAt = *loose.ExportedAt
	}
	for name, value := range loose.Counters {
		n, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("%w: counter %q is not numeric", httpx.ErrBadSnapshot, name)
		}
		snap.Counters[name] = n
	}
	return snap, nil
}
