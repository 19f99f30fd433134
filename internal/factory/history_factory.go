package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mailmind/mailmind/internal/adapters/history"
	"github.com/mailmind/mailmind/internal/config"
	"github.com/mailmind/mailmind/internal/core"
)

// HistoryFactory creates the analytics history backend.
type HistoryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHistoryFactory creates a history factory.
func NewHistoryFactory(cfg *config.Config, logger *zap.Logger) *HistoryFactory {
	return &HistoryFactory{cfg: cfg, logger: logger}
}

// CreateHistoryRepository creates the configured history backend. The
// cap is the same for every backend.
func (f *HistoryFactory) CreateHistoryRepository() (core.HistoryRepository, error) {
	h := f.cfg.GetHistory()

	switch h.Type {
	case "memory":
		return history.NewMemoryHistory(core.HistoryCap, f.logger), nil
	case "sqlite":
		return history.NewSQLiteHistory(h.SQLitePath, core.HistoryCap, f.logger)
	case "mysql":
		return history.NewMySQLHistory(h.MySQLDSN, core.HistoryCap, f.logger)
	default:
		return nil, fmt.Errorf("unsupported history type: %s", h.Type)
	}
}
