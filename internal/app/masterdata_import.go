package app

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/pha-bob-sync/internal/config"
	"github.com/Adda-Baaj/pha-bob-sync/internal/logger"
	"github.com/Adda-Baaj/pha-bob-sync/internal/syncer"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/publishers"
)

// MasterDataImport is the one-shot job that copies PHA active tenants into
// BOB master data.
type MasterDataImport struct {
	cfg      *config.Config
	importer *syncer.Importer
	fanout   *publishers.Fanout
	log      logger.Logger
}

// NewMasterDataImport builds the import runtime from config.
func NewMasterDataImport(ctx context.Context, cfg *config.Config, log logger.Logger) (*MasterDataImport, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	clients, err := newRemotes(cfg)
	if err != nil {
		return nil, err
	}

	importer, err := syncer.NewImporter(clients.pha, clients.bob, syncer.ImporterOptions{
		CustomerCode: cfg.CustomerCode,
		SourceName:   cfg.SourceName,
		Limiter:      syncer.NewLimiter(cfg.RequestsPerSecond),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init importer: %w", err)
	}

	fanout, err := newFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &MasterDataImport{
		cfg:      cfg,
		importer: importer,
		fanout:   fanout,
		log:      log,
	}, nil
}

// Run executes a single import pass and publishes its report.
func (m *MasterDataImport) Run(ctx context.Context) error {
	if m == nil || m.importer == nil {
		return fmt.Errorf("masterdata import is not initialized")
	}
	defer closeFanout(m.log, m.fanout)

	m.log.InfoObj("masterdata import starting", "import_state", map[string]any{
		"customer_code":       m.cfg.CustomerCode,
		"source_name":         m.cfg.SourceName,
		"requests_per_second": m.cfg.RequestsPerSecond,
		"publishers_count":    m.fanout.Size(),
	})

	report, err := m.importer.Run(ctx)
	complete(ctx, m.cfg, m.log, m.fanout, report, err)
	if err != nil {
		return fmt.Errorf("masterdata import: %w", err)
	}
	return nil
}
