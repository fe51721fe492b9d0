package app

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/pha-bob-sync/internal/config"
	"github.com/Adda-Baaj/pha-bob-sync/internal/logger"
	"github.com/Adda-Baaj/pha-bob-sync/internal/syncer"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/publishers"
)

// DateWriteback is the recurring job that pushes BOB inspection dates back
// to PHA.
type DateWriteback struct {
	cfg       *config.Config
	writeback *syncer.Writeback
	fanout    *publishers.Fanout
	log       logger.Logger
}

// NewDateWriteback builds the write-back runtime from config.
func NewDateWriteback(ctx context.Context, cfg *config.Config, log logger.Logger) (*DateWriteback, error) {
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

	wb, err := syncer.NewWriteback(clients.bob, clients.pha, syncer.WritebackOptions{
		Limiter: syncer.NewLimiter(cfg.RequestsPerSecond),
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init writeback: %w", err)
	}

	fanout, err := newFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	return &DateWriteback{
		cfg:       cfg,
		writeback: wb,
		fanout:    fanout,
		log:       log,
	}, nil
}

// Run executes a single write-back pass and publishes its report.
func (d *DateWriteback) Run(ctx context.Context) error {
	if d == nil || d.writeback == nil {
		return fmt.Errorf("date writeback is not initialized")
	}
	defer closeFanout(d.log, d.fanout)

	d.log.InfoObj("date writeback starting", "writeback_state", map[string]any{
		"requests_per_second": d.cfg.RequestsPerSecond,
		"publishers_count":    d.fanout.Size(),
	})

	report, err := d.writeback.Run(ctx)
	complete(ctx, d.cfg, d.log, d.fanout, report, err)
	if err != nil {
		return fmt.Errorf("date writeback: %w", err)
	}
	return nil
}
