package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	"github.com/Adda-Baaj/pha-bob-sync/internal/logger"
	"github.com/Adda-Baaj/pha-bob-sync/internal/mapping"
	apperrors "github.com/Adda-Baaj/pha-bob-sync/pkg/errors"
	"golang.org/x/time/rate"
)

// ScriptDateWriteback names the write-back job in logs and run reports.
const ScriptDateWriteback = "date-writeback"

// WritebackOptions tunes a Writeback.
type WritebackOptions struct {
	Limiter *rate.Limiter
	Now     func() time.Time
}

// Writeback drains BOB's pending unit updates into PHA and marks each
// delivered record COMPLETED.
type Writeback struct {
	queue   IntegrationQueue
	target  InspectionDateUpdater
	limiter *rate.Limiter
	now     func() time.Time
	log     logger.Logger
}

// NewWriteback wires a write-back pass between BOB and PHA.
func NewWriteback(queue IntegrationQueue, target InspectionDateUpdater, opts WritebackOptions, log logger.Logger) (*Writeback, error) {
	if queue == nil || target == nil {
		return nil, fmt.Errorf("writeback needs an integration queue and a date updater")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Writeback{
		queue:   queue,
		target:  target,
		limiter: limiterOrInf(opts.Limiter),
		now:     clockOrNow(opts.Now),
		log:     log,
	}, nil
}

// Run executes one write-back pass.
func (w *Writeback) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{Script: ScriptDateWriteback, StartedAt: w.now().UTC()}
	finish := func() domain.RunReport {
		report.FinishedAt = w.now().UTC()
		return report
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return finish(), err
	}
	records, err := w.queue.PendingUnitUpdates(ctx)
	if err != nil {
		w.log.ErrorObj("fetch pending unit updates failed", "error", err.Error())
		return finish(), fmt.Errorf("fetch pending unit updates: %w", err)
	}
	if len(records) == 0 {
		w.log.InfoObj("no data found", "source", "bob_integration_data")
		return finish(), nil
	}

	report.Total = len(records)
	w.log.InfoObj("pending unit updates fetched", "writeback_meta", map[string]any{
		"count": len(records),
	})

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		if err := w.writeOne(ctx, &report, rec); err != nil {
			return finish(), err
		}
	}

	return finish(), nil
}

func (w *Writeback) writeOne(ctx context.Context, report *domain.RunReport, rec domain.IntegrationRecord) error {
	keys := mapping.IntegrationKeys(rec)

	if rec.DecodeErr != nil {
		w.skip(report, keys, StageDecode, fmt.Errorf("decode integration record: %w", rec.DecodeErr))
		return nil
	}
	upd := mapping.DateUpdate(rec)
	if err := validateRecord(rec, upd); err != nil {
		w.skip(report, keys, StageValidate, err)
		return nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	phaResp, err := w.target.UpdateInspectionDates(ctx, rec.Data.TenantID, rec.ID, upd)
	if err != nil {
		return w.failed(ctx, report, keys, StageUpdateInspection, err)
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}
	bobResp, err := w.queue.CompleteIntegration(ctx, rec.ID)
	if err != nil {
		return w.failed(ctx, report, keys, StageCompleteIntegration, err)
	}

	report.Succeeded++
	w.log.InfoObj("inspection dates written back", "record_result", map[string]any{
		"record":       keys,
		"pha_response": phaResp,
		"bob_response": bobResp,
	})
	return nil
}

func (w *Writeback) failed(ctx context.Context, report *domain.RunReport, keys map[string]string, stage string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	report.Failed++
	recordFailure(report, keys, stage, err)
	w.log.ErrorObj("integration record failed", "record_failure", failureFields(keys, stage, err))
	return nil
}

func (w *Writeback) skip(report *domain.RunReport, keys map[string]string, stage string, err error) {
	report.Skipped++
	recordFailure(report, keys, stage, err)
	w.log.WarnObj("integration record skipped", "record_failure", failureFields(keys, stage, err))
}

func validateRecord(rec domain.IntegrationRecord, upd domain.DateUpdate) error {
	if rec.ID.Empty() {
		return apperrors.NewValidationError("integration record has no id", "id", rec.ID.String())
	}
	if rec.Data.TenantID.Empty() {
		return apperrors.NewValidationError("integration record has no tenant id", "tenant_id", rec.Data.TenantID.String())
	}
	if upd.Empty() {
		return apperrors.NewValidationError("integration record has no inspection dates", "last_passed_date", "")
	}
	return nil
}
