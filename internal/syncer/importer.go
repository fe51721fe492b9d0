package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	"github.com/Adda-Baaj/pha-bob-sync/internal/logger"
	"github.com/Adda-Baaj/pha-bob-sync/internal/mapping"
	"golang.org/x/time/rate"
)

// ScriptMasterDataImport names the import job in logs and run reports.
const ScriptMasterDataImport = "masterdata-import"

// ImporterOptions tunes an Importer.
type ImporterOptions struct {
	CustomerCode string
	SourceName   string
	Limiter      *rate.Limiter
	Now          func() time.Time
}

// Importer copies PHA active-tenant inspections into BOB master data, one
// record at a time.
type Importer struct {
	source       InspectionSource
	sink         MasterDataSink
	customerCode string
	sourceName   string
	limiter      *rate.Limiter
	now          func() time.Time
	log          logger.Logger
}

// NewImporter wires an importer between PHA and BOB.
func NewImporter(source InspectionSource, sink MasterDataSink, opts ImporterOptions, log logger.Logger) (*Importer, error) {
	if source == nil || sink == nil {
		return nil, fmt.Errorf("importer needs an inspection source and a master data sink")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Importer{
		source:       source,
		sink:         sink,
		customerCode: opts.CustomerCode,
		sourceName:   opts.SourceName,
		limiter:      limiterOrInf(opts.Limiter),
		now:          clockOrNow(opts.Now),
		log:          log,
	}, nil
}

// Run executes one import pass. Only a failed initial fetch or a cancelled
// context returns an error; per-record failures land in the report.
func (im *Importer) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{Script: ScriptMasterDataImport, StartedAt: im.now().UTC()}
	finish := func() domain.RunReport {
		report.FinishedAt = im.now().UTC()
		return report
	}

	if err := im.limiter.Wait(ctx); err != nil {
		return finish(), err
	}
	inspections, err := im.source.ActiveTenants(ctx)
	if err != nil {
		im.log.ErrorObj("fetch active tenants failed", "error", err.Error())
		return finish(), fmt.Errorf("fetch active tenants: %w", err)
	}
	if len(inspections) == 0 {
		im.log.InfoObj("no data found", "source", "pha_active_tenants")
		return finish(), nil
	}

	report.Total = len(inspections)
	im.log.InfoObj("active tenants fetched", "import_meta", map[string]any{
		"count": len(inspections),
	})

	for _, insp := range inspections {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		if err := im.importOne(ctx, &report, insp); err != nil {
			return finish(), err
		}
	}

	return finish(), nil
}

// importOne handles a single inspection. The returned error is only set when
// the run must stop.
func (im *Importer) importOne(ctx context.Context, report *domain.RunReport, insp domain.Inspection) error {
	keys := mapping.InspectionKeys(insp)

	if insp.DecodeErr != nil {
		im.skip(report, keys, StageDecode, fmt.Errorf("decode inspection: %w", insp.DecodeErr))
		return nil
	}
	req, err := mapping.MasterData(insp, im.customerCode, im.sourceName)
	if err != nil {
		im.skip(report, keys, StageMap, err)
		return nil
	}

	if err := im.limiter.Wait(ctx); err != nil {
		return err
	}
	payload, err := im.sink.CreateMasterData(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		report.Failed++
		recordFailure(report, keys, StageCreateMasterData, err)
		im.log.ErrorObj("master data create failed", "record_failure", failureFields(keys, StageCreateMasterData, err))
		return nil
	}

	report.Succeeded++
	im.log.InfoObj("master data created", "record_result", map[string]any{
		"record":   keys,
		"response": payload,
	})
	return nil
}

func (im *Importer) skip(report *domain.RunReport, keys map[string]string, stage string, err error) {
	report.Skipped++
	recordFailure(report, keys, stage, err)
	im.log.WarnObj("inspection skipped", "record_failure", failureFields(keys, stage, err))
}
