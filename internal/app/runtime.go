package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/config"
	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	"github.com/Adda-Baaj/pha-bob-sync/internal/logger"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/bob"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/httpclient"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/pha"
	"github.com/Adda-Baaj/pha-bob-sync/pkg/publishers"
)

// CompletionMarker is written as the last log line of every run that was not halted.
const CompletionMarker = "script executed successfully"

const publishTimeout = 15 * time.Second

// remotes are the PHA and BOB clients shared by both jobs.
type remotes struct {
	pha *pha.Client
	bob *bob.Client
}

func newRemotes(cfg *config.Config) (remotes, error) {
	transport := httpclient.NewRestyClient(cfg.HTTPTimeout)

	phaClient, err := pha.NewClient(pha.Config{
		InspectionURL: cfg.PHAInspectionURL,
		Username:      cfg.PHAUsername,
		Password:      cfg.PHAPassword,
	}, transport)
	if err != nil {
		return remotes{}, fmt.Errorf("init pha client: %w", err)
	}

	bobClient, err := bob.NewClient(bob.Config{
		InstanceURL:           cfg.BOBInstance,
		APIKey:                cfg.BOBAPIKey,
		MasterDataPath:        cfg.BOBMasterDataPath,
		IntegrationListPath:   cfg.BOBIntegrationGetPath,
		IntegrationUpdatePath: cfg.BOBIntegrationUpdatePath,
	}, transport)
	if err != nil {
		return remotes{}, fmt.Errorf("init bob client: %w", err)
	}

	return remotes{pha: phaClient, bob: bobClient}, nil
}

// newFanout builds run notification sinks. Without a publishers file the
// fanout is empty and notifications are disabled.
func newFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("run notifications disabled", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// complete logs the run summary, writes the completion marker when records
// were processed and notifies downstream sinks. Publish failures are logged only.
func complete(ctx context.Context, cfg *config.Config, log logger.Logger, fanout *publishers.Fanout, report domain.RunReport, runErr error) {
	summary := map[string]any{
		"script":     report.Script,
		"total":      report.Total,
		"succeeded":  report.Succeeded,
		"failed":     report.Failed,
		"skipped":    report.Skipped,
		"elapsed_ms": report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	}
	if runErr != nil {
		summary["error"] = runErr.Error()
		log.ErrorObj("run halted", "run_summary", summary)
	} else {
		log.InfoObj("run finished", "run_summary", summary)
		// An empty feed ends the run before any record work, without the marker.
		if report.Total > 0 {
			log.InfoObj(CompletionMarker, "script", report.Script)
		}
	}

	if fanout.Size() == 0 {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	delivered, err := fanout.Publish(pubCtx, publishers.NewEvent(cfg.Env, report, runErr))
	if err != nil {
		log.WarnObj("run notification failed", "publish_error", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	log.DebugObj("run notification delivered", "publish_meta", map[string]any{
		"delivered": delivered,
	})
}

func closeFanout(log logger.Logger, fanout *publishers.Fanout) {
	if err := fanout.Close(); err != nil {
		log.ErrorObj("publishers close failed", "error", err.Error())
	}
}
