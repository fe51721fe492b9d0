package syncer

import (
	"time"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
	"golang.org/x/time/rate"
)

// Failure stages recorded in run reports.
const (
	StageDecode              = "decode"
	StageMap                 = "map"
	StageValidate            = "validate"
	StageCreateMasterData    = "create_master_data"
	StageUpdateInspection    = "update_inspection_dates"
	StageCompleteIntegration = "complete_integration"
)

// NewLimiter paces outbound calls to rps requests per second. A non-positive
// rps means no pacing.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func limiterOrInf(l *rate.Limiter) *rate.Limiter {
	if l == nil {
		return NewLimiter(0)
	}
	return l
}

func clockOrNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}

func recordFailure(report *domain.RunReport, keys map[string]string, stage string, err error) {
	report.Failures = append(report.Failures, domain.RecordFailure{
		Record: keys,
		Stage:  stage,
		Reason: err.Error(),
	})
}

func failureFields(keys map[string]string, stage string, err error) map[string]any {
	fields := make(map[string]any, len(keys)+2)
	for k, v := range keys {
		fields[k] = v
	}
	fields["stage"] = stage
	fields["error"] = err.Error()
	return fields
}
