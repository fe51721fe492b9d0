package publishers

import (
	"errors"
	"testing"

	"github.com/Adda-Baaj/pha-bob-sync/internal/domain"
)

func TestNewEventStatus(t *testing.T) {
	cases := []struct {
		name   string
		report domain.RunReport
		err    error
		want   string
	}{
		{name: "clean", report: domain.RunReport{Script: "masterdata-import", Total: 2, Succeeded: 2}, want: StatusSucceeded},
		{name: "partial", report: domain.RunReport{Script: "masterdata-import", Total: 2, Succeeded: 1, Failed: 1}, want: StatusPartial},
		{name: "skipped", report: domain.RunReport{Script: "date-writeback", Total: 1, Skipped: 1}, want: StatusPartial},
		{name: "halted", report: domain.RunReport{Script: "date-writeback"}, err: errors.New("fetch failed"), want: StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evt := NewEvent("staging", tc.report, tc.err)
			if evt.Status != tc.want {
				t.Fatalf("status = %s, want %s", evt.Status, tc.want)
			}
			if evt.Script != tc.report.Script || evt.Env != "staging" {
				t.Fatalf("unexpected event %+v", evt)
			}
			if (tc.err != nil) != (evt.Error != "") {
				t.Fatalf("error field mismatch: %q", evt.Error)
			}
		})
	}
}
