package filter

import (
	"context"
	"time"

	"github.com/tkingovr/apigate/api"
)

// Recorder receives per-request outcomes.
type Recorder interface {
	RecordDecision(d api.Decision)
	RecordPreflight()
	RecordBlocked(check string)
	RecordSuppressed(check string)
	RecordDuration(d time.Duration)
}

// MetricsFilter records the outcome of every processed request.
// It is installed as a chain observer so it sees halted requests too.
type MetricsFilter struct {
	recorder Recorder
}

func NewMetricsFilter(recorder Recorder) *MetricsFilter {
	return &MetricsFilter{recorder: recorder}
}

func (f *MetricsFilter) Name() string { return "metrics" }

func (f *MetricsFilter) Process(_ context.Context, fc *FilterContext) error {
	f.recorder.RecordDecision(fc.Decision)
	if fc.Preflight {
		f.recorder.RecordPreflight()
	}
	if fc.Blocked() {
		f.recorder.RecordBlocked(fc.BlockedBy)
	}
	for _, check := range fc.Suppressed() {
		f.recorder.RecordSuppressed(check)
	}
	f.recorder.RecordDuration(time.Since(fc.StartTime))
	return nil
}
