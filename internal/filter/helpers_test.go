package filter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/guard"
	"github.com/tkingovr/apigate/internal/policy"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T) *policy.RuleEngine {
	t.Helper()
	e, err := policy.NewRuleEngine(policy.DefaultAllowlist())
	require.NoError(t, err)
	return e
}

func newTestGuards(t *testing.T, cfg policy.Guards) []guard.Guard {
	t.Helper()
	guards, err := guard.FromConfig(cfg)
	require.NoError(t, err)
	return guards
}

// recordFilter appends its name to calls whenever it runs.
type recordFilter struct {
	name  string
	calls *[]string
	fn    func(fc *FilterContext)
}

func (f *recordFilter) Name() string { return f.name }

func (f *recordFilter) Process(_ context.Context, fc *FilterContext) error {
	*f.calls = append(*f.calls, f.name)
	if f.fn != nil {
		f.fn(fc)
	}
	return nil
}

type errFilter struct{}

func (errFilter) Name() string { return "broken" }

func (errFilter) Process(context.Context, *FilterContext) error {
	return errors.New("boom")
}

// staticEngine returns a fixed decision or error.
type staticEngine struct {
	decision api.Decision
	err      error
}

func (e staticEngine) Evaluate(context.Context, *policy.RequestContext) (api.Decision, error) {
	return e.decision, e.err
}

type fakeRecorder struct {
	decisions  []api.Decision
	preflights int
	blocked    []string
	suppressed []string
	durations  int
}

func (r *fakeRecorder) RecordDecision(d api.Decision) { r.decisions = append(r.decisions, d) }
func (r *fakeRecorder) RecordPreflight() { r.preflights++ }
func (r *fakeRecorder) RecordBlocked(check string) { r.blocked = append(r.blocked, check) }
func (r *fakeRecorder) RecordSuppressed(check string) { r.suppressed = append(r.suppressed, check) }
func (r *fakeRecorder) RecordDuration(time.Duration) { r.durations++ }
