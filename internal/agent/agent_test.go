package agent

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/jkarethiya/sonarfix/internal/errors"
	"github.com/jkarethiya/sonarfix/internal/findings"
)

type fakeAgent struct {
	fixErr  error
	msgErr  error
	calls   []string
	lastReq Request
}

func (f *fakeAgent) Fix(_ context.Context, req Request) error {
	f.calls = append(f.calls, "fix")
	f.lastReq = req
	return f.fixErr
}

func (f *fakeAgent) SendMessage(_ context.Context, req Request) error {
	f.calls = append(f.calls, "message")
	return f.msgErr
}

type fakeEditor struct {
	path  string
	line0 int
}

func (e *fakeEditor) Open(_ context.Context, path string, line0 int) error {
	e.path, e.line0 = path, line0
	return nil
}

type scriptedConfirmer struct {
	verdicts []FixOutcome
	err      error
	asked    []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, prompt string) (FixOutcome, error) {
	c.asked = append(c.asked, prompt)
	if c.err != nil {
		return 0, c.err
	}
	v := c.verdicts[0]
	c.verdicts = c.verdicts[1:]
	return v, nil
}

type recordingPresenter struct {
	texts []string
}

func (p *recordingPresenter) Markdown(text string) { p.texts = append(p.texts, text) }

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func intPtr(i int) *int { return &i }

func testFinding(line *int) findings.Finding {
	return findings.Finding{
		Key:          "AX-1",
		Rule:         "go:S1144",
		Severity:     findings.SeverityMajor,
		Type:         findings.TypeBug,
		ComponentRef: "demo:src/a.go",
		Line:         line,
		Message:      "Remove this unused function",
	}
}

type harness struct {
	agent     *fakeAgent
	editor    *fakeEditor
	confirmer *scriptedConfirmer
	presenter *recordingPresenter
	sleeper   *recordingSleeper
	adapter   *Adapter
}

func newHarness(t *testing.T, withAgent bool, verdicts ...FixOutcome) *harness {
	t.Helper()
	h := &harness{
		agent:     &fakeAgent{},
		editor:    &fakeEditor{},
		confirmer: &scriptedConfirmer{verdicts: verdicts},
		presenter: &recordingPresenter{},
		sleeper:   &recordingSleeper{},
	}
	opts := Options{
		Editor:    h.editor,
		Confirmer: h.confirmer,
		Presenter: h.presenter,
		Delay:     time.Second,
		Sleep:     h.sleeper.sleep,
	}
	if withAgent {
		opts.Agent = h.agent
	}
	a, err := NewAdapter(hclog.NewNullLogger(), opts)
	require.NoError(t, err)
	h.adapter = a
	return h
}

func TestInvokeApplied(t *testing.T) {
	h := newHarness(t, true, Applied)

	outcome, err := h.adapter.Invoke(context.Background(), "/w/src/a.go", testFinding(intPtr(12)))
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)

	assert.Equal(t, []string{"fix", "message"}, h.agent.calls)
	assert.Equal(t, "/w/src/a.go", h.editor.path)
	assert.Equal(t, 11, h.editor.line0)
	assert.Contains(t, h.agent.lastReq.Prompt, "go:S1144")
	assert.Contains(t, h.agent.lastReq.Prompt, "MAJOR")
	assert.Contains(t, h.agent.lastReq.Prompt, "Remove this unused function")
	assert.Contains(t, h.agent.lastReq.Prompt, "bug")
	assert.Empty(t, h.presenter.texts)
	assert.Equal(t, []time.Duration{time.Second}, h.sleeper.delays)
}

func TestInvokeLineClamp(t *testing.T) {
	testCases := []struct {
		name string
		line *int
	}{
		{name: "absent", line: nil},
		{name: "zero", line: intPtr(0)},
		{name: "negative", line: intPtr(-3)},
		{name: "first", line: intPtr(1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, true, Skipped)
			_, err := h.adapter.Invoke(context.Background(), "/w/a.go", testFinding(tc.line))
			require.NoError(t, err)
			assert.Equal(t, 0, h.editor.line0)
			assert.Equal(t, 1, h.agent.lastReq.Line)
		})
	}
}

func TestInvokeSkipped(t *testing.T) {
	h := newHarness(t, true, Skipped)
	outcome, err := h.adapter.Invoke(context.Background(), "/w/a.go", testFinding(intPtr(3)))
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
	assert.Len(t, h.sleeper.delays, 1)
}

func TestInvokeCancel(t *testing.T) {
	h := newHarness(t, true, Cancelled)
	outcome, err := h.adapter.Invoke(context.Background(), "/w/a.go", testFinding(intPtr(3)))
	assert.Equal(t, Cancelled, outcome)
	assert.True(t, stderrors.Is(err, errs.ErrUserCancelled))
	assert.Len(t, h.sleeper.delays, 1)
}

func TestInvokeAgentFailureFallsBackToManual(t *testing.T) {
	testCases := []struct {
		name   string
		fixErr error
		msgErr error
		calls  []string
	}{
		{name: "fix fails", fixErr: stderrors.New("exit status 1"), calls: []string{"fix"}},
		{name: "message fails", msgErr: stderrors.New("exit status 2"), calls: []string{"fix", "message"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, true, Applied)
			h.agent.fixErr, h.agent.msgErr = tc.fixErr, tc.msgErr

			outcome, err := h.adapter.Invoke(context.Background(), "/w/a.go", testFinding(intPtr(5)))
			require.NoError(t, err)
			assert.Equal(t, Applied, outcome)
			assert.Equal(t, tc.calls, h.agent.calls)
			require.Len(t, h.presenter.texts, 1)
			assert.Contains(t, h.presenter.texts[0], "Manual fix needed")
			assert.Contains(t, h.presenter.texts[0], "AX-1")
		})
	}
}

func TestInvokeDegraded(t *testing.T) {
	h := newHarness(t, true, Applied)
	h.adapter.SetDegraded(true)

	outcome, err := h.adapter.Invoke(context.Background(), "/w/a.go", testFinding(intPtr(5)))
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	assert.Empty(t, h.agent.calls)
	assert.Len(t, h.presenter.texts, 1)

	noAgent := newHarness(t, false, Skipped)
	assert.True(t, noAgent.adapter.Degraded())
}

func TestInvokeContextCancelled(t *testing.T) {
	h := newHarness(t, true)
	h.confirmer.err = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := h.adapter.Invoke(ctx, "/w/a.go", testFinding(intPtr(5)))
	assert.Equal(t, Cancelled, outcome)
	assert.True(t, stderrors.Is(err, errs.ErrUserCancelled))
}

func TestInvokeConfirmError(t *testing.T) {
	h := newHarness(t, true)
	h.confirmer.err = stderrors.New("terminal closed")

	_, err := h.adapter.Invoke(context.Background(), "/w/a.go", testFinding(intPtr(5)))
	require.Error(t, err)
	assert.False(t, stderrors.Is(err, errs.ErrUserCancelled))
}

func TestNewAdapterRequiresConfirmer(t *testing.T) {
	_, err := NewAdapter(hclog.NewNullLogger(), Options{})
	assert.Error(t, err)
}

func TestCustomPrompt(t *testing.T) {
	b, err := NewPromptBuilder("{{.Key}} {{.Rule}} line {{.Line}}")
	require.NoError(t, err)
	out, err := b.Build(Request{Key: "AX-9", Rule: "r1", Line: 4})
	require.NoError(t, err)
	assert.Equal(t, "AX-9 r1 line 4", out)

	_, err = NewPromptBuilder("{{.Key")
	assert.Error(t, err)
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, Sleep(ctx, time.Hour))
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
}
