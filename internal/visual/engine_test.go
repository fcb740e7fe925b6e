package visual

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser"
	"github.com/Ucovy-Connects-Inc/playwright-e2e-automation-framework/internal/browser/browsertest"
)

const cardHTML = `<main><div id="card">Пациент</div><div id="gone" hidden>x</div></main>`

type visualRecorder struct {
	outcomes []Outcome
}

func (r *visualRecorder) RecordVisual(_ context.Context, o Outcome) error {
	r.outcomes = append(r.outcomes, o)
	return nil
}

func (r *visualRecorder) last(t *testing.T) Outcome {
	t.Helper()
	require.NotEmpty(t, r.outcomes)
	return r.outcomes[len(r.outcomes)-1]
}

func newTestEngine(t *testing.T, page browser.Page) (*Engine, *visualRecorder) {
	t.Helper()
	dir := t.TempDir()
	rec := &visualRecorder{}
	e := NewEngine(page, EngineConfig{
		BaselineDir:       filepath.Join(dir, "baselines"),
		ComparisonDir:     filepath.Join(dir, "comparisons"),
		Env:               Environment{Browser: "chromium", Name: "staging"},
		VisibilityTimeout: 50 * time.Millisecond,
		StabilityInterval: time.Millisecond,
		Recorder:          rec,
	}, zaptest.NewLogger(t))
	return e, rec
}

// singleOptions: путь с повторами, без стабилизации и пауз.
func singleOptions(retries int) Options {
	return Overrides{
		MaxRetries:          Int(retries),
		StabilityChecks:     Bool(false),
		WaitBetweenAttempts: Duration(0),
	}.Apply(BaseOptions())
}

func multiOptions(accept bool) Options {
	return Overrides{
		MaxRetries:            Int(1),
		StabilityChecks:       Bool(false),
		WaitBetweenAttempts:   Duration(0),
		ResolutionIndependent: Bool(true),
		AcceptOnExhaustion:    Bool(accept),
	}.Apply(BaseOptions())
}

func TestAssertElementCreatesBaselineOnce(t *testing.T) {
	ctx := context.Background()
	page := browsertest.New(cardHTML)
	e, rec := newTestEngine(t, page)

	passed, err := e.AssertElement(ctx, "#card", "card-1", singleOptions(1))
	require.NoError(t, err)
	assert.True(t, passed)
	assert.FileExists(t, filepath.Join(e.baselines.Dir(), "card-1-element.png"))
	assert.True(t, rec.last(t).BaselineCreated)

	passed, err = e.AssertElement(ctx, "#card", "card-1", singleOptions(1))
	require.NoError(t, err)
	assert.True(t, passed)

	out := rec.last(t)
	assert.False(t, out.BaselineCreated)
	assert.Equal(t, StrategyStandard, out.Strategy)
	assert.Equal(t, "#card", out.Selector)
	assert.Zero(t, out.DiffPixels)
}

func TestAssertElementMismatchCapturesFailure(t *testing.T) {
	ctx := context.Background()
	page := browsertest.New(cardHTML)
	e, rec := newTestEngine(t, page)
	e.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 15, 123_000_000, time.UTC) }

	_, err := e.AssertElement(ctx, "#card", "card-2", singleOptions(1))
	require.NoError(t, err)

	page.SetShots("#card", browsertest.SolidPNG(40, 20, color.Black))
	before := page.ShotCalls["#card"]

	passed, err := e.AssertElement(ctx, "#card", "card-2", singleOptions(2))
	require.Error(t, err)
	assert.False(t, passed)
	assert.ErrorIs(t, err, ErrVisualMismatch)
	assert.Equal(t, 2+1, page.ShotCalls["#card"]-before, "две попытки и снимок элемента при провале")

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	failureDir := filepath.Join(e.comparisons.Dir(), "failures", "2026-10-17T09-30-15-123Z")
	assert.Equal(t, failureDir, mismatch.ArtifactDir)
	assert.Equal(t, 800, mismatch.Result.DiffPixels)

	assert.FileExists(t, e.comparisons.Path("card-2-standard-actual.png"))
	assert.FileExists(t, e.comparisons.Path("card-2-standard-diff.png"))
	assert.FileExists(t, filepath.Join(failureDir, "card-2-context-page.png"))
	assert.FileExists(t, filepath.Join(failureDir, "card-2-failed-element.png"))

	data, err := os.ReadFile(filepath.Join(failureDir, "failure-context.json"))
	require.NoError(t, err)
	var fc FailureContext
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "card-2", fc.TestName)
	assert.Equal(t, "#card", fc.ElementSelector)
	assert.Equal(t, "chromium", fc.Browser)
	assert.Equal(t, "staging", fc.Environment)
	assert.Equal(t, page.URL, fc.PageURL)
	assert.Equal(t, 1280.0, fc.Viewport.Width)
	assert.Contains(t, fc.Error, "card-2")

	out := rec.last(t)
	assert.False(t, out.Passed)
	assert.Equal(t, failureDir, out.ArtifactDir)
}

func TestAssertElementInvisible(t *testing.T) {
	ctx := context.Background()
	page := browsertest.New(cardHTML)
	e, _ := newTestEngine(t, page)

	_, err := e.AssertElement(ctx, "#gone", "gone", singleOptions(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, browser.ErrVisibilityTimeout)
	assert.NotErrorIs(t, err, ErrVisualMismatch)
	assert.Zero(t, page.ShotCalls["#gone"])

	_, err = e.AssertElement(ctx, "#gone", "gone", multiOptions(true))
	assert.ErrorIs(t, err, browser.ErrVisibilityTimeout, "невидимый элемент не принимается по допуску")
}

func TestMultiStrategyResolutionIndependent(t *testing.T) {
	ctx := context.Background()
	page := browsertest.New(cardHTML)
	e, rec := newTestEngine(t, page)

	_, err := e.AssertElement(ctx, "#card", "card-3", multiOptions(false))
	require.NoError(t, err)

	page.SetShots("#card", browsertest.SolidPNG(80, 40, color.White))
	passed, err := e.AssertElement(ctx, "#card", "card-3", multiOptions(false))
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, StrategyResolutionIndependent, rec.last(t).Strategy)
	assert.FileExists(t, e.comparisons.Path("card-3-standard-actual.png"))
}

func TestMultiStrategyContentFocused(t *testing.T) {
	ctx := context.Background()
	page := browsertest.New(cardHTML)
	e, rec := newTestEngine(t, page)

	_, err := e.AssertElement(ctx, "#card", "card-4", multiOptions(false))
	require.NoError(t, err)

	page.SetShots("#card", browsertest.SolidPNG(40, 20, color.RGBA{150, 150, 150, 255}))
	passed, err := e.AssertElement(ctx, "#card", "card-4", multiOptions(false))
	require.NoError(t, err)
	assert.True(t, passed)
	assert.Equal(t, StrategyContentFocused, rec.last(t).Strategy)
}

func TestMultiStrategyExhaustion(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected", func(t *testing.T) {
		page := browsertest.New(cardHTML)
		e, rec := newTestEngine(t, page)
		_, err := e.AssertElement(ctx, "#card", "card-5", multiOptions(false))
		require.NoError(t, err)

		page.SetShots("#card", browsertest.SolidPNG(40, 20, color.Black))
		passed, err := e.AssertElement(ctx, "#card", "card-5", multiOptions(false))
		assert.False(t, passed)

		var mismatch *MismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, StrategyFinal, mismatch.Strategy)
		assert.False(t, rec.last(t).Passed)
	})

	t.Run("tolerated", func(t *testing.T) {
		page := browsertest.New(cardHTML)
		e, rec := newTestEngine(t, page)
		_, err := e.AssertElement(ctx, "#card", "card-6", multiOptions(true))
		require.NoError(t, err)

		page.SetShots("#card", browsertest.SolidPNG(40, 20, color.Black))
		passed, err := e.AssertElement(ctx, "#card", "card-6", multiOptions(true))
		require.NoError(t, err)
		assert.True(t, passed)

		out := rec.last(t)
		assert.True(t, out.Tolerated)
		assert.Equal(t, StrategyTolerated, out.Strategy)
		assert.Equal(t, 800, out.DiffPixels)
	})
}

func TestWaitForStability(t *testing.T) {
	ctx := context.Background()
	a := browsertest.SolidPNG(4, 4, color.White)
	b := browsertest.SolidPNG(4, 4, color.Black)

	t.Run("settles", func(t *testing.T) {
		page := browsertest.New(cardHTML)
		page.SetShots("#card", a, b, b, b, b)
		e, _ := newTestEngine(t, page)

		opts := BaseOptions()
		opts.StabilityTimeout = time.Second
		assert.True(t, e.waitForStability(ctx, e.log, "#card", opts))
		assert.Equal(t, 5, page.ShotCalls["#card"])
	})

	t.Run("keeps changing", func(t *testing.T) {
		page := browsertest.New(cardHTML)
		shots := make([][]byte, 0, 2000)
		for i := 0; i < 1000; i++ {
			shots = append(shots, a, b)
		}
		page.SetShots("#card", shots...)
		e, _ := newTestEngine(t, page)

		opts := BaseOptions()
		opts.StabilityTimeout = 30 * time.Millisecond
		assert.False(t, e.waitForStability(ctx, e.log, "#card", opts))
	})
}

func TestAssertPage(t *testing.T) {
	ctx := context.Background()
	page := browsertest.New(cardHTML)
	e, rec := newTestEngine(t, page)

	passed, err := e.AssertPage(ctx, "page-1", singleOptions(3))
	require.NoError(t, err)
	assert.True(t, passed)
	assert.FileExists(t, e.baselines.Path("page-1-page.png"))

	page.SetShots("", browsertest.SolidPNG(40, 20, color.Black))
	passed, err = e.AssertPage(ctx, "page-1", singleOptions(3))
	assert.False(t, passed)
	assert.ErrorIs(t, err, ErrVisualMismatch)
	assert.Equal(t, 2, page.ShotCalls[""], "страница снимается один раз на проверку")
	assert.Equal(t, StrategyPage, rec.last(t).Strategy)
}

func TestRetryAction(t *testing.T) {
	calls := 0
	err := retryAction(context.Background(), 3, 0, func(attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("еще нет")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls = 0
	err = retryAction(ctx, 3, time.Hour, func(int) error {
		calls++
		return errors.New("провал")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
