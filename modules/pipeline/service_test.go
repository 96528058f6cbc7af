package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etsy-optimizer-server/modules/common/model"
)

// --- fakes ---

type fakeAnalyzer struct {
	result *model.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, images []model.EncodedImage) (*model.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCopyWriter struct {
	result *model.CopyResult
	err    error
}

func (f *fakeCopyWriter) GenerateCopy(ctx context.Context, analysis *model.AnalysisResult) (*model.CopyResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePlanner struct {
	prompts []model.MockupPrompt
	err     error
}

func (f *fakePlanner) Plan(ctx context.Context, analysis *model.AnalysisResult) ([]model.MockupPrompt, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prompts, nil
}

type renderCall struct {
	prompt     string
	imageCount int
}

type fakeRenderer struct {
	mu          sync.Mutex
	calls       []renderCall
	failPrompts map[string]bool
	onRender    func(prompt string)
}

func (f *fakeRenderer) Render(ctx context.Context, prompt string, images []model.EncodedImage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, renderCall{prompt: prompt, imageCount: len(images)})
	f.mu.Unlock()

	if f.onRender != nil {
		f.onRender(prompt)
	}
	if f.failPrompts[prompt] {
		return "", model.ErrNoImageReturned
	}
	return "data:image/png;base64,render-of-" + prompt, nil
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeWatermarker struct {
	mu    sync.Mutex
	count int
	err   error
}

func (f *fakeWatermarker) Apply(dataURI string) (string, error) {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "watermarked:" + dataURI, nil
}

type fakeEntitlements struct {
	mu         sync.Mutex
	canGen     bool
	premium    bool
	increments int
}

func (f *fakeEntitlements) CanGenerate() bool { return f.canGen }
func (f *fakeEntitlements) IsPremium() bool   { return f.premium }
func (f *fakeEntitlements) IncrementUsage() {
	f.mu.Lock()
	f.increments++
	f.mu.Unlock()
}

type eventCollector struct {
	mu     sync.Mutex
	events []Event
}

func (c *eventCollector) Broadcast(event Event) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
}

// --- fixtures ---

func tenPrompts() []model.MockupPrompt {
	prompts := make([]model.MockupPrompt, 10)
	for i := range prompts {
		prompts[i] = model.MockupPrompt{
			Name:   fmt.Sprintf("Mockup %d", i),
			Prompt: fmt.Sprintf("prompt-%d", i),
		}
	}
	return prompts
}

func testUploads(n int) []model.EncodedImage {
	uploads := make([]model.EncodedImage, n)
	for i := range uploads {
		uploads[i] = model.EncodedImage{Data: []byte{byte(i)}, MimeType: "image/png"}
	}
	return uploads
}

type pipelineFixture struct {
	store     *Store
	usage     *fakeEntitlements
	analyzer  *fakeAnalyzer
	copier    *fakeCopyWriter
	planner   *fakePlanner
	renderer  *fakeRenderer
	watermark *fakeWatermarker
	events    *eventCollector
	service   *Service
}

func newFixture() *pipelineFixture {
	f := &pipelineFixture{
		store: NewStore(),
		usage: &fakeEntitlements{canGen: true},
		analyzer: &fakeAnalyzer{result: &model.AnalysisResult{
			Theme:          "Boho Wedding",
			DominantColors: []string{"#111111", "#222222", "#333333", "#444444", "#555555"},
			KeyText:        []string{"Save the Date"},
			EventType:      "Wedding",
			ProductType:    "Printable Art",
		}},
		copier:    &fakeCopyWriter{result: &model.CopyResult{Title: "Boho Wedding Print"}},
		planner:   &fakePlanner{prompts: tenPrompts()},
		renderer:  &fakeRenderer{failPrompts: map[string]bool{}},
		watermark: &fakeWatermarker{},
		events:    &eventCollector{},
	}
	f.service = NewService(f.store, f.usage, f.analyzer, f.copier, f.planner, f.renderer, f.watermark, f.events)
	return f
}

func (f *pipelineFixture) analyzedRun(t *testing.T, uploadCount int) model.Run {
	t.Helper()
	run, err := f.service.Analyze(context.Background(), testUploads(uploadCount))
	require.NoError(t, err)
	require.Equal(t, model.RunAnalyzed, run.State)
	return run
}

// --- tests ---

func TestAnalyzeCreatesRun(t *testing.T) {
	f := newFixture()

	run := f.analyzedRun(t, 3)
	assert.NotEmpty(t, run.ID)
	require.NotNil(t, run.Analysis)
	assert.Equal(t, "Boho Wedding", run.Analysis.Theme)
	assert.Empty(t, run.Images)
}

func TestAnalyzeFailureMarksRunFailed(t *testing.T) {
	f := newFixture()
	f.analyzer.err = fmt.Errorf("analysis failed: %w", model.ErrMalformedModelResponse)

	run, err := f.service.Analyze(context.Background(), testUploads(1))
	assert.ErrorIs(t, err, model.ErrMalformedModelResponse)
	assert.Equal(t, model.RunFailed, run.State)
	assert.NotEmpty(t, run.Error)
}

func TestGenerateProducesTenWatermarkedImages(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 2)

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, err := f.service.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunDone, final.State)
	require.Len(t, final.Images, 10)

	for i, img := range final.Images {
		assert.Equal(t, fmt.Sprintf("Mockup %d", i), img.Name, "placeholder order must follow planner order")
		assert.Equal(t, model.StatusCompleted, img.Status)
		require.NotNil(t, img.Base64)
		assert.True(t, strings.HasPrefix(*img.Base64, "watermarked:"), "free plan images must be watermarked")
	}

	require.NotNil(t, final.Copy)
	assert.Equal(t, "Boho Wedding Print", final.Copy.Title)
	assert.Equal(t, 1, f.usage.increments, "free run must count exactly once")
	assert.Equal(t, 10, f.watermark.count)
}

func TestGenerateBindsImagesPerSlot(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 3)

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	// 0번은 업로드 전체, 나머지는 1장씩
	byPrompt := map[string]int{}
	f.renderer.mu.Lock()
	for _, call := range f.renderer.calls {
		byPrompt[call.prompt] = call.imageCount
	}
	f.renderer.mu.Unlock()

	assert.Equal(t, 3, byPrompt["prompt-0"])
	for i := 1; i < 10; i++ {
		assert.Equal(t, 1, byPrompt[fmt.Sprintf("prompt-%d", i)], "prompt-%d", i)
	}
}

func TestGenerateItemFailuresAreIndependent(t *testing.T) {
	f := newFixture()
	f.renderer.failPrompts["prompt-3"] = true
	f.renderer.failPrompts["prompt-7"] = true
	run := f.analyzedRun(t, 1)

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, err := f.service.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunDone, final.State, "run settles even with failed items")

	for i, img := range final.Images {
		if i == 3 || i == 7 {
			assert.Equal(t, model.StatusFailed, img.Status, "image %d", i)
			assert.Nil(t, img.Base64)
		} else {
			assert.Equal(t, model.StatusCompleted, img.Status, "image %d", i)
		}
	}
	assert.Equal(t, 1, f.usage.increments, "failed items still count as one run")
}

func TestGenerateRequiresAnalysis(t *testing.T) {
	f := newFixture()
	run := f.store.Create(testUploads(1))

	err := f.service.GenerateAssets(context.Background(), run.ID)
	assert.ErrorIs(t, err, model.ErrNotAnalyzed)
	assert.Equal(t, 0, f.renderer.callCount())
}

func TestGenerateRespectsDailyLimit(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 1)
	f.usage.canGen = false

	err := f.service.GenerateAssets(context.Background(), run.ID)
	assert.ErrorIs(t, err, model.ErrLimitReached)
	assert.Equal(t, 0, f.renderer.callCount())
	assert.Equal(t, 0, f.usage.increments)
}

func TestPlannerFailureRevertsToAnalyzed(t *testing.T) {
	f := newFixture()
	f.planner.err = fmt.Errorf("mockup planning failed: %w", model.ErrMalformedModelResponse)
	run := f.analyzedRun(t, 1)

	err := f.service.GenerateAssets(context.Background(), run.ID)
	assert.ErrorIs(t, err, model.ErrMalformedModelResponse)

	// 분석 결과는 살아 있으므로 재시도 가능한 상태로 돌아간다
	final, _ := f.service.GetRun(run.ID)
	assert.Equal(t, model.RunAnalyzed, final.State)
	assert.NotEmpty(t, final.Error)
	assert.Empty(t, final.Images)
	assert.Equal(t, 0, f.usage.increments, "failed planning does not consume the daily budget")
}

func TestCopyFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.copier.err = fmt.Errorf("listing copy generation failed: %w", model.ErrMalformedModelResponse)
	run := f.analyzedRun(t, 1)

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, _ := f.service.GetRun(run.ID)
	assert.Equal(t, model.RunDone, final.State)
	assert.Nil(t, final.Copy)
	assert.NotEmpty(t, final.CopyError)
	require.Len(t, final.Images, 10)
	for _, img := range final.Images {
		assert.Equal(t, model.StatusCompleted, img.Status)
	}
}

func TestPremiumSkipsWatermarkAndUsage(t *testing.T) {
	f := newFixture()
	f.usage.premium = true
	run := f.analyzedRun(t, 1)

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, _ := f.service.GetRun(run.ID)
	for _, img := range final.Images {
		require.NotNil(t, img.Base64)
		assert.False(t, strings.HasPrefix(*img.Base64, "watermarked:"))
	}
	assert.Equal(t, 0, f.watermark.count)
	assert.Equal(t, 0, f.usage.increments)
}

func TestWatermarkFailureFallsBackToOriginal(t *testing.T) {
	f := newFixture()
	f.watermark.err = model.ErrWatermarkRender
	run := f.analyzedRun(t, 1)

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, _ := f.service.GetRun(run.ID)
	for _, img := range final.Images {
		assert.Equal(t, model.StatusCompleted, img.Status)
		require.NotNil(t, img.Base64)
		assert.True(t, strings.HasPrefix(*img.Base64, "data:image/png;base64,"))
	}
}

func TestRegenerateReplacesSingleImage(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 2)
	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	before, _ := f.service.GetRun(run.ID)
	target := before.Images[4]

	updated, err := f.service.Regenerate(context.Background(), run.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, updated.Images[4].Status)
	for i, img := range updated.Images {
		if i == 4 {
			continue
		}
		assert.Equal(t, before.Images[i], img, "image %d must be untouched", i)
	}
	assert.Equal(t, 1, f.usage.increments, "regeneration is free")
}

func TestRegenerateChecksGateButNotBudget(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 1)
	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, _ := f.service.GetRun(run.ID)
	f.usage.canGen = false

	_, err := f.service.Regenerate(context.Background(), run.ID, final.Images[0].ID)
	assert.ErrorIs(t, err, model.ErrLimitReached)
}

func TestRegenerateUnknownImage(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 1)
	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	_, err := f.service.Regenerate(context.Background(), run.ID, "no-such-image")
	assert.ErrorIs(t, err, model.ErrImageNotFound)
}

func TestStaleResultsAreDiscarded(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 1)

	// 모든 렌더가 결과를 패치하기 전에 새 세대가 시작된 것처럼 토큰을 바꾼다
	f.renderer.onRender = func(prompt string) {
		f.store.Update(run.ID, func(r *model.Run) {
			r.Token = "newer-generation"
		})
	}

	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	final, _ := f.service.GetRun(run.ID)
	assert.NotEqual(t, model.RunDone, final.State, "stale cycle must not finalize the run")
	for _, img := range final.Images {
		assert.Equal(t, model.StatusPending, img.Status, "stale render results must be discarded")
		assert.Nil(t, img.Base64)
	}
}

func TestUpdateAnalysis(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 1)

	patch := *run.Analysis
	patch.Theme = "Modern Minimalist"
	updated, err := f.service.UpdateAnalysis(run.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Modern Minimalist", updated.Analysis.Theme)

	_, err = f.service.UpdateAnalysis("missing", patch)
	assert.ErrorIs(t, err, model.ErrRunNotFound)

	bare := f.store.Create(testUploads(1))
	_, err = f.service.UpdateAnalysis(bare.ID, patch)
	assert.ErrorIs(t, err, model.ErrNotAnalyzed)
}

func TestUpdateAnalysisInvalidatesDerivedResults(t *testing.T) {
	f := newFixture()
	run := f.analyzedRun(t, 1)
	require.NoError(t, f.service.GenerateAssets(context.Background(), run.ID))

	patch := *run.Analysis
	patch.Theme = "Completely Different Theme"
	updated, err := f.service.UpdateAnalysis(run.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, model.RunAnalyzed, updated.State)
	assert.Nil(t, updated.Copy)
	assert.Empty(t, updated.Prompts)
	assert.Empty(t, updated.Images)
}

func TestStoreUpdateIfToken(t *testing.T) {
	store := NewStore()
	run := store.Create(testUploads(1))

	store.Update(run.ID, func(r *model.Run) { r.Token = "gen-1" })

	_, ok := store.UpdateIfToken(run.ID, "gen-0", func(r *model.Run) { r.State = model.RunDone })
	assert.False(t, ok)

	snap, ok := store.UpdateIfToken(run.ID, "gen-1", func(r *model.Run) { r.State = model.RunDone })
	assert.True(t, ok)
	assert.Equal(t, model.RunDone, snap.State)
}
