package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/mockup"
)

// ErrGenerationInProgress - 생성 중에는 분석 수정 불가
var ErrGenerationInProgress = errors.New("generation is in progress")

// 오케스트레이터가 쓰는 협력자 경계. 테스트에서 fake로 바꾼다.
type (
	Analyzer interface {
		Analyze(ctx context.Context, images []model.EncodedImage) (*model.AnalysisResult, error)
	}
	CopyWriter interface {
		GenerateCopy(ctx context.Context, analysis *model.AnalysisResult) (*model.CopyResult, error)
	}
	PromptPlanner interface {
		Plan(ctx context.Context, analysis *model.AnalysisResult) ([]model.MockupPrompt, error)
	}
	Renderer interface {
		Render(ctx context.Context, prompt string, images []model.EncodedImage) (string, error)
	}
	Watermarker interface {
		Apply(dataURI string) (string, error)
	}
	Entitlements interface {
		CanGenerate() bool
		IsPremium() bool
		IncrementUsage()
	}
	Broadcaster interface {
		Broadcast(event Event)
	}
)

// Service - analyze → copy/plan → 10장 fan-out 생성 오케스트레이터
type Service struct {
	store      *Store
	usage      Entitlements
	analyzer   Analyzer
	copywriter CopyWriter
	planner    PromptPlanner
	renderer   Renderer
	watermark  Watermarker
	events     Broadcaster
}

func NewService(
	store *Store,
	usage Entitlements,
	analyzer Analyzer,
	copywriter CopyWriter,
	planner PromptPlanner,
	renderer Renderer,
	watermark Watermarker,
	events Broadcaster,
) *Service {
	return &Service{
		store:      store,
		usage:      usage,
		analyzer:   analyzer,
		copywriter: copywriter,
		planner:    planner,
		renderer:   renderer,
		watermark:  watermark,
		events:     events,
	}
}

// Analyze - 업로드 이미지로 새 Run을 만들고 분석까지 수행
func (s *Service) Analyze(ctx context.Context, uploads []model.EncodedImage) (model.Run, error) {
	run := s.store.Create(uploads)

	snap, _ := s.store.Update(run.ID, func(r *model.Run) {
		r.State = model.RunAnalyzing
	})
	s.broadcastRun(snap)

	result, err := s.analyzer.Analyze(ctx, uploads)
	if err != nil {
		snap, _ = s.store.Update(run.ID, func(r *model.Run) {
			r.State = model.RunFailed
			r.Error = err.Error()
		})
		s.broadcastRun(snap)
		return snap, err
	}

	snap, _ = s.store.Update(run.ID, func(r *model.Run) {
		r.State = model.RunAnalyzed
		r.Analysis = result
	})
	s.broadcastRun(snap)
	return snap, nil
}

// GetRun - Run 스냅샷 조회
func (s *Service) GetRun(runID string) (model.Run, error) {
	return s.store.Get(runID)
}

// UpdateAnalysis - 생성 전에 분석 결과를 사용자가 손보는 경로.
// 분석이 바뀌면 그 위에 만들어진 카피/프롬프트/이미지는 전부 무효가 된다.
func (s *Service) UpdateAnalysis(runID string, patch model.AnalysisResult) (model.Run, error) {
	snap, err := s.store.Get(runID)
	if err != nil {
		return model.Run{}, err
	}
	if snap.Analysis == nil {
		return model.Run{}, model.ErrNotAnalyzed
	}
	if snap.State == model.RunGenerating {
		return model.Run{}, ErrGenerationInProgress
	}

	snap, err = s.store.Update(runID, func(r *model.Run) {
		r.Analysis = &patch
		r.State = model.RunAnalyzed
		r.Copy = nil
		r.CopyError = ""
		r.Prompts = nil
		r.Images = []model.GeneratedImage{}
		r.Error = ""
		// 진행 중이던 렌더 결과가 새 분석 위에 내려앉지 않게 세대도 끊는다
		r.Token = ""
	})
	if err != nil {
		return model.Run{}, err
	}
	s.broadcastRun(snap)
	return snap, nil
}

// CheckGenerate - 생성 전제조건 검사 (enqueue 전에 호출해서 즉시 거절)
func (s *Service) CheckGenerate(runID string) error {
	snap, err := s.store.Get(runID)
	if err != nil {
		return err
	}
	if snap.Analysis == nil {
		return model.ErrNotAnalyzed
	}
	if !s.usage.CanGenerate() {
		return model.ErrLimitReached
	}
	return nil
}

// GenerateAssets - 한 사이클 전체: 카피 생성과 목업 플래닝을 병렬로 돌리고,
// 프롬프트 10개가 나오면 pending 플레이스홀더를 먼저 깔아둔 뒤 전부 병렬 렌더링.
// 항목 실패는 해당 항목만 failed로 남기고 사이클은 끝까지 간다.
func (s *Service) GenerateAssets(ctx context.Context, runID string) error {
	if err := s.CheckGenerate(runID); err != nil {
		return err
	}

	snap, err := s.store.Get(runID)
	if err != nil {
		return err
	}
	analysis := snap.Analysis
	uploads := snap.Uploads
	premium := s.usage.IsPremium()

	// 새 세대 시작: 이전 결과 전부 비우기
	token := uuid.New().String()
	snap, err = s.store.Update(runID, func(r *model.Run) {
		r.Token = token
		r.State = model.RunGenerating
		r.Images = []model.GeneratedImage{}
		r.Prompts = nil
		r.Copy = nil
		r.CopyError = ""
		r.Error = ""
	})
	if err != nil {
		return err
	}
	s.broadcastRun(snap)
	log.Printf("🏁 [Pipeline] Generation started for run %s (premium: %v)", runID, premium)

	// 리스팅 카피는 플래닝과 동시에. 실패해도 사이클은 계속.
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		copyResult, copyErr := s.copywriter.GenerateCopy(ctx, analysis)
		updated, ok := s.store.UpdateIfToken(runID, token, func(r *model.Run) {
			if copyErr != nil {
				r.CopyError = copyErr.Error()
			} else {
				r.Copy = copyResult
			}
		})
		if ok {
			s.broadcastRun(updated)
		}
		if copyErr != nil {
			log.Printf("⚠️  [Pipeline] Listing copy failed (run continues): %v", copyErr)
		}
	}()

	// 플래닝 실패는 사이클 전체 실패. 분석 결과는 살아 있으니
	// analyzed로 되돌려서 재시도할 수 있게 한다.
	prompts, err := s.planner.Plan(ctx, analysis)
	if err != nil {
		<-copyDone
		reverted, ok := s.store.UpdateIfToken(runID, token, func(r *model.Run) {
			r.State = model.RunAnalyzed
			r.Error = err.Error()
			r.Images = []model.GeneratedImage{}
		})
		if ok {
			s.broadcastRun(reverted)
		}
		return err
	}

	// 렌더링 시작 전에 pending 플레이스홀더 10개를 순서대로 깔아둔다
	placeholders := make([]model.GeneratedImage, len(prompts))
	for i, prompt := range prompts {
		placeholders[i] = model.GeneratedImage{
			ID:     uuid.New().String(),
			Name:   prompt.Name,
			Status: model.StatusPending,
		}
	}
	snap, ok := s.store.UpdateIfToken(runID, token, func(r *model.Run) {
		r.Prompts = prompts
		r.Images = placeholders
	})
	if !ok {
		// 그 사이 새 사이클이 시작됨
		<-copyDone
		return nil
	}
	s.broadcastRun(snap)

	// 전체 병렬 렌더링, 전부 끝날 때까지 기다린다 (short-circuit 없음)
	var wg sync.WaitGroup
	for i := range prompts {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			s.renderOne(ctx, runID, token, index, prompts[index].Prompt, uploads, premium)
		}(i)
	}
	wg.Wait()
	<-copyDone

	// 무료 플랜은 결과와 무관하게 사이클당 정확히 1회 차감
	if !premium {
		s.usage.IncrementUsage()
	}

	final, ok := s.store.UpdateIfToken(runID, token, func(r *model.Run) {
		r.State = model.RunDone
	})
	if ok {
		s.broadcastRun(final)
	}

	log.Printf("🏁 [Pipeline] Generation finished for run %s", runID)
	return nil
}

// Regenerate - 목업 1장만 다시 생성. 한도는 다시 확인하지만 차감은 없다.
func (s *Service) Regenerate(ctx context.Context, runID, imageID string) (model.Run, error) {
	snap, err := s.store.Get(runID)
	if err != nil {
		return model.Run{}, err
	}
	if snap.Analysis == nil {
		return model.Run{}, model.ErrNotAnalyzed
	}
	if !s.usage.CanGenerate() {
		return model.Run{}, model.ErrLimitReached
	}

	index := -1
	for i, img := range snap.Images {
		if img.ID == imageID {
			index = i
			break
		}
	}
	if index == -1 || index >= len(snap.Prompts) {
		return model.Run{}, model.ErrImageNotFound
	}

	token := snap.Token
	pending, ok := s.store.UpdateIfToken(runID, token, func(r *model.Run) {
		r.Images[index].Status = model.StatusPending
		r.Images[index].Base64 = nil
	})
	if !ok {
		return model.Run{}, model.ErrRunNotFound
	}
	s.broadcastImage(runID, pending.Images[index])

	log.Printf("🎨 [Pipeline] Regenerating image %d (%s) for run %s", index, imageID, runID)
	s.renderOne(ctx, runID, token, index, snap.Prompts[index].Prompt, snap.Uploads, s.usage.IsPremium())

	return s.store.Get(runID)
}

// renderOne - 목업 1장 렌더 + 워터마크 + 상태 패치
func (s *Service) renderOne(ctx context.Context, runID, token string, index int, prompt string, uploads []model.EncodedImage, premium bool) {
	bound := mockup.BindImages(index, uploads)

	dataURI, err := s.renderer.Render(ctx, prompt, bound)
	if err != nil {
		log.Printf("❌ [Pipeline] Mockup %d failed: %v", index, err)
		s.patchImage(runID, token, index, func(img *model.GeneratedImage) {
			img.Status = model.StatusFailed
			img.Base64 = nil
		})
		return
	}

	if !premium {
		watermarked, wmErr := s.watermark.Apply(dataURI)
		if wmErr != nil {
			// 워터마크 실패는 원본으로 폴백
			log.Printf("⚠️  [Pipeline] Watermark failed for mockup %d, using original: %v", index, wmErr)
		} else {
			dataURI = watermarked
		}
	}

	s.patchImage(runID, token, index, func(img *model.GeneratedImage) {
		img.Status = model.StatusCompleted
		img.Base64 = &dataURI
	})
}

// patchImage - 세대 토큰이 유효할 때만 항목 하나를 갱신하고 이벤트 발행
func (s *Service) patchImage(runID, token string, index int, mutate func(img *model.GeneratedImage)) {
	updated, ok := s.store.UpdateIfToken(runID, token, func(r *model.Run) {
		if index < len(r.Images) {
			mutate(&r.Images[index])
		}
	})
	if !ok {
		log.Printf("⚠️  [Pipeline] Discarding stale result for run %s (index %d)", runID, index)
		return
	}
	if index < len(updated.Images) {
		s.broadcastImage(runID, updated.Images[index])
	}
}

func (s *Service) broadcastRun(run model.Run) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(Event{Type: "run.updated", RunID: run.ID, Run: &run})
}

func (s *Service) broadcastImage(runID string, image model.GeneratedImage) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(Event{Type: "image.updated", RunID: runID, Image: &image})
}

// Describe - 로그/디버그용 요약
func (s *Service) Describe(run model.Run) string {
	completed, failed := 0, 0
	for _, img := range run.Images {
		switch img.Status {
		case model.StatusCompleted:
			completed++
		case model.StatusFailed:
			failed++
		}
	}
	return fmt.Sprintf("run %s: state=%s images=%d (completed=%d failed=%d)",
		run.ID, run.State, len(run.Images), completed, failed)
}
