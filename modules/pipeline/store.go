package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"etsy-optimizer-server/modules/common/model"
)

// Store - 인메모리 Run 저장소. 모든 접근을 뮤텍스로 직렬화하고
// 밖으로는 항상 스냅샷 복사본만 내보낸다.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*model.Run
}

func NewStore() *Store {
	return &Store{
		runs: make(map[string]*model.Run),
	}
}

// Create - 새 Run 생성
func (s *Store) Create(uploads []model.EncodedImage) model.Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	run := &model.Run{
		ID:        uuid.New().String(),
		State:     model.RunIdle,
		Images:    []model.GeneratedImage{},
		Uploads:   uploads,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.runs[run.ID] = run
	return snapshot(run)
}

// Get - Run 스냅샷 조회
func (s *Store) Get(runID string) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return model.Run{}, model.ErrRunNotFound
	}
	return snapshot(run), nil
}

// Update - Run을 잠금 아래에서 수정하고 스냅샷 반환
func (s *Store) Update(runID string, mutate func(run *model.Run)) (model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return model.Run{}, model.ErrRunNotFound
	}

	mutate(run)
	run.UpdatedAt = time.Now()
	return snapshot(run), nil
}

// UpdateIfToken - Run의 세대 토큰이 일치할 때만 수정.
// 이전 생성 사이클에서 늦게 도착한 결과를 버리는 용도.
func (s *Store) UpdateIfToken(runID, token string, mutate func(run *model.Run)) (model.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok || run.Token != token {
		return model.Run{}, false
	}

	mutate(run)
	run.UpdatedAt = time.Now()
	return snapshot(run), true
}

// snapshot - 호출자에게 내보낼 복사본 (슬라이스까지 복사)
func snapshot(run *model.Run) model.Run {
	out := *run
	out.Images = append([]model.GeneratedImage(nil), run.Images...)
	out.Prompts = append([]model.MockupPrompt(nil), run.Prompts...)
	if run.Analysis != nil {
		analysis := *run.Analysis
		out.Analysis = &analysis
	}
	if run.Copy != nil {
		copyResult := *run.Copy
		out.Copy = &copyResult
	}
	return out
}
