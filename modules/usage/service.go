package usage

import (
	"fmt"
	"log"
	"sync"
	"time"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/model"
)

// Unlimited - 유료 플랜의 남은 횟수 표현
const Unlimited = -1

// Service - 플랜/일일 사용량 관리.
// 읽기/쓰기 전부 뮤텍스로 직렬화해서 torn read가 없도록 한다.
type Service struct {
	mu    sync.Mutex
	repo  Repository
	limit int
	now   func() time.Time
}

func NewService(repo Repository, dailyFreeLimit int) *Service {
	return &Service{
		repo:  repo,
		limit: dailyFreeLimit,
		now:   time.Now,
	}
}

// NewServiceFromConfig - 설정에 따라 저장 백엔드 선택
func NewServiceFromConfig() *Service {
	cfg := config.GetConfig()

	var repo Repository
	if cfg.SupabaseURL != "" {
		supaRepo, err := NewSupabaseRepository("default")
		if err != nil {
			log.Printf("⚠️  [Usage] Supabase repository unavailable, falling back to file: %v", err)
			repo = NewFileRepository(cfg.UserStatePath)
		} else {
			repo = supaRepo
		}
	} else {
		repo = NewFileRepository(cfg.UserStatePath)
	}

	return NewService(repo, cfg.DailyFreeLimit)
}

// GetState - 저장된 상태 조회. 날짜가 바뀌었으면 카운터를 리셋하고,
// 저장된 게 없거나 깨져 있으면 기본 free 상태를 돌려준다. 절대 실패하지 않는다.
func (s *Service) GetState() model.UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Service) loadLocked() model.UserState {
	today := s.today()

	state, stored, err := s.repo.Load()
	if err != nil {
		// 깨진 상태는 없는 것으로 취급
		log.Printf("⚠️  [Usage] Error reading user state: %v", err)
		stored = false
	}

	if !stored {
		return model.UserState{
			Plan:          model.PlanFree,
			DailyUsage:    0,
			LastUsageDate: today,
		}
	}

	// 날짜가 바뀌면 일일 사용량 리셋
	if state.LastUsageDate != today {
		state.DailyUsage = 0
		state.LastUsageDate = today
		s.saveLocked(state)
	}

	return state
}

func (s *Service) saveLocked(state model.UserState) {
	if err := s.repo.Save(state); err != nil {
		log.Printf("⚠️  [Usage] Error saving user state: %v", err)
	}
}

// CanGenerate - 유료 플랜은 무제한, free는 하루 한도 이내일 때만
func (s *Service) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadLocked()
	if state.IsPremium() {
		return true
	}
	return state.DailyUsage < s.limit
}

// Remaining - 남은 생성 횟수. 유료 플랜은 Unlimited(-1).
func (s *Service) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadLocked()
	if state.IsPremium() {
		return Unlimited
	}
	remaining := s.limit - state.DailyUsage
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// IncrementUsage - 사용량 1 증가 후 즉시 영속화
func (s *Service) IncrementUsage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadLocked()
	state.DailyUsage++
	state.LastUsageDate = s.today()
	s.saveLocked(state)

	log.Printf("📊 [Usage] Daily usage incremented: %d (plan: %s)", state.DailyUsage, state.Plan)
}

// Upgrade - 플랜 업그레이드 (단방향, 다운그레이드 없음)
func (s *Service) Upgrade(plan, email string) error {
	if plan != model.PlanPro && plan != model.PlanLifetime {
		return fmt.Errorf("invalid plan: %s", plan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadLocked()
	// lifetime에서 pro로는 내려가지 않는다
	if state.Plan == model.PlanLifetime && plan == model.PlanPro {
		log.Printf("⚠️  [Usage] Ignoring downgrade attempt: lifetime → pro")
		return nil
	}

	state.Plan = plan
	if email != "" {
		state.Email = email
	}
	s.saveLocked(state)

	log.Printf("✅ [Usage] Plan upgraded to: %s", plan)
	return nil
}

// SetSubscriptionID - 결제 확인 시 구독 식별자 기록
func (s *Service) SetSubscriptionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadLocked()
	state.SubscriptionID = id
	s.saveLocked(state)
}

// SetEmail - 이메일 저장
func (s *Service) SetEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.loadLocked()
	state.Email = email
	s.saveLocked(state)
}

// IsPremium - 워터마크 적용 여부 판단용
func (s *Service) IsPremium() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked().IsPremium()
}

// SetClock - 테스트에서 날짜 전환을 흉내내기 위한 훅
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}
