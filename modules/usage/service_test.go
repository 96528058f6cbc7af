package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etsy-optimizer-server/modules/common/model"
)

func fixedClock(day string) func() time.Time {
	t, _ := time.Parse("2006-01-02", day)
	return func() time.Time { return t }
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, 3)
	svc.SetClock(fixedClock("2026-03-01"))
	return svc
}

func TestDefaultStateIsFree(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	state := svc.GetState()
	assert.Equal(t, model.PlanFree, state.Plan)
	assert.Equal(t, 0, state.DailyUsage)
	assert.Equal(t, "2026-03-01", state.LastUsageDate)
	assert.False(t, state.IsPremium())
}

func TestCorruptStateTreatedAsAbsent(t *testing.T) {
	repo := NewMemoryRepository()
	repo.Save(model.UserState{Plan: model.PlanPro, DailyUsage: 99})
	repo.Corrupt = true

	svc := newTestService(repo)

	state := svc.GetState()
	assert.Equal(t, model.PlanFree, state.Plan)
	assert.Equal(t, 0, state.DailyUsage)
	assert.True(t, svc.CanGenerate())
}

func TestFreeLimitGating(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	for i := 0; i < 3; i++ {
		require.True(t, svc.CanGenerate(), "generation %d should be allowed", i+1)
		svc.IncrementUsage()
	}

	assert.False(t, svc.CanGenerate())
	assert.Equal(t, 0, svc.Remaining())
}

func TestDailyResetOnDateChange(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)

	svc.IncrementUsage()
	svc.IncrementUsage()
	svc.IncrementUsage()
	require.False(t, svc.CanGenerate())

	// 다음 날
	svc.SetClock(fixedClock("2026-03-02"))

	state := svc.GetState()
	assert.Equal(t, 0, state.DailyUsage)
	assert.Equal(t, "2026-03-02", state.LastUsageDate)
	assert.True(t, svc.CanGenerate())
	assert.Equal(t, 3, svc.Remaining())

	// 리셋이 영속화되었는지
	persisted, stored, err := repo.Load()
	require.NoError(t, err)
	require.True(t, stored)
	assert.Equal(t, 0, persisted.DailyUsage)
	assert.Equal(t, "2026-03-02", persisted.LastUsageDate)
}

func TestPremiumUnlimited(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	require.NoError(t, svc.Upgrade(model.PlanPro, "buyer@example.com"))

	for i := 0; i < 10; i++ {
		require.True(t, svc.CanGenerate())
		svc.IncrementUsage()
	}

	assert.Equal(t, Unlimited, svc.Remaining())
	assert.True(t, svc.IsPremium())

	state := svc.GetState()
	assert.Equal(t, "buyer@example.com", state.Email)
}

func TestUpgradeRejectsUnknownPlan(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	assert.Error(t, svc.Upgrade("enterprise", ""))
	assert.Equal(t, model.PlanFree, svc.GetState().Plan)
}

func TestNoDowngradeFromLifetime(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	require.NoError(t, svc.Upgrade(model.PlanLifetime, ""))

	require.NoError(t, svc.Upgrade(model.PlanPro, ""))
	assert.Equal(t, model.PlanLifetime, svc.GetState().Plan)
}

func TestUpgradePreservesDailyUsage(t *testing.T) {
	svc := newTestService(NewMemoryRepository())
	svc.IncrementUsage()
	svc.IncrementUsage()

	require.NoError(t, svc.Upgrade(model.PlanPro, ""))

	state := svc.GetState()
	assert.Equal(t, 2, state.DailyUsage)
	assert.Equal(t, Unlimited, svc.Remaining())
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := t.TempDir() + "/state/user_state.json"
	repo := NewFileRepository(path)

	_, stored, err := repo.Load()
	require.NoError(t, err)
	assert.False(t, stored)

	want := model.UserState{
		Plan:          model.PlanPro,
		DailyUsage:    2,
		LastUsageDate: "2026-03-01",
		Email:         "buyer@example.com",
	}
	require.NoError(t, repo.Save(want))

	got, stored, err := repo.Load()
	require.NoError(t, err)
	require.True(t, stored)
	assert.Equal(t, want, got)
}
