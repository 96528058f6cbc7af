package usage

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/model"
)

// SupabaseRepository - Supabase 테이블 백엔드 (SUPABASE_URL 설정 시 사용)
// optimizer_user_state 테이블에 프로필당 1행을 유지한다.
type SupabaseRepository struct {
	client    *supabase.Client
	profileID string
}

type userStateRow struct {
	ProfileID      string `json:"profile_id"`
	Plan           string `json:"plan"`
	DailyUsage     int    `json:"daily_usage"`
	LastUsageDate  string `json:"last_usage_date"`
	Email          string `json:"email,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

func NewSupabaseRepository(profileID string) (*SupabaseRepository, error) {
	cfg := config.GetConfig()

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	log.Println("✅ [Usage] Supabase repository initialized")
	return &SupabaseRepository{
		client:    client,
		profileID: profileID,
	}, nil
}

func (r *SupabaseRepository) Load() (model.UserState, bool, error) {
	var rows []userStateRow

	data, _, err := r.client.From("optimizer_user_state").
		Select("*", "exact", false).
		Eq("profile_id", r.profileID).
		Execute()
	if err != nil {
		return model.UserState{}, false, fmt.Errorf("failed to query user state: %w", err)
	}

	if err := json.Unmarshal(data, &rows); err != nil {
		return model.UserState{}, false, fmt.Errorf("failed to parse user state rows: %w", err)
	}

	if len(rows) == 0 {
		return model.UserState{}, false, nil
	}

	row := rows[0]
	return model.UserState{
		Plan:           row.Plan,
		DailyUsage:     row.DailyUsage,
		LastUsageDate:  row.LastUsageDate,
		Email:          row.Email,
		SubscriptionID: row.SubscriptionID,
	}, true, nil
}

func (r *SupabaseRepository) Save(state model.UserState) error {
	row := userStateRow{
		ProfileID:      r.profileID,
		Plan:           state.Plan,
		DailyUsage:     state.DailyUsage,
		LastUsageDate:  state.LastUsageDate,
		Email:          state.Email,
		SubscriptionID: state.SubscriptionID,
	}

	_, _, err := r.client.From("optimizer_user_state").
		Insert(row, true, "profile_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert user state: %w", err)
	}
	return nil
}
