package usage

import (
	"encoding/json"
	"net/http"
)

// Handler - 사용량/플랜 조회 HTTP 핸들러
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UsageResponse - GET /api/usage 응답
type UsageResponse struct {
	Plan       string `json:"plan"`
	DailyUsage int    `json:"dailyUsage"`
	Remaining  int    `json:"remaining"` // -1 = unlimited
	IsPremium  bool   `json:"isPremium"`
	Email      string `json:"email,omitempty"`
}

// GetUsage - 현재 플랜과 남은 생성 횟수 조회
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	state := h.service.GetState()

	resp := UsageResponse{
		Plan:       state.Plan,
		DailyUsage: state.DailyUsage,
		Remaining:  h.service.Remaining(),
		IsPremium:  state.IsPremium(),
		Email:      state.Email,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
