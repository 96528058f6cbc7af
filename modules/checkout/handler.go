package checkout

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler - 결제 HTTP 핸들러
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes - 결제 경로 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/checkout", h.StartCheckout).Methods("POST")
	r.HandleFunc("/api/checkout/confirm", h.ConfirmCheckout).Methods("GET")
}

// CheckoutRequest - POST /api/checkout 요청
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// CheckoutResponse - 결제 페이지 리다이렉트 URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// StartCheckout - 결제 시작, 리다이렉트 URL 반환
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	url, err := h.service.CheckoutURL(req.Plan)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{URL: url})
}

// ConfirmCheckout - GET /api/checkout/confirm?plan=pro&session_id=...
// 결제 페이지에서 복귀했을 때 1회 호출된다.
func (h *Handler) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	plan := r.URL.Query().Get("plan")
	sessionID := r.URL.Query().Get("session_id")

	state, err := h.service.Confirm(r.Context(), plan, sessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": message})
}
