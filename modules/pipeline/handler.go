package pipeline

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/encoder"
)

// 멀티파트 업로드 메모리 상한 (5장 x ~10MB 여유)
const maxUploadMemory = 64 << 20

// Handler - Run 라이프사이클 HTTP 핸들러
type Handler struct {
	service *Service
	worker  *Worker
}

func NewHandler(service *Service, worker *Worker) *Handler {
	return &Handler{
		service: service,
		worker:  worker,
	}
}

// RegisterRoutes - mux 라우터에 Run 경로 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/runs/analyze", h.AnalyzeRun).Methods("POST")
	r.HandleFunc("/api/runs/{runId}", h.GetRun).Methods("GET")
	r.HandleFunc("/api/runs/{runId}/analysis", h.UpdateAnalysis).Methods("PATCH")
	r.HandleFunc("/api/runs/{runId}/generate", h.Generate).Methods("POST")
	r.HandleFunc("/api/runs/{runId}/images/{imageId}/regenerate", h.Regenerate).Methods("POST")
}

// AnalyzeRun - POST /api/runs/analyze (multipart, field "images")
func (h *Handler) AnalyzeRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["images"]
	uploads := make([]encoder.Upload, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to open uploaded file")
			return
		}
		defer file.Close()
		uploads = append(uploads, encoder.Upload{Name: fileHeader.Filename, Reader: file})
	}

	encoded, err := encoder.EncodeAll(r.Context(), uploads)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	run, err := h.service.Analyze(r.Context(), encoded)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// GetRun - GET /api/runs/{runId}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(mux.Vars(r)["runId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// UpdateAnalysis - PATCH /api/runs/{runId}/analysis
func (h *Handler) UpdateAnalysis(w http.ResponseWriter, r *http.Request) {
	var patch model.AnalysisResult
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.service.UpdateAnalysis(mux.Vars(r)["runId"], patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Generate - POST /api/runs/{runId}/generate
// 전제조건은 여기서 바로 확인하고, 실제 생성은 큐로 넘긴다.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runId"]

	if err := h.service.CheckGenerate(runID); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := h.worker.Enqueue(r.Context(), runID); err != nil {
		log.Printf("❌ [Pipeline] Enqueue failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to queue generation")
		return
	}

	run, err := h.service.GetRun(runID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, run)
}

// Regenerate - POST /api/runs/{runId}/images/{imageId}/regenerate
func (h *Handler) Regenerate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	run, err := h.service.Regenerate(r.Context(), vars["runId"], vars["imageId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// ErrorResponse - 실패 응답 바디
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

// writeDomainError - 도메인 에러를 HTTP 상태코드로 매핑
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrRunNotFound), errors.Is(err, model.ErrImageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrLimitReached):
		status = http.StatusTooManyRequests
	case errors.Is(err, model.ErrNotAnalyzed), errors.Is(err, ErrGenerationInProgress):
		status = http.StatusConflict
	case errors.Is(err, model.ErrUnsupportedMediaType):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, model.ErrReadError):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrMalformedModelResponse), errors.Is(err, model.ErrNoImageReturned):
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error())
}
