package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/pipeline"
)

// Handler - 에셋 아카이브 다운로드 핸들러
type Handler struct {
	service  *Service
	pipeline *pipeline.Service
}

func NewHandler(service *Service, pipelineService *pipeline.Service) *Handler {
	return &Handler{
		service:  service,
		pipeline: pipelineService,
	}
}

// RegisterRoutes - 다운로드 경로 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/runs/{runId}/export", h.Download).Methods("GET")
}

// Download - GET /api/runs/{runId}/export
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runId"]

	run, err := h.pipeline.GetRun(runID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	archive, err := h.service.BuildArchive(run)
	if err != nil {
		log.Printf("❌ [Export] Archive build failed for run %s: %v", runID, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArchiveName))
	w.WriteHeader(http.StatusOK)
	w.Write(archive)
}
