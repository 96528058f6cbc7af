package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"etsy-optimizer-server/modules/analysis"
	"etsy-optimizer-server/modules/checkout"
	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/gemini"
	commonredis "etsy-optimizer-server/modules/common/redis"
	"etsy-optimizer-server/modules/export"
	"etsy-optimizer-server/modules/listing"
	"etsy-optimizer-server/modules/mockup"
	"etsy-optimizer-server/modules/pipeline"
	"etsy-optimizer-server/modules/usage"
	"etsy-optimizer-server/modules/watermark"
)

// CORS 미들웨어
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "etsy-optimizer-server",
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Gemini 클라이언트
	genaiClient, err := gemini.NewClient(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to create Gemini client: %v", err)
	}

	// Redis (없어도 인프로세스 모드로 동작)
	rdb := commonredis.Connect(cfg)
	if rdb == nil {
		log.Println("⚠️  Redis unavailable, generation runs in-process")
	}

	// 서비스 조립
	usageService := usage.NewServiceFromConfig()
	analysisService := analysis.NewService(genaiClient)
	listingService := listing.NewService(genaiClient)
	planner := mockup.NewPlanner(genaiClient)
	generator := mockup.NewGenerator(genaiClient)
	watermarkService := watermark.NewService(cfg.SiteName)

	hub := pipeline.NewHub()
	store := pipeline.NewStore()
	pipelineService := pipeline.NewService(
		store,
		usageService,
		analysisService,
		listingService,
		planner,
		generator,
		watermarkService,
		hub,
	)

	worker := pipeline.NewWorker(rdb, pipelineService)
	worker.Start(ctx)

	exportService := export.NewService()
	checkoutService := checkout.NewServiceFromConfig(usageService)

	// 라우터 설정
	r := mux.NewRouter()
	r.Use(enableCORS)

	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWS)
	r.HandleFunc("/api/usage", usage.NewHandler(usageService).GetUsage).Methods("GET")

	pipeline.NewHandler(pipelineService, worker).RegisterRoutes(r)
	export.NewHandler(exportService, pipelineService).RegisterRoutes(r)
	checkout.NewHandler(checkoutService).RegisterRoutes(r)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
