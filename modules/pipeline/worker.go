package pipeline

import (
	"context"
	"fmt"
	"log"

	goredis "github.com/redis/go-redis/v9"

	redisq "etsy-optimizer-server/modules/common/redis"
)

// Worker - Redis 큐에서 생성 Run을 꺼내 처리.
// Redis가 없으면 인프로세스 고루틴으로 바로 처리한다.
type Worker struct {
	rdb     *goredis.Client
	service *Service
}

func NewWorker(rdb *goredis.Client, service *Service) *Worker {
	return &Worker{
		rdb:     rdb,
		service: service,
	}
}

// Enqueue - 생성 Run을 큐에 넣는다
func (w *Worker) Enqueue(ctx context.Context, runID string) error {
	if w.rdb == nil {
		// Redis 없는 로컬 모드
		go w.process(context.Background(), runID)
		return nil
	}

	if err := w.rdb.LPush(ctx, redisq.RunQueue, runID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue run: %w", err)
	}
	log.Printf("📦 [Worker] Run %s enqueued", runID)
	return nil
}

// Start - BRPOP 루프 시작. ctx 취소로 멈춘다.
func (w *Worker) Start(ctx context.Context) {
	if w.rdb == nil {
		log.Println("⚠️  [Worker] Redis not available, running in-process mode")
		return
	}

	go func() {
		log.Println("✅ [Worker] Queue worker started")
		for {
			result, err := w.rdb.BRPop(ctx, 0, redisq.RunQueue).Result()
			if err != nil {
				if ctx.Err() != nil {
					log.Println("🏁 [Worker] Queue worker stopped")
					return
				}
				log.Printf("❌ [Worker] BRPOP error: %v", err)
				continue
			}
			if len(result) < 2 {
				continue
			}
			go w.process(ctx, result[1])
		}
	}()
}

func (w *Worker) process(ctx context.Context, runID string) {
	log.Printf("🎨 [Worker] Processing run %s", runID)
	if err := w.service.GenerateAssets(ctx, runID); err != nil {
		log.Printf("❌ [Worker] Run %s failed: %v", runID, err)
		return
	}
	if run, err := w.service.GetRun(runID); err == nil {
		log.Printf("✅ [Worker] %s", w.service.Describe(run))
	}
}
