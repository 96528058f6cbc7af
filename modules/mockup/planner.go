package mockup

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/gemini"
	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/listing"
)

// Planner - 분석 결과에서 목업 프롬프트 10개를 뽑는다
type Planner struct {
	client    *genai.Client
	modelName string
}

func NewPlanner(client *genai.Client) *Planner {
	return &Planner{
		client:    client,
		modelName: config.GetConfig().GeminiTextModel,
	}
}

// plannerResponse - 스키마의 최상위 래퍼
type plannerResponse struct {
	Prompts []model.MockupPrompt `json:"prompts"`
}

// Plan - 정확히 10개의 목업 프롬프트를 반환. 10개가 아니면 실패 처리한다
// (생성 단계가 플레이스홀더 10개를 전제로 돌기 때문).
func (p *Planner) Plan(ctx context.Context, analysis *model.AnalysisResult) ([]model.MockupPrompt, error) {
	category := listing.ParseCategory(analysis.ProductType)
	log.Printf("🎨 [Mockup] Planning %d mockup prompts (category: %s)...", PromptCount, category)

	prompt := buildPlannerPrompt(analysis, category)
	parts := []*genai.Part{genai.NewPartFromText(prompt)}

	var resp plannerResponse
	if err := gemini.GenerateJSON(ctx, p.client, p.modelName, parts, plannerSchema, &resp); err != nil {
		return nil, fmt.Errorf("mockup planning failed: %w", err)
	}

	if len(resp.Prompts) != PromptCount {
		return nil, fmt.Errorf("%w: expected %d prompts, got %d",
			model.ErrMalformedModelResponse, PromptCount, len(resp.Prompts))
	}
	for i, mp := range resp.Prompts {
		if mp.Name == "" || mp.Prompt == "" {
			return nil, fmt.Errorf("%w: prompt %d is missing name or prompt", model.ErrMalformedModelResponse, i)
		}
	}

	log.Printf("✅ [Mockup] Planned %d prompts", len(resp.Prompts))
	return resp.Prompts, nil
}
