package analysis

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/gemini"
	"etsy-optimizer-server/modules/common/model"
)

// Service - 제품 이미지 비전 분석
type Service struct {
	client    *genai.Client
	modelName string
}

func NewService(client *genai.Client) *Service {
	return &Service{
		client:    client,
		modelName: config.GetConfig().GeminiTextModel,
	}
}

// Analyze - 업로드 이미지 1~5장을 분석해서 구조화된 결과를 돌려준다.
// 이미지 여러 장은 같은 제품의 변형으로 함께 넘긴다.
func (s *Service) Analyze(ctx context.Context, images []model.EncodedImage) (*model.AnalysisResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images to analyze", model.ErrReadError)
	}

	log.Printf("🔍 [Analysis] Analyzing %d image(s)...", len(images))

	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MimeType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(analysisPrompt))

	var result model.AnalysisResult
	if err := gemini.GenerateJSON(ctx, s.client, s.modelName, parts, analysisSchema, &result); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	log.Printf("✅ [Analysis] Theme: %s / Type: %s / Event: %s",
		gemini.Truncate(result.Theme, 60), result.ProductType, result.EventType)
	return &result, nil
}
