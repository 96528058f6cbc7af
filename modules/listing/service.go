package listing

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/gemini"
	"etsy-optimizer-server/modules/common/model"
)

// Etsy 필드 제약
const (
	TagCount     = 13
	MaxTagLength = 20
)

// Service - Etsy 리스팅 카피 생성
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

// GenerateCopy - 분석 결과 기반으로 타이틀/설명/태그/재료 생성
func (s *Service) GenerateCopy(ctx context.Context, analysis *model.AnalysisResult) (*model.CopyResult, error) {
	category := ParseCategory(analysis.ProductType)
	log.Printf("📝 [Listing] Generating copy (category: %s)...", category)

	prompt := buildCopyPrompt(analysis, category)
	parts := []*genai.Part{genai.NewPartFromText(prompt)}

	var result model.CopyResult
	if err := gemini.GenerateJSON(ctx, s.client, s.modelName, parts, copySchema, &result); err != nil {
		return nil, fmt.Errorf("listing copy generation failed: %w", err)
	}

	if err := validateCopy(&result); err != nil {
		return nil, err
	}

	log.Printf("✅ [Listing] Copy generated: %s (%d tags, %d materials)",
		gemini.Truncate(result.Title, 60), len(result.Tags), len(result.Materials))
	return &result, nil
}

// validateCopy - Etsy 필드 제약 검사. 스키마 지시를 어긴 응답은
// 형식 위반으로 취급한다 (태그 13개, 태그/재료 20자 이내).
func validateCopy(result *model.CopyResult) error {
	if result.Title == "" {
		return fmt.Errorf("%w: empty title", model.ErrMalformedModelResponse)
	}
	if len(result.Tags) != TagCount {
		return fmt.Errorf("%w: expected %d tags, got %d",
			model.ErrMalformedModelResponse, TagCount, len(result.Tags))
	}
	for _, tag := range result.Tags {
		if tag == "" || len(tag) > MaxTagLength {
			return fmt.Errorf("%w: invalid tag %q", model.ErrMalformedModelResponse, tag)
		}
	}
	for _, material := range result.Materials {
		if material == "" || len(material) > MaxTagLength {
			return fmt.Errorf("%w: invalid material %q", model.ErrMalformedModelResponse, material)
		}
	}
	return nil
}
