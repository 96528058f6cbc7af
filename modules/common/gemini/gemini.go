package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/model"
)

// NewClient - Genai 클라이언트 초기화
func NewClient(ctx context.Context) (*genai.Client, error) {
	cfg := config.GetConfig()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Genai client: %w", err)
	}
	return client, nil
}

// GenerateJSON - 구조화 응답 호출. ResponseSchema에 맞는 JSON을 out에 언마샬한다.
// 모델이 스키마를 벗어난 응답을 주면 ErrMalformedModelResponse를 반환한다.
func GenerateJSON(ctx context.Context, client *genai.Client, modelName string, parts []*genai.Part, schema *genai.Schema, out interface{}) error {
	content := &genai.Content{Parts: parts}

	result, err := client.Models.GenerateContent(
		ctx,
		modelName,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		},
	)
	if err != nil {
		return fmt.Errorf("Gemini API call failed: %w", err)
	}

	jsonText := collectText(result)
	if jsonText == "" {
		return fmt.Errorf("%w: empty response", model.ErrMalformedModelResponse)
	}

	if err := json.Unmarshal([]byte(jsonText), out); err != nil {
		log.Printf("❌ [Gemini] Failed to parse structured response: %v (preview: %s)",
			err, Truncate(jsonText, 120))
		return fmt.Errorf("%w: %v", model.ErrMalformedModelResponse, err)
	}

	return nil
}

// ExtractInlineImage - 응답 candidates에서 첫 번째 인라인 이미지를 꺼낸다.
func ExtractInlineImage(result *genai.GenerateContentResponse) ([]byte, string, bool) {
	if result == nil {
		return nil, "", false
	}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return part.InlineData.Data, mimeType, true
			}
		}
	}
	return nil, "", false
}

// collectText - 텍스트 파트 전부 이어붙이기
func collectText(result *genai.GenerateContentResponse) string {
	if result == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// Truncate - 로그용 문자열 자르기
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
