package mockup

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"

	"google.golang.org/genai"

	"etsy-optimizer-server/modules/common/config"
	"etsy-optimizer-server/modules/common/gemini"
	"etsy-optimizer-server/modules/common/model"
)

// Etsy 리스팅 사진은 정사각형이 기본
const mockupAspectRatio = "1:1"

// Generator - 목업 이미지 1장 렌더링
type Generator struct {
	client    *genai.Client
	modelName string
}

func NewGenerator(client *genai.Client) *Generator {
	return &Generator{
		client:    client,
		modelName: config.GetConfig().GeminiImageModel,
	}
}

// BindImages - 목업 i번이 참조할 업로드 이미지 선택.
// 0번(히어로 샷)은 업로드 전체를 번들로 받고,
// 나머지는 업로드를 라운드로빈으로 하나씩 받는다.
func BindImages(index int, uploads []model.EncodedImage) []model.EncodedImage {
	if len(uploads) == 0 {
		return nil
	}
	if index == 0 {
		return uploads
	}
	return []model.EncodedImage{uploads[(index-1)%len(uploads)]}
}

// Render - 프롬프트 1개로 목업 1장을 생성해서 data URI로 반환.
// 모델이 이미지 파트를 돌려주지 않으면 ErrNoImageReturned.
func (g *Generator) Render(ctx context.Context, prompt string, images []model.EncodedImage) (string, error) {
	parts := make([]*genai.Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: img.MimeType,
				Data:     img.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(buildRenderPrompt(prompt, len(images))))

	content := &genai.Content{Parts: parts}

	log.Printf("📤 [Mockup] Sending render request with %d image part(s)...", len(images))
	result, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: mockupAspectRatio,
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	data, mimeType, ok := gemini.ExtractInlineImage(result)
	if !ok {
		return "", model.ErrNoImageReturned
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
