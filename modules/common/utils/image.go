package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"strings"

	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ParseDataURI - data URI에서 MIME 타입과 원본 바이트 분리
func ParseDataURI(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, payload, found := strings.Cut(dataURI, ";base64,")
	if !found {
		return nil, "", fmt.Errorf("data URI is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI payload: %w", err)
	}
	return data, strings.TrimPrefix(meta, "data:"), nil
}

// ConvertImageToWebP - PNG/JPEG 바이너리를 WebP로 변환
func ConvertImageToWebP(data []byte, quality float32) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	webpData := webpBuffer.Bytes()
	log.Printf("✅ Image converted to WebP: %d bytes → %d bytes (%.1f%% reduction)",
		len(data), len(webpData),
		float64(len(data)-len(webpData))/float64(len(data))*100)
	return webpData, nil
}
