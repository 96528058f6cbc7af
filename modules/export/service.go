package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"etsy-optimizer-server/modules/common/model"
	"etsy-optimizer-server/modules/common/utils"
)

// ArchiveName - 다운로드 파일명
const ArchiveName = "Etsy_Design_Optimizer_Assets.zip"

// webp 썸네일 품질 (리스팅 미리보기용 경량 사본)
const previewQuality = 80.0

// Service - Run의 완성 에셋을 zip 하나로 묶는다.
// 레이아웃:
//
//	generated_mockups/<Name>.png|jpg   완성된 목업 원본
//	previews/<Name>.webp               경량 미리보기 사본
//	listing_copy/title.txt 등          리스팅 카피
//	metadata.json                      분석 결과
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// BuildArchive - zip 바이트 생성. 완성 목업도 카피도 없으면 에러.
func (s *Service) BuildArchive(run model.Run) ([]byte, error) {
	completed := make([]model.GeneratedImage, 0, len(run.Images))
	for _, img := range run.Images {
		if img.Status == model.StatusCompleted && img.Base64 != nil {
			completed = append(completed, img)
		}
	}
	if len(completed) == 0 && run.Copy == nil {
		return nil, fmt.Errorf("no assets have been generated to download")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, img := range completed {
		data, mimeType, err := utils.ParseDataURI(*img.Base64)
		if err != nil {
			log.Printf("⚠️  [Export] Skipping image %s: %v", img.Name, err)
			continue
		}

		ext := "jpg"
		if mimeType == "image/png" {
			ext = "png"
		}
		name := sanitizeName(img.Name)

		if err := writeEntry(zw, fmt.Sprintf("generated_mockups/%s.%s", name, ext), data); err != nil {
			return nil, err
		}

		// 미리보기 webp는 있으면 좋은 것. 변환 실패는 건너뛴다.
		if preview, err := utils.ConvertImageToWebP(data, previewQuality); err != nil {
			log.Printf("⚠️  [Export] Preview conversion failed for %s: %v", img.Name, err)
		} else if err := writeEntry(zw, fmt.Sprintf("previews/%s.webp", name), preview); err != nil {
			return nil, err
		}
	}

	if run.Copy != nil {
		entries := map[string]string{
			"listing_copy/title.txt":       run.Copy.Title,
			"listing_copy/description.txt": run.Copy.Description,
			"listing_copy/tags.csv":        strings.Join(run.Copy.Tags, ","),
			"listing_copy/materials.csv":   strings.Join(run.Copy.Materials, ","),
		}
		for path, content := range entries {
			if err := writeEntry(zw, path, []byte(content)); err != nil {
				return nil, err
			}
		}
	}

	if run.Analysis != nil {
		metadata, err := json.MarshalIndent(run.Analysis, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode metadata: %w", err)
		}
		if err := writeEntry(zw, "metadata.json", metadata); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	log.Printf("📦 [Export] Archive built: %d mockup(s), %d bytes", len(completed), buf.Len())
	return buf.Bytes(), nil
}

// sanitizeName - 공백을 밑줄로 (파일명용)
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

func writeEntry(zw *zip.Writer, path string, content []byte) error {
	w, err := zw.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", path, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", path, err)
	}
	return nil
}
