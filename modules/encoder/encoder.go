package encoder

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"etsy-optimizer-server/modules/common/model"
)

// MaxFiles - 한 번의 분석에 허용되는 업로드 개수
const MaxFiles = 5

// Upload - 멀티파트 폼에서 꺼낸 파일 하나
type Upload struct {
	Name   string
	Reader io.Reader
}

// Encode - 업로드 파일 하나를 API 전송용 바이트로 읽는다.
// PNG/JPEG만 허용하고, 타입은 실제 내용으로 스니핑한다 (파일명 확장자 무시).
func Encode(upload Upload) (model.EncodedImage, error) {
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return model.EncodedImage{}, fmt.Errorf("%w: %s: %v", model.ErrReadError, upload.Name, err)
	}
	if len(data) == 0 {
		return model.EncodedImage{}, fmt.Errorf("%w: %s: empty file", model.ErrReadError, upload.Name)
	}

	mimeType := http.DetectContentType(data)
	if mimeType != "image/png" && mimeType != "image/jpeg" {
		return model.EncodedImage{}, fmt.Errorf("%w: %s is %s", model.ErrUnsupportedMediaType, upload.Name, mimeType)
	}

	return model.EncodedImage{
		Data:     data,
		MimeType: mimeType,
	}, nil
}

// EncodeAll - 업로드 전체를 병렬 인코딩. 하나라도 실패하면 전체 실패 (부분 분석 없음).
func EncodeAll(ctx context.Context, uploads []Upload) ([]model.EncodedImage, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", model.ErrReadError)
	}
	if len(uploads) > MaxFiles {
		return nil, fmt.Errorf("%w: at most %d files allowed", model.ErrUnsupportedMediaType, MaxFiles)
	}

	encoded := make([]model.EncodedImage, len(uploads))
	g, _ := errgroup.WithContext(ctx)

	for i, upload := range uploads {
		i, upload := i, upload
		g.Go(func() error {
			img, err := Encode(upload)
			if err != nil {
				return err
			}
			encoded[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("📦 [Encoder] Encoded %d upload(s)", len(encoded))
	return encoded, nil
}
