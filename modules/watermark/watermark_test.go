package watermark

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etsy-optimizer-server/modules/common/model"
)

func solidDataURI(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeResult(t *testing.T, dataURI string) image.Image {
	t.Helper()
	payload := strings.TrimPrefix(dataURI, "data:image/png;base64,")
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestApplyPreservesDimensions(t *testing.T) {
	svc := NewService("etsydesignoptimizer.com")

	out, err := svc.Apply(solidDataURI(t, 300, 200, color.RGBA{R: 200, G: 100, B: 50, A: 255}))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	img := decodeResult(t, out)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestApplyDarkensBottomBand(t *testing.T) {
	svc := NewService("etsydesignoptimizer.com")
	base := color.RGBA{R: 200, G: 200, B: 200, A: 255}

	out, err := svc.Apply(solidDataURI(t, 400, 400, base))
	require.NoError(t, err)
	img := decodeResult(t, out)

	// 밴드 맨 아래 줄은 원본보다 어두워야 한다
	r, g, b, _ := img.At(10, 399).RGBA()
	assert.Less(t, r>>8, uint32(base.R))
	assert.Less(t, g>>8, uint32(base.G))
	assert.Less(t, b>>8, uint32(base.B))
}

func TestApplyChangesPixelsOutsideBand(t *testing.T) {
	svc := NewService("etsydesignoptimizer.com")
	base := color.RGBA{R: 10, G: 10, B: 10, A: 255}

	out, err := svc.Apply(solidDataURI(t, 400, 400, base))
	require.NoError(t, err)
	img := decodeResult(t, out)

	// 대각선 타일 때문에 상단 영역 어딘가는 원본과 달라야 한다
	changed := false
	for y := 0; y < 300 && !changed; y++ {
		for x := 0; x < 400 && !changed; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if uint8(r>>8) != base.R {
				changed = true
			}
		}
	}
	assert.True(t, changed, "diagonal tile layer left the image untouched")
}

func TestApplyRejectsGarbage(t *testing.T) {
	svc := NewService("etsydesignoptimizer.com")

	_, err := svc.Apply("not a data uri")
	assert.ErrorIs(t, err, model.ErrWatermarkRender)

	_, err = svc.Apply("data:image/png;base64,!!!not-base64!!!")
	assert.ErrorIs(t, err, model.ErrWatermarkRender)

	_, err = svc.Apply("data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("junk")))
	assert.ErrorIs(t, err, model.ErrWatermarkRender)
}

func TestTextScale(t *testing.T) {
	assert.Equal(t, 1, textScale(10, 12))  // 최소값으로 클램프
	assert.Equal(t, 2, textScale(24, 24))  // 24px ≈ 13*2
	assert.Equal(t, 3, textScale(40, 24))  // 40px ≈ 13*3
}
