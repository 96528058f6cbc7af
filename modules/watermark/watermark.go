package watermark

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"etsy-optimizer-server/modules/common/model"
)

// 무료 플랜 이미지에 얹는 워터마크 레이어:
// 대각선 타일 텍스트 + 하단 그라데이션 밴드 + 업그레이드 안내 문구.
const (
	tileText    = "ETSY DESIGN OPTIMIZER"
	captionText = "Upgrade to Pro for watermark-free images"

	tileOpacity   = 0.15
	tileAngle     = -math.Pi / 6 // -30도
	shadowOpacity = 0.5
)

// Service - 워터마크 렌더러
type Service struct {
	siteName string
}

func NewService(siteName string) *Service {
	return &Service{siteName: siteName}
}

// Apply - data URI 이미지에 워터마크를 입혀서 PNG data URI로 반환.
// 원본 크기는 유지한다.
func (s *Service) Apply(dataURI string) (string, error) {
	src, err := decodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrWatermarkRender, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Src)

	bandHeight := int(math.Max(60, float64(h)*0.08))
	if bandHeight > h {
		bandHeight = h
	}

	drawGradientBand(canvas, bandHeight)
	drawDiagonalTiles(canvas)
	s.drawCaptions(canvas, bandHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrWatermarkRender, err)
	}

	log.Printf("💧 [Watermark] Applied watermark (%dx%d)", w, h)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURI - data URI에서 이미지 디코딩 (PNG/JPEG)
func decodeDataURI(dataURI string) (image.Image, error) {
	_, payload, found := strings.Cut(dataURI, ";base64,")
	if !found || !strings.HasPrefix(dataURI, "data:image/") {
		return nil, fmt.Errorf("not an image data URI")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// drawGradientBand - 하단에 투명→검정 그라데이션 밴드
func drawGradientBand(canvas *image.RGBA, bandHeight int) {
	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	top := h - bandHeight

	for y := top; y < h; y++ {
		t := float64(y-top) / float64(bandHeight)

		// 정지점: 0 → 투명, 0.3 → 0.3, 1.0 → 0.5
		var alpha float64
		if t < 0.3 {
			alpha = (t / 0.3) * 0.3
		} else {
			alpha = 0.3 + (t-0.3)/0.7*0.2
		}

		for x := 0; x < w; x++ {
			blendPixel(canvas, x, y, 0, 0, 0, alpha)
		}
	}
}

// drawDiagonalTiles - -30도 기울어진 사이트명 타일을 전체에 반복
func drawDiagonalTiles(canvas *image.RGBA) {
	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := textScale(float64(w)*0.04, 24)
	stamp := renderText(tileText, scale)
	stampW := stamp.Bounds().Dx()
	stampH := stamp.Bounds().Dy()

	spacing := math.Max(200, float64(w)*0.25)
	cx, cy := float64(w)/2, float64(h)/2
	sin, cos := math.Sincos(tileAngle)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy

			// 회전 역변환으로 타일 좌표 계산
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos

			tu := int(positiveMod(u, spacing))
			tv := int(positiveMod(v, spacing))
			if tu >= stampW || tv >= stampH {
				continue
			}

			a := stamp.AlphaAt(stamp.Bounds().Min.X+tu, stamp.Bounds().Min.Y+tv).A
			if a == 0 {
				continue
			}
			blendPixel(canvas, x, y, 255, 255, 255, tileOpacity*float64(a)/255)
		}
	}
}

// drawCaptions - 밴드 위에 업그레이드 안내와 사이트 주소
func (s *Service) drawCaptions(canvas *image.RGBA, bandHeight int) {
	bounds := canvas.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	captionScale := textScale(float64(w)*0.025, 16)
	captionY := h - bandHeight/2 + 5
	drawCenteredText(canvas, captionText, captionScale, w/2, captionY)

	siteScale := textScale(float64(w)*0.018, 12)
	siteY := h - bandHeight/4
	drawCenteredText(canvas, s.siteName, siteScale, w/2, siteY)
}

// drawCenteredText - 그림자 포함 흰색 텍스트를 (cx, baselineY) 중심으로 찍는다
func drawCenteredText(canvas *image.RGBA, text string, scale, cx, baselineY int) {
	stamp := renderText(text, scale)
	stampW := stamp.Bounds().Dx()
	stampH := stamp.Bounds().Dy()

	left := cx - stampW/2
	top := baselineY - stampH

	blendStamp(canvas, stamp, left+1, top+1, 0, 0, 0, shadowOpacity)
	blendStamp(canvas, stamp, left, top, 255, 255, 255, 1.0)
}

// renderText - 비트맵 폰트로 텍스트 마스크 렌더링 후 정수배 확대
func renderText(text string, scale int) *image.Alpha {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	drawer := font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(color.Alpha{A: 255}),
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	drawer.DrawString(text)

	if scale <= 1 {
		return mask
	}

	scaled := image.NewAlpha(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height*scale; y++ {
		for x := 0; x < width*scale; x++ {
			scaled.SetAlpha(x, y, mask.AlphaAt(x/scale, y/scale))
		}
	}
	return scaled
}

// positiveMod - 항상 [0, m) 범위를 돌려주는 나머지
func positiveMod(v, m float64) float64 {
	r := math.Mod(v, m)
	if r < 0 {
		r += m
	}
	return r
}

// textScale - 목표 픽셀 높이를 비트맵 폰트(13px)의 정수배로 환산
func textScale(target, minimum float64) int {
	if target < minimum {
		target = minimum
	}
	scale := int(math.Round(target / 13))
	if scale < 1 {
		scale = 1
	}
	return scale
}

// blendStamp - 알파 마스크를 지정 색으로 합성
func blendStamp(canvas *image.RGBA, stamp *image.Alpha, left, top int, r, g, b uint8, opacity float64) {
	stampBounds := stamp.Bounds()
	for y := stampBounds.Min.Y; y < stampBounds.Max.Y; y++ {
		for x := stampBounds.Min.X; x < stampBounds.Max.X; x++ {
			a := stamp.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			blendPixel(canvas, left+x-stampBounds.Min.X, top+y-stampBounds.Min.Y,
				r, g, b, opacity*float64(a)/255)
		}
	}
}

// blendPixel - 단일 픽셀 알파 블렌딩
func blendPixel(canvas *image.RGBA, x, y int, r, g, b uint8, alpha float64) {
	if alpha <= 0 || !image.Pt(x, y).In(canvas.Bounds()) {
		return
	}
	if alpha > 1 {
		alpha = 1
	}

	orig := canvas.RGBAAt(x, y)
	canvas.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(r)*alpha + float64(orig.R)*(1-alpha)),
		G: uint8(float64(g)*alpha + float64(orig.G)*(1-alpha)),
		B: uint8(float64(b)*alpha + float64(orig.B)*(1-alpha)),
		A: orig.A,
	})
}
