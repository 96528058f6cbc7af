package model

import (
	"errors"
	"time"
)

// AnalysisResult - 업로드된 제품 이미지 분석 결과
type AnalysisResult struct {
	Theme          string   `json:"theme"`
	DominantColors []string `json:"dominantColors"` // 5 HEX codes, most to least prominent
	KeyText        []string `json:"keyText"`
	EventType      string   `json:"eventType"`
	ProductType    string   `json:"productType"`
}

// CopyResult - Etsy 리스팅 카피 (타이틀/설명/태그/재료)
type CopyResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`      // exactly 13, each <= 20 chars
	Materials   []string `json:"materials"` // each <= 20 chars
}

// MockupPrompt - 목업 1장에 대한 생성 지시
type MockupPrompt struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// GeneratedImage - 목업 생성 결과 (생성 전에는 pending placeholder)
type GeneratedImage struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Base64 *string `json:"base64"` // data URI, nil until completed
	Status string  `json:"status"`
}

// EncodedImage - 업로드 파일을 API 전송용으로 인코딩한 형태
type EncodedImage struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mimeType"`
}

// Plan tiers
const (
	PlanFree     = "free"
	PlanPro      = "pro"
	PlanLifetime = "lifetime"
)

// UserState - 플랜 및 일일 사용량 (프로필 단위로 영속화)
type UserState struct {
	Plan           string `json:"plan"`
	DailyUsage     int    `json:"dailyUsage"`
	LastUsageDate  string `json:"lastUsageDate"` // YYYY-MM-DD
	Email          string `json:"email,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

// IsPremium - pro 또는 lifetime 여부
func (s UserState) IsPremium() bool {
	return s.Plan == PlanPro || s.Plan == PlanLifetime
}

// Run states
const (
	RunIdle       = "idle"
	RunAnalyzing  = "analyzing"
	RunAnalyzed   = "analyzed"
	RunGenerating = "generating"
	RunDone       = "done"
	RunFailed     = "failed"
)

// GeneratedImage statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run - 한 번의 analyze → generate 사이클 전체 상태.
// Token은 생성 사이클마다 갱신되는 세대 표식으로, 이전 사이클에서
// 늦게 도착한 결과가 새 사이클을 덮어쓰지 못하게 막는다.
type Run struct {
	ID        string           `json:"runId"`
	Token     string           `json:"-"`
	State     string           `json:"state"`
	Analysis  *AnalysisResult  `json:"analysis,omitempty"`
	Copy      *CopyResult      `json:"copy,omitempty"`
	Prompts   []MockupPrompt   `json:"prompts,omitempty"`
	Images    []GeneratedImage `json:"images"`
	Uploads   []EncodedImage   `json:"-"`
	Error     string           `json:"error,omitempty"`
	CopyError string           `json:"copyError,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Error taxonomy - 단계별/항목별 실패 구분용 sentinel
var (
	ErrUnsupportedMediaType   = errors.New("unsupported media type: only PNG and JPEG are accepted")
	ErrReadError              = errors.New("failed to read uploaded file")
	ErrMalformedModelResponse = errors.New("the model returned an invalid format")
	ErrNoImageReturned        = errors.New("the model did not return an image")
	ErrWatermarkRender        = errors.New("failed to render watermark")
	ErrLimitReached           = errors.New("daily free generation limit reached")
	ErrNotAnalyzed            = errors.New("analyze an image before generating assets")
	ErrRunNotFound            = errors.New("run not found")
	ErrImageNotFound          = errors.New("image not found in run")
)
