package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Gemini API
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// User state persistence
	UserStatePath string

	// Supabase (optional - user state backend)
	SupabaseURL        string
	SupabaseServiceKey string

	// Stripe (optional - checkout)
	StripeSecretKey     string
	StripePricePro      string
	StripePriceLifetime string
	StripeLinkPro       string
	StripeLinkLifetime  string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	// Server
	Port string

	// Entitlement
	DailyFreeLimit int
	SiteName       string
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := false // 기본값 (로컬 Redis)
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// DailyFreeLimit 파싱
	dailyFreeLimit := 3 // 무료 플랜 하루 생성 횟수
	if limitStr := os.Getenv("DAILY_FREE_LIMIT"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			dailyFreeLimit = parsed
		}
	}

	globalConfig = &Config{
		// Gemini API
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// User state
		UserStatePath: getEnv("USER_STATE_PATH", "data/user_state.json"),

		// Supabase (optional)
		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),

		// Stripe (optional)
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripePricePro:      getEnv("STRIPE_PRICE_PRO", ""),
		StripePriceLifetime: getEnv("STRIPE_PRICE_LIFETIME", ""),
		StripeLinkPro:       getEnv("STRIPE_LINK_PRO", ""),
		StripeLinkLifetime:  getEnv("STRIPE_LINK_LIFETIME", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:8080/"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:8080/"),

		// Server
		Port: getEnv("PORT", "8080"),

		// Entitlement
		DailyFreeLimit: dailyFreeLimit,
		SiteName:       getEnv("SITE_NAME", "etsydesignoptimizer.com"),
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Gemini: text=%s, image=%s", globalConfig.GeminiTextModel, globalConfig.GeminiImageModel)
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	log.Printf("   User state: %s", globalConfig.userStateBackend())
	log.Printf("   Free limit: %d generations/day", globalConfig.DailyFreeLimit)

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}
	return nil
}

func (c *Config) userStateBackend() string {
	if c.SupabaseURL != "" {
		return "supabase"
	}
	return c.UserStatePath
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
