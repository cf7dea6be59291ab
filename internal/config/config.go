package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // JWT署名シークレット

	GoEnv     string // dev/prod
	APIDomain string // APIドメイン（cookieなどで使う）
	FEURL     string // フロントURL（CORSなどで使う）

	StripeSecretKey     string // 決済ゲートウェイのシークレットキー
	StripeWebhookSecret string // webhook署名検証用シークレット
	Currency            string // 決済通貨（最小通貨単位で扱う）

	//予約の固定料金（最小通貨単位）
	AppointmentFee int64

	//画像アップロードの保存先
	UploadDir string

	//決済待ちのまま放置された注文/予約を破棄するまでの時間
	PaymentPendingTTL time.Duration

	//ログファイル（空ならstdoutのみ）
	LogFile string
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv:     getenv("GO_ENV", "dev"),
		APIDomain: os.Getenv("API_DOMAIN"),
		FEURL:     os.Getenv("FE_URL"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getenv("CURRENCY", "inr"),

		UploadDir: getenv("UPLOAD_DIR", "./public/uploads"),

		LogFile: os.Getenv("LOG_FILE"),
	}

	fee, err := envInt64("APPOINTMENT_FEE", 49900)
	if err != nil {
		return Config{}, err
	}
	cfg.AppointmentFee = fee

	ttlMin, err := envInt64("PAYMENT_PENDING_TTL_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.PaymentPendingTTL = time.Duration(ttlMin) * time.Minute

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.AppointmentFee <= 0 {
		return Config{}, fmt.Errorf("APPOINTMENT_FEE must be > 0")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
