package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	Tracing          TracingConfig           `env:",prefix=TRACING_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Shop             ShopConfig              `env:",prefix=SHOP_"`
}

type TelegramConfig struct {
	BotToken string `env:"BOT_TOKEN,required"`
	// Имя бота для реферальных deep-link ссылок
	BotUsername string        `env:"BOT_USERNAME,default=kvitka_b2b_bot"`
	Timeout     time.Duration `env:"TIMEOUT,default=30s"`
	AdminIDs    []int64       `env:"ADMIN_IDS"`
}

// ShopConfig - бизнес-параметры магазина.
type ShopConfig struct {
	MinOrderTotal            float64       `env:"MIN_ORDER_TOTAL,default=5000"`
	WholesaleDiscountPercent float64       `env:"WHOLESALE_DISCOUNT_PERCENT,default=5"`
	LoyaltyPointDivisor      float64       `env:"LOYALTY_POINT_DIVISOR,default=1000"`
	TenthOrderDiscount       float64       `env:"TENTH_ORDER_DISCOUNT,default=1000"`
	ReferralBonus            float64       `env:"REFERRAL_BONUS,default=200"`
	FallbackUSDRate          float64       `env:"FALLBACK_USD_RATE,default=41.5"`
	RateRefreshInterval      time.Duration `env:"RATE_REFRESH_INTERVAL,default=1m"`
	ProductCacheTTL          time.Duration `env:"PRODUCT_CACHE_TTL,default=30s"`
	SessionTTL               time.Duration `env:"SESSION_TTL,default=24h"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type TracingConfig struct {
	Enabled  bool   `env:"ENABLED,default=false"`
	Endpoint string `env:"ENDPOINT,default=http://localhost:14268/api/traces"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/kvitka.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
