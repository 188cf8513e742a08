package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"memory"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"coach-history.db"`

	JWTSecret     string        `env:"JWT_SECRET"`
	JWTAccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`

	InterviewPlatform   string `env:"INTERVIEW_PLATFORM" envDefault:"zoom"`
	DailyPrepCapMinutes int    `env:"DAILY_PREP_CAP_MINUTES" envDefault:"120"`
	FollowUpWorkStart   string `env:"FOLLOW_UP_WORK_START" envDefault:"09:00"`
	BusinessHoursStart  int    `env:"BUSINESS_HOURS_START" envDefault:"8"`
	BusinessHoursEnd    int    `env:"BUSINESS_HOURS_END" envDefault:"18"`

	DispatchInterval   time.Duration `env:"DISPATCH_INTERVAL" envDefault:"1m"`
	DeliveryRateMax    int           `env:"DELIVERY_RATE_MAX" envDefault:"3"`
	DeliveryRateWindow time.Duration `env:"DELIVERY_RATE_WINDOW" envDefault:"24h"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Interview Coach"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
