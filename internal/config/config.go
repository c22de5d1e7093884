package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Addr      string
	JWTSecret string

	// Chat webhook (the single external automation endpoint)
	WebhookURL        string
	WebhookAuthToken  string
	WebhookTimeoutSec int

	// Identity persistence
	IdentityBackend string // "redis" or "gorm"
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	IdentityDSN     string

	// SMTP (optional welcome mail on email capture)
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Audit sink (optional)
	RabbitURL          string
	AuditQueue         string
	SinkURL            string
	SinkFieldEmail     string
	SinkFieldMessage   string
	SinkFieldSession   string
	SinkFieldTimestamp string
}

func Load() Config {
	addr := os.Getenv("PORT")
	if addr == "" {
		addr = "8080"
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	timeoutSec := 30
	if v := os.Getenv("WEBHOOK_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeoutSec = n
		}
	}

	backend := strings.ToLower(os.Getenv("IDENTITY_BACKEND"))
	if backend == "" {
		backend = "redis"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	dsn := os.Getenv("IDENTITY_DSN")
	if dsn == "" {
		dsn = "app:apppass@tcp(127.0.0.1:3306)/bbb_assistant?charset=utf8mb4&parseTime=true&loc=Local"
	}

	smtpPort := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			smtpPort = n
		}
	}
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpFrom == "" {
		smtpFrom = os.Getenv("SMTP_USER")
	}

	auditQueue := os.Getenv("AUDIT_QUEUE")
	if auditQueue == "" {
		auditQueue = "audit_events"
	}

	return Config{
		Addr:      addr,
		JWTSecret: secret,

		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookAuthToken:  os.Getenv("WEBHOOK_AUTH_TOKEN"),
		WebhookTimeoutSec: timeoutSec,

		IdentityBackend: backend,
		RedisAddr:       redisAddr,
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		IdentityDSN:     dsn,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: smtpPort,
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: smtpFrom,

		RabbitURL:          os.Getenv("RABBIT_URL"),
		AuditQueue:         auditQueue,
		SinkURL:            os.Getenv("SINK_URL"),
		SinkFieldEmail:     getEnvOrDefault("SINK_FIELD_EMAIL", "email"),
		SinkFieldMessage:   getEnvOrDefault("SINK_FIELD_MESSAGE", "message"),
		SinkFieldSession:   getEnvOrDefault("SINK_FIELD_SESSION", "sessionId"),
		SinkFieldTimestamp: getEnvOrDefault("SINK_FIELD_TIMESTAMP", "timestamp"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
