package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and JWT_SECRET are required.
type Config struct {
	// Server. There is no write timeout: it would sever long-lived
	// websocket connections, so write deadlines are per-message instead.
	HTTPPort        string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Redis — task queue, verification records, ranking snapshot copy
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret string

	// Outbound mail
	MailAPIURL     string
	MailAPITimeout time.Duration
	MailFrom       string
	MailRatePerSec int

	// Email consumer
	EmailPollInterval time.Duration
	VerificationTTL   time.Duration

	// Ranking aggregation
	RankingCron   string
	RankingWindow time.Duration
	RankingLimit  int

	// Live push
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	pongWait := getDuration("WS_PONG_WAIT", 60*time.Second)

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret: jwtSecret,

		MailAPIURL:     getEnv("MAIL_API_URL", "http://localhost:8025/api/send"),
		MailAPITimeout: getDuration("MAIL_API_TIMEOUT", 10*time.Second),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@notesys.local"),
		MailRatePerSec: getInt("MAIL_RATE_PER_SEC", 10),

		EmailPollInterval: getDuration("EMAIL_POLL_INTERVAL", 3*time.Second),
		VerificationTTL:   getDuration("VERIFICATION_TTL", 5*time.Minute),

		RankingCron:   getEnv("RANKING_CRON", "@hourly"),
		RankingWindow: getDuration("RANKING_WINDOW", 168*time.Hour),
		RankingLimit:  getInt("RANKING_LIMIT", 50),

		WriteWait: getDuration("WS_WRITE_WAIT", 10*time.Second),
		PongWait:  pongWait,
		// Pings must arrive before the pong deadline expires.
		PingInterval: pongWait * 9 / 10,
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
