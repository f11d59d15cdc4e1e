package config

import (
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment (and .env if present).
type Config struct {
	Port   string
	AppEnv string

	DBDriver string
	DBDSN    string

	// JWTSecret signs bearer tokens
	JWTSecret []byte
	TokenTTL  time.Duration

	StorageRoot   string
	StorageURL    string
	MaxImageBytes int64

	RabbitMQURL    string
	RabbitMQQueue  string
	TelegramToken  string
	TelegramChatID int64

	Runtime *Runtime
}

// Policy holds the flags that may change while the process runs.
type Policy struct {
	// MenuAvailableOnly hides unavailable items from the public listing.
	MenuAvailableOnly bool
	// PreOrdersRequireAuth puts GET /pre-orders behind the bearer gate.
	PreOrdersRequireAuth bool
}

// Runtime is a reloadable holder for Policy.
type Runtime struct {
	p atomic.Pointer[Policy]
}

func NewRuntime(p Policy) *Runtime {
	r := &Runtime{}
	r.Set(p)
	return r
}

func (r *Runtime) Policy() Policy { return *r.p.Load() }

func (r *Runtime) Set(p Policy) { r.p.Store(&p) }

// Reload re-reads .env (overriding the process environment) and refreshes the
// policy flags.
func (r *Runtime) Reload() Policy {
	_ = godotenv.Overload()
	p := policyFromEnv()
	r.Set(p)
	return p
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBDSN:          getEnv("DB_DSN", "food_court.db"),
		JWTSecret:      []byte(getEnv("JWT_SECRET", "food_court_super_secret_2026")),
		TokenTTL:       getDuration("TOKEN_TTL", 24*time.Hour),
		StorageRoot:    getEnv("STORAGE_ROOT", "storage/app/public"),
		StorageURL:     getEnv("STORAGE_URL", "/storage"),
		MaxImageBytes:  getInt64("MAX_IMAGE_BYTES", 2<<20),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue:  getEnv("RABBITMQ_QUEUE", "pre-orders"),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getInt64("TELEGRAM_CHAT_ID", 0),
		Runtime:        NewRuntime(policyFromEnv()),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development" || c.AppEnv == "local"
}

func policyFromEnv() Policy {
	return Policy{
		MenuAvailableOnly:    getBool("MENU_AVAILABLE_ONLY", false),
		PreOrdersRequireAuth: getBool("PREORDERS_REQUIRE_AUTH", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getInt64(key string, fallback int64) int64 {
	n, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return d
}
