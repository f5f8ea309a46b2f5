package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	MarriottBase   string
	MarriottRPS    int
	Workers        int
	CacheTTL       time.Duration
	HAURL          string
	HAToken        string
	HAService      string
	RabbitURL      string
	TracingEnabled bool
	JaegerEndpoint string
	CORSOrigins    []string
}

// Load reads the environment, after applying a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/ratecheck?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		MarriottBase:   env("MARRIOTT_BASE_URL", "https://www.marriott.com"),
		MarriottRPS:    atoi("MARRIOTT_RPS", 1),
		Workers:        atoi("CHECK_WORKERS", 4),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		HAURL:          env("HA_URL", ""),
		HAToken:        env("HA_TOKEN", ""),
		HAService:      env("HA_SERVICE", "notify"),
		RabbitURL:      env("RABBITMQ_URL", ""),
		TracingEnabled: env("TRACING_ENABLED", "false") == "true",
		JaegerEndpoint: env("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		CORSOrigins:    splitList(env("CORS_ORIGINS", "*")),
	}
	if c.HAURL == "" || c.HAToken == "" {
		log.Warn().Msg("HA_URL or HA_TOKEN is empty; Home Assistant notifications disabled")
	}
	return c
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
