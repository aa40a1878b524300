package config

import (
	"os"
	"strconv"
	"time"

	"shell_game/internal/game"
	"shell_game/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppVersion    string
	DatabaseURL   string // empty disables round history
	JWTSecret     string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// Round script
	ShuffleCount    int
	ShuffleInterval time.Duration
	IntroDelay      time.Duration
	SessionTTL      time.Duration
	RevealBall      bool // debug: show the ball while shuffling

	// Rate limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	GameRateLimit  int
	GameRateWindow time.Duration
}

// Load reads the config from env (and .env if present)
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "dev"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		AppPort:       port,
		AppVersion:    version,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0, 0),

		LogLevel: logLevel,
		LogJSON:  os.Getenv("LOG_FORMAT") == "json",

		ShuffleCount:    envInt("SHUFFLE_COUNT", game.DefaultShuffleCount, 0),
		ShuffleInterval: envMillis("SHUFFLE_INTERVAL_MS", game.DefaultShuffleInterval),
		IntroDelay:      envMillis("INTRO_DELAY_MS", game.DefaultIntroDelay),
		SessionTTL:      time.Duration(envInt("SESSION_TTL_MINUTES", 60, 1)) * time.Minute,
		RevealBall:      os.Getenv("REVEAL_BALL") == "true",

		APIRateLimit:   envInt("API_RATE_LIMIT", 60, 1),
		APIRateWindow:  time.Duration(envInt("API_RATE_WINDOW_SECONDS", 60, 1)) * time.Second,
		GameRateLimit:  envInt("GAME_RATE_LIMIT", 120, 1),
		GameRateWindow: time.Duration(envInt("GAME_RATE_WINDOW", 60, 1)) * time.Second,
	}
}

// Script returns the round script built from the shuffle settings
func (c *Config) Script() game.Script {
	return game.DefaultScript().RunScriptedShuffle(c.ShuffleCount, c.ShuffleInterval).WithIntro(c.IntroDelay)
}

// envInt parses key as an int >= min, falling back to def
func envInt(key string, def, min int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		logger.Warn("invalid config value, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envMillis(key string, def time.Duration) time.Duration {
	ms := envInt(key, int(def.Milliseconds()), 0)
	return time.Duration(ms) * time.Millisecond
}
