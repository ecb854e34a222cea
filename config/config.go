package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally seeded by a .env file) with simple defaults.
type Config struct {
	ServerAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// OpenAI genre classification
	OpenAIKey     string
	OpenAIModel   string
	GenrePrompt   string
	GenreCacheTTL time.Duration

	// Spotify application credentials
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURI  string

	// YouTube Data API
	YouTubeKey       string
	MatchCachePath   string
	MatchWorkerCount int

	// Song selection
	SongsPerGenre   int
	PopularityFloor int

	// Signup verification
	EmailAddress  string
	EmailPassword string
	SMTPHost      string
	SMTPPort      string
	AuthCodeTTL   time.Duration
	SweepInterval time.Duration

	JWTSecret string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvMinutes reads an environment variable as a whole number of minutes.
func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}

const defaultGenrePrompt = "You are a music recommendation assistant. " +
	"Given a short text describing a mood or sentiment, respond with a JSON " +
	`object of the form {"genres": [...]} containing exactly 5 lowercase ` +
	"Spotify genre seeds that fit the sentiment. Respond with JSON only."

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "sentisounds"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		GenrePrompt:   getEnv("GENRE_PROMPT", defaultGenrePrompt),
		GenreCacheTTL: getEnvMinutes("GENRE_CACHE_TTL_MINUTES", 60),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyRedirectURI:  getEnv("SPOTIFY_REDIRECT_URI", "http://localhost:8080/callback"),

		YouTubeKey:       os.Getenv("YOUTUBE_API_KEY"),
		MatchCachePath:   getEnv("MATCH_CACHE_PATH", ".cache/youtube_id_cache.json"),
		MatchWorkerCount: getEnvInt("MATCH_WORKER_COUNT", 5),

		SongsPerGenre:   getEnvInt("SONGS_PER_GENRE", 10),
		PopularityFloor: getEnvInt("POPULARITY_FLOOR", 20),

		EmailAddress:  os.Getenv("EMAIL_ADDRESS"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "465"),
		AuthCodeTTL:   getEnvMinutes("AUTH_CODE_TTL_MINUTES", 5),
		SweepInterval: getEnvMinutes("SWEEP_INTERVAL_MINUTES", 30),

		JWTSecret: getEnv("JWT_SECRET", "sentisounds-dev-secret"),
	}
}

// Validate reports every missing required secret. A non-nil result is fatal
// at startup; per-request code never sees an unconfigured provider.
func (c *Config) Validate() error {
	var missing []string
	if c.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.SpotifyClientID == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if c.SpotifyClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if c.YouTubeKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if c.EmailAddress == "" {
		missing = append(missing, "EMAIL_ADDRESS")
	}
	if c.EmailPassword == "" {
		missing = append(missing, "EMAIL_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
