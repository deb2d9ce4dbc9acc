package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Judge0 (RapidAPI) settings. An empty key disables remote execution.
	JudgeAPIURL  string
	JudgeAPIHost string
	JudgeAPIKey  string
	JudgeTimeout time.Duration

	RunQueueName      string
	RunLockKey        string
	RunLockTTLSeconds int
	RunResultTTL      time.Duration
	// RunEmbeddedWorker starts the execution worker inside the API process.
	RunEmbeddedWorker bool

	PlaybackBaseInterval time.Duration
	PlaybackMinInterval  time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current process environment without touching
// AppConfig.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "algoprep_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JudgeAPIURL:  getEnv("JUDGE_API_URL", "https://judge0-ce.p.rapidapi.com"),
		JudgeAPIHost: getEnv("JUDGE_API_HOST", "judge0-ce.p.rapidapi.com"),
		JudgeAPIKey:  getEnv("RAPIDAPI_KEY", ""),
		JudgeTimeout: getEnvAsDuration("JUDGE_TIMEOUT", 20*time.Second),

		RunQueueName:      getEnv("RUN_QUEUE_NAME", "run_jobs_queue"),
		RunLockKey:        getEnv("RUN_LOCK_KEY", "run_job_lock"),
		RunLockTTLSeconds: getEnvAsInt("RUN_LOCK_TTL_SECONDS", 60),
		RunResultTTL:      getEnvAsDuration("RUN_RESULT_TTL", 30*time.Minute),
		RunEmbeddedWorker: getEnvAsBool("RUN_EMBEDDED_WORKER", true),

		PlaybackBaseInterval: getEnvAsDuration("PLAYBACK_BASE_INTERVAL", time.Second),
		PlaybackMinInterval:  getEnvAsDuration("PLAYBACK_MIN_INTERVAL", 100*time.Millisecond),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration syntax ("1500ms", "2s") or a bare number of
// milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(valueStr); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
