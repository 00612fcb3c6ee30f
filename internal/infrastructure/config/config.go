package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
	DBPath          string

	// LLM grading and tutoring
	LLMURL   string   // OpenAI-compatible endpoint, e.g. "https://api.groq.com/openai"
	LLMModel string   // model name, e.g. "llama-3.1-8b-instant"
	LLMKeys  []string // API key pool, rotated between retry attempts

	// Auth
	JWTSecret       string
	TokenTTL        time.Duration
	StudentDomain   string   // email domain that maps to the student role
	ProfessorDomain string   // email domain that maps to the professor role
	AdminEmails     []string // accounts promoted to admin on registration

	// Email delivery
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Background jobs
	RedisAddr string

	// Weekly professor digest ("" disables the scheduler)
	DigestCron string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		ServerAddress:   getenvDefault("SERVER_ADDRESS", ":8080"),
		ShutdownTimeout: getDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		DBPath:          getenvDefault("DB_PATH", "helix.db"),
		LLMURL:          getenvDefault("LLM_URL", "https://api.groq.com/openai"),
		LLMModel:        getenvDefault("LLM_MODEL", "llama-3.1-8b-instant"),
		LLMKeys:         splitList(os.Getenv("LLM_API_KEYS")),
		JWTSecret:       mustGetenv("JWT_SECRET"),
		TokenTTL:        getDurationDefault("TOKEN_TTL", 7*24*time.Hour),
		StudentDomain:   getenvDefault("STUDENT_EMAIL_DOMAIN", "aluno.fcmsantacasasp.edu.br"),
		ProfessorDomain: getenvDefault("PROFESSOR_EMAIL_DOMAIN", "fcmsantacasasp.edu.br"),
		AdminEmails:     splitList(os.Getenv("ADMIN_EMAILS")),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        getenvDefault("SMTP_PORT", "587"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		RedisAddr:       getenvDefault("REDIS_ADDR", "localhost:6379"),
		DigestCron:      getenvDefault("DIGEST_CRON", "0 7 * * MON"),
	}
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
