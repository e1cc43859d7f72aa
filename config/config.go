package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	defaultPort              = "8080"
	defaultDBName            = "branchstock"
	defaultLowStockThreshold = 5
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Env                 string
	Port                string
	MongoURI            string
	DBName              string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	FirebaseProjectID   string
	JWTSecret           string
	LowStockThreshold   int
	Location            *time.Location
	UploadsDir          string
	CORSAllowedOrigins  string
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPass            string
	SMTPFrom            string
	OwnerEmail          string
}

// Load reads .env when present and builds Settings with defaults applied.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, using process environment")
	}

	s := &Settings{
		Env:                 getenv("ENV", "development"),
		Port:                getenv("PORT", defaultPort),
		MongoURI:            firstNonEmpty(os.Getenv("MONGO_URI"), os.Getenv("MONGODB_URI")),
		DBName:              getenv("DB_NAME", defaultDBName),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getInt("REDIS_DB", 0),
		FirebaseCredsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredsFile:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		LowStockThreshold:   getInt("LOW_STOCK_THRESHOLD", defaultLowStockThreshold),
		Location:            time.Local,
		UploadsDir:          getenv("UPLOADS_DIR", "uploads"),
		CORSAllowedOrigins:  os.Getenv("CORS_ALLOWED_ORIGINS"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            getInt("SMTP_PORT", 587),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
		OwnerEmail:          os.Getenv("OWNER_EMAIL"),
	}

	if s.LowStockThreshold <= 0 {
		log.Warn().Int("value", s.LowStockThreshold).Msg("LOW_STOCK_THRESHOLD must be positive, using default")
		s.LowStockThreshold = defaultLowStockThreshold
	}
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Warn().Err(err).Str("timezone", tz).Msg("unknown TIMEZONE, using local time")
		} else {
			s.Location = loc
		}
	}
	return s
}

// IsDevelopment reports whether the service runs in a local environment.
func (s *Settings) IsDevelopment() bool {
	switch strings.ToLower(s.Env) {
	case "development", "dev", "local":
		return true
	}
	return false
}

// FirebaseConfigured reports whether any Firebase credentials are set.
func (s *Settings) FirebaseConfigured() bool {
	return s.FirebaseCredsBase64 != "" || s.FirebaseCredsFile != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("not an integer, using default")
		return fallback
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
