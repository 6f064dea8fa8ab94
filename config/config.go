package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         string
	Env          string
	MongoURI     string
	DBName       string
	JWTSecret    string
	BcryptCost   int
	MaxUploadMB  int64
	MaxPageLimit int64
	UploadsDir   string
}

func Load() (*Config, error) {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("APP_ENV", "dev"),
		MongoURI:     getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:       getEnv("MONGODB_DB", "library"),
		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
		BcryptCost:   int(getEnvInt("BCRYPT_COST", 10)),
		MaxUploadMB:  getEnvInt("MAX_UPLOAD_MB", 100),
		MaxPageLimit: getEnvInt("MAX_PAGE_LIMIT", 100),
		UploadsDir:   getEnv("UPLOADS_DIR", "uploads"),
	}, nil
}

// MaxUploadBytes is the multipart size cap derived from MAX_UPLOAD_MB.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
