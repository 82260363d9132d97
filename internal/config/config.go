package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr        string
	JWTSecret   string
	JWTTTLMin   int
	SQLiteDSN   string
	DatabaseURL string // when set, Postgres is used instead of SQLite
	OTPDigits   int
	OTPTTLSec   int

	SendGridAPIKey string
	SendGridFrom   string
}

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val != "" {
		return val
	}
	return def
}

func MustLoad() Config {
	jwtttl, _ := strconv.Atoi(getenv("JWT_TTL_MIN", "10080"))
	otpdigit, _ := strconv.Atoi(getenv("OTP_DIGITS", "6"))
	otpttl, _ := strconv.Atoi(getenv("OTP_TTL_SEC", "300"))

	cfg := Config{
		Addr:           getenv("HTTP_ADDR", ":5001"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		JWTTTLMin:      jwtttl,
		SQLiteDSN:      getenv("SQLITE_DSN", "file:gupshup.db?_pragma=foreign_keys(ON)"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		OTPDigits:      otpdigit,
		OTPTTLSec:      otpttl,
		SendGridAPIKey: getenv("SENDGRID_API_KEY", ""),
		SendGridFrom:   getenv("SENDGRID_FROM", ""),
	}
	return cfg
}
