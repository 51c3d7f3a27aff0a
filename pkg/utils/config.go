package utils

import (
	"os"
	"strconv"
	"time"
)

// KioskConfig is everything the kiosk daemon needs from the environment.
type KioskConfig struct {
	APIBaseURL string // remote cafeteria backend
	WSURL      string // real-time channel endpoint
	ListenAddr string // local HTTP API

	StaffPassword string
	JWTSecret     string
	JWTIssuer     string
	JWTDuration   time.Duration

	OpenHour  int // serving window start (inclusive)
	CloseHour int // serving window end (exclusive)
}

func LoadKioskConfig() KioskConfig {
	cfg := KioskConfig{
		APIBaseURL:    getenv("MENUKIOSK_API_URL", "https://back-menu.fly.dev"),
		WSURL:         getenv("MENUKIOSK_WS_URL", "wss://back-menu.fly.dev/ws"),
		ListenAddr:    getenv("MENUKIOSK_LISTEN_ADDR", ":8080"),
		StaffPassword: getenv("MENUKIOSK_STAFF_PASSWORD", "dev-password-change-me"),
		JWTSecret:     getenv("MENUKIOSK_JWT_SECRET", "dev-secret-change-me"),
		JWTIssuer:     getenv("MENUKIOSK_JWT_ISSUER", "menukiosk"),
		JWTDuration:   24 * time.Hour,
		OpenHour:      getenvInt("MENUKIOSK_OPEN_HOUR", 11),
		CloseHour:     getenvInt("MENUKIOSK_CLOSE_HOUR", 24),
	}

	if ttl := os.Getenv("MENUKIOSK_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			cfg.JWTDuration = time.Duration(h) * time.Hour
		}
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
