package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server holds the sandbox backend settings.
type Server struct {
	Port         string
	DatabaseURL  string
	JWTSecret    string
	TokenTTL     time.Duration
	UploadDir    string
	Environment  string
	RollbarToken string
}

// Client holds the portal client settings.
type Client struct {
	BaseURL        string
	WSURL          string
	SessionFile    string
	ReconnectDelay time.Duration
	Environment    string
	RollbarToken   string
}

var requiredServerVars = []string{"DATABASE_URL", "JWT_SECRET_KEY"}

// loadDotEnv loads .env when present; a missing file is not an error.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: .env file not loaded: %v", err)
	}
}

// LoadServer reads the sandbox configuration and fails on missing required variables.
func LoadServer() (Server, error) {
	loadDotEnv()

	for _, envVar := range requiredServerVars {
		if os.Getenv(envVar) == "" {
			return Server{}, fmt.Errorf("required environment variable %s is not set", envVar)
		}
	}

	return Server{
		Port:         getenv("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET_KEY"),
		TokenTTL:     getenvDuration("TOKEN_TTL", 24*time.Hour),
		UploadDir:    getenv("UPLOAD_DIR", "uploads"),
		Environment:  getenv("ENV", "development"),
		RollbarToken: os.Getenv("ROLLBAR_TOKEN"),
	}, nil
}

// LoadClient reads the portal client configuration. It never fails; every field has a default.
func LoadClient() Client {
	loadDotEnv()

	base := strings.TrimRight(getenv("PORTAL_BASE_URL", "http://localhost:8080"), "/")
	return Client{
		BaseURL:        base,
		WSURL:          getenv("PORTAL_WS_URL", WebSocketURL(base)),
		SessionFile:    getenv("PORTAL_SESSION_FILE", defaultSessionFile()),
		ReconnectDelay: getenvDuration("PORTAL_RECONNECT_DELAY", 5*time.Second),
		Environment:    getenv("ENV", "development"),
		RollbarToken:   os.Getenv("ROLLBAR_TOKEN"),
	}
}

// WebSocketURL derives the raw-websocket leg of the /ws endpoint from an http(s) origin.
func WebSocketURL(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "ws://localhost:8080/ws/websocket"
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/websocket"
	return u.String()
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "incubator-portal", "session.json")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
