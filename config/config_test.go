package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := LoadServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("TOKEN_TTL_SECONDS", "90")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.TokenTTL)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoadClientDerivesWebSocketURL(t *testing.T) {
	t.Setenv("PORTAL_BASE_URL", "https://portal.example.com/")
	t.Setenv("PORTAL_WS_URL", "")
	t.Setenv("PORTAL_RECONNECT_DELAY", "250ms")

	cfg := LoadClient()
	assert.Equal(t, "https://portal.example.com", cfg.BaseURL)
	assert.Equal(t, "wss://portal.example.com/ws/websocket", cfg.WSURL)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
	assert.NotEmpty(t, cfg.SessionFile)
}

func TestWebSocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:9000/ws/websocket", WebSocketURL("http://localhost:9000"))
	assert.Equal(t, "ws://localhost:8080/ws/websocket", WebSocketURL("::bad"))
}
