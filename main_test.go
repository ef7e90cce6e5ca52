// main_test.go
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		server:          "http://localhost:8080",
		requestTimeout:  time.Second,
		livenessTimeout: time.Second,
		port:            8080,
		firstGameID:     1,
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.validate())
	assert.NoError(t, cfg.validateServe())

	cfg.server = "ftp://nowhere"
	assert.Error(t, cfg.validate())

	cfg = testConfig()
	cfg.requestTimeout = 0
	assert.Error(t, cfg.validate())

	cfg = testConfig()
	cfg.port = 70000
	assert.Error(t, cfg.validateServe())
}

func TestResolvedPublicURL(t *testing.T) {
	cfg := testConfig()
	cfg.bind = "0.0.0.0"
	assert.Equal(t, "http://localhost:8080", cfg.resolvedPublicURL())

	cfg.publicURL = "https://codenames.example/"
	assert.Equal(t, "https://codenames.example", cfg.resolvedPublicURL())
}

func TestEnvironmentFillsFlags(t *testing.T) {
	t.Setenv("CODENAMES_SERVER", "http://backend.test:9000")
	t.Setenv("CODENAMES_REQUEST_TIMEOUT", "3s")

	cfg := &Config{}
	newCmd(cfg)
	assert.Equal(t, "http://backend.test:9000", cfg.server)
	assert.Equal(t, 3*time.Second, cfg.requestTimeout)
}

// TestHealthEndpoint tests the /health endpoint of the wired backend.
func TestHealthEndpoint(t *testing.T) {
	b, err := newBackend(testConfig())
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestCreateAndSessionCommands(t *testing.T) {
	cfg := testConfig()
	cfg.firstGameID = 42
	b, err := newBackend(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(b.handler)
	defer srv.Close()

	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")
	qrFile := filepath.Join(dir, "game.png")

	run := func(args ...string) string {
		var out bytes.Buffer
		cmd := newCmd(&Config{})
		cmd.SetOut(&out)
		cmd.SetArgs(append([]string{"--server", srv.URL, "--session-file", sessionFile}, args...))
		require.NoError(t, cmd.Execute())
		return strings.TrimSpace(out.String())
	}

	assert.Equal(t, "42", run("create", "Test", "--qr", qrFile))
	png, err := os.ReadFile(qrFile)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	first := run("session")
	assert.Equal(t, first, run("session"), "session id is stable across runs")
}

func TestJoinCommand(t *testing.T) {
	cfg := testConfig()
	b, err := newBackend(cfg)
	require.NoError(t, err)
	id, err := b.games.CreateGame("Lobby", "creator")
	require.NoError(t, err)
	srv := httptest.NewServer(b.handler)
	defer srv.Close()

	var out bytes.Buffer
	cmd := newCmd(&Config{})
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--server", srv.URL, "--session-file", filepath.Join(t.TempDir(), "s.json"),
		"join", string(id), "Bob", "red", "spymaster"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Bob (you)")

	gs, err := b.games.State(id)
	require.NoError(t, err)
	assert.Len(t, gs.Players, 1)
}
