package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TELEGRAM_TOKEN", "ANALYZER_URL", "WEB_ADDR", "LOG_LEVEL", "CAMERA_DEVICE", "REQUEST_TIMEOUT", "SESSION_TTL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PALM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultAnalyzerURL, cfg.AnalyzerURL)
	require.Equal(t, DefaultWebAddr, cfg.WebAddr)
	require.Equal(t, DefaultLogLevel, cfg.LogLevel)
	require.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	require.Equal(t, 0, cfg.CameraDevice)
	require.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	path := filepath.Join(t.TempDir(), "palm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analyzer_url: http://analyzer:9000
web_addr: ":9090"
camera_device: 2
request_timeout: 15s
log_level: debug
session_ttl: 5m
`), 0o600))
	t.Setenv("PALM_CONFIG", path)
	t.Setenv("WEB_ADDR", ":7070")
	t.Setenv("SESSION_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://analyzer:9000", cfg.AnalyzerURL)
	require.Equal(t, ":7070", cfg.WebAddr)
	require.Equal(t, 2, cfg.CameraDevice)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 90*time.Second, cfg.SessionTTL)
}

func TestLoad_InvalidEnv(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv("PALM_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("CAMERA_DEVICE", "front")

	_, err := Load()
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
