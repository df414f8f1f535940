package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseServer_Defaults(t *testing.T) {
	opts, err := ParseServer([]string{"-c", filepath.Join(t.TempDir(), "none.json")}, envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", opts.Port)
	assert.Equal(t, time.Hour, opts.CleanupInterval)
	assert.Equal(t, 30*24*time.Hour, opts.Retention)
	assert.Equal(t, "info", opts.LogLevel)
}

func TestParseServer_Precedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"port":":9000","database_dsn":"from-file"}`), 0600))

	opts, err := ParseServer([]string{"-a", ":7000", "-d", "from-flag"}, envOf(map[string]string{
		"CONFIG":           cfg,
		"SERVER_ADDRESS":   ":6000",
		"CLEANUP_INTERVAL": "90",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":6000", opts.Port, "env wins over file and flag")
	assert.Equal(t, "from-file", opts.DatabaseDSN, "file wins over flag")
	assert.Equal(t, 90*time.Second, opts.CleanupInterval)
}

func TestParseServer_Invalid(t *testing.T) {
	_, err := ParseServer([]string{"-cleanup", "0s", "-c", ""}, envOf(nil))
	require.Error(t, err)

	_, err = ParseServer([]string{"-c", ""}, envOf(map[string]string{"RETENTION": "forever"}))
	require.Error(t, err)

	cfg := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{`), 0600))
	_, err = ParseServer([]string{"-c", cfg}, envOf(nil))
	require.ErrorContains(t, err, "parsing config file")
}

func TestConfigFile_Durations(t *testing.T) {
	dir := t.TempDir()
	server := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(server, []byte(`{"cleanup_interval":"90s","retention":"720h","log_level":"debug"}`), 0600))
	opts, err := ParseServer([]string{"-c", server}, envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, opts.CleanupInterval)
	assert.Equal(t, 720*time.Hour, opts.Retention)
	assert.Equal(t, "debug", opts.LogLevel)

	client := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(client, []byte(`{"timeout":"5s","sync_interval":30,"base_url":"http://x/api"}`), 0600))
	copts, err := ParseClientArgs([]string{"-c", client}, envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, copts.Timeout)
	assert.Equal(t, 30*time.Second, copts.SyncInterval)
	assert.Equal(t, "http://x/api", copts.BaseURL)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"timeout":"soon"}`), 0600))
	_, err = ParseClientArgs([]string{"-c", bad}, envOf(nil))
	require.ErrorContains(t, err, "invalid duration")
}

func TestParseServer_TLS(t *testing.T) {
	opts, err := ParseServer([]string{"-c", "", "-tls-cert", "cert.pem"}, envOf(map[string]string{"TLS_KEY": "key.pem"}))
	require.NoError(t, err)
	assert.True(t, opts.TLS())
	assert.Equal(t, "key.pem", opts.TLSKey)

	_, err = ParseServer([]string{"-c", "", "-tls-cert", "cert.pem"}, envOf(nil))
	require.ErrorContains(t, err, "must be set together")
}

func TestParseClientArgs(t *testing.T) {
	opts, err := ParseClientArgs([]string{"-url", "https://budget.example/api", "-timeout", "3s", "-c", ""}, envOf(map[string]string{
		"EBUDGET_CACHE": "/tmp/cache.db",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://budget.example/api", opts.BaseURL)
	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.Equal(t, "/tmp/cache.db", opts.CachePath)
	assert.Equal(t, "session.json", opts.SessionPath)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Zero(t, opts.SyncInterval)
}

func TestParseClientArgs_SyncInterval(t *testing.T) {
	opts, err := ParseClientArgs([]string{"-c", ""}, envOf(map[string]string{
		"EBUDGET_SYNC_INTERVAL": "30",
	}))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, opts.SyncInterval)

	_, err = ParseClientArgs([]string{"-c", "", "-sync", "-1s"}, envOf(nil))
	require.ErrorContains(t, err, "invalid sync interval")
}

func TestParseClientArgs_Invalid(t *testing.T) {
	_, err := ParseClientArgs([]string{"-url", "", "-c", ""}, envOf(nil))
	require.ErrorContains(t, err, "base URL is empty")

	_, err = ParseClientArgs([]string{"-nope"}, envOf(nil))
	require.Error(t, err)
}
