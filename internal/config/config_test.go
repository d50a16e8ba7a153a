package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("serve", nil, envOf(nil), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Empty(t, cfg.LogPath)
	assert.False(t, cfg.Debug)
	assert.Equal(t, DefaultLoginRate, cfg.LoginRate)
	assert.Equal(t, DefaultLoginBurst, cfg.LoginBurst)
	assert.Empty(t, cfg.Args)
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := Load("serve", nil, envOf(map[string]string{
		"AQUAGEST_API_URL":     "http://api:9000",
		"AQUAGEST_ADDR":        ":4000",
		"AQUAGEST_DB":          "/tmp/a.db",
		"AQUAGEST_LOG":         "/tmp/a.log",
		"AQUAGEST_DEBUG":       "true",
		"AQUAGEST_LOGIN_RATE":  "0.5",
		"AQUAGEST_LOGIN_BURST": "3",
		"AQUAGEST_TRUST_PROXY": "true",
	}), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "http://api:9000", cfg.APIURL)
	assert.Equal(t, ":4000", cfg.Addr)
	assert.Equal(t, "/tmp/a.db", cfg.DBPath)
	assert.Equal(t, "/tmp/a.log", cfg.LogPath)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 0.5, cfg.LoginRate)
	assert.Equal(t, 3, cfg.LoginBurst)
	assert.True(t, cfg.TrustProxy)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Load("report",
		[]string{"-api", "http://flag:1", "-a", ":5000", "-debug", "usuarios"},
		envOf(map[string]string{"AQUAGEST_API_URL": "http://env:1", "AQUAGEST_ADDR": ":4000"}),
		io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "http://flag:1", cfg.APIURL)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"usuarios"}, cfg.Args)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	_, err := Load("serve", nil, envOf(map[string]string{"AQUAGEST_DEBUG": "maybe"}), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AQUAGEST_DEBUG")
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load("serve", []string{"-login-burst", "0"}, envOf(nil), io.Discard)
	assert.Error(t, err)

	_, err = Load("serve", []string{"-api", ""}, envOf(nil), io.Discard)
	assert.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	_, err := Load("serve", []string{"-h"}, envOf(nil), io.Discard)
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AQUAGEST_TEST_DOTENV=from-file\n"), 0o600))
	t.Setenv("AQUAGEST_TEST_DOTENV", "")
	os.Unsetenv("AQUAGEST_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("AQUAGEST_TEST_DOTENV"))
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AQUAGEST_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("AQUAGEST_TEST_KEEP", "from-env")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv("AQUAGEST_TEST_KEEP"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
