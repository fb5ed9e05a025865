package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("environment overrides defaults", func(t *testing.T) {
		os.Args = []string{"server"}
		t.Chdir(t.TempDir())
		t.Setenv("DATABASE_DSN", "postgres://env")
		t.Setenv("ACCESS_TOKEN_VALIDITY", "90s")
		t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
		t.Setenv("MAX_MESSAGE_SIZE", "2048")

		c := &Config{}
		c.LoadDefaults()
		parseEnv(c)

		assert.Equal(t, "postgres://env", c.DatabaseDSN)
		assert.Equal(t, 90*time.Second, c.AccessTokenValidityDuration)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.AllowedOrigins)
		assert.Equal(t, int64(2048), c.MaxMessageSize)
		assert.Equal(t, ":5001", c.HTTPAddr)
	})

	t.Run("explicit dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "chat.env")
		require.NoError(t, os.WriteFile(path, []byte("S3_REGION=eu-north-1\nLOG_LEVEL=debug\n"), 0o600))
		t.Setenv("S3_REGION", "")
		os.Unsetenv("S3_REGION")
		t.Setenv("LOG_LEVEL", "warn")

		os.Args = []string{"server", "-env", path}

		c := &Config{}
		c.LoadDefaults()
		parseEnv(c)

		assert.Equal(t, "eu-north-1", c.S3Region)
		// process environment wins over the file
		assert.Equal(t, "warn", c.LogLevel)
	})

	t.Run("missing explicit dotenv file panics", func(t *testing.T) {
		os.Args = []string{"server", "-env", filepath.Join(t.TempDir(), "nope.env")}
		c := &Config{}
		require.Panics(t, func() { parseEnv(c) })
	})

	t.Run("invalid value panics", func(t *testing.T) {
		os.Args = []string{"server"}
		t.Chdir(t.TempDir())
		t.Setenv("MAX_ATTACHMENT_SIZE", "lots")
		c := &Config{}
		require.Panics(t, func() { parseEnv(c) })
	})
}
