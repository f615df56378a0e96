package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
api:
  environment: production
  port: "9090"
  jwt_signing_key: 0123456789abcdef0123456789abcdef
  jwt_ttl: 2h
gin:
  mode: release
postgres:
  host: db
  port: "5432"
  user: stagepass
  password: secret
  db: stagepass
  lock_timeout: 3s
  statement_timeout: 10s
redis:
  url: redis://cache:6379/0
qr:
  size: 400
  recovery_level: high
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	conf, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, conf.API.Environment)
	assert.Equal(t, "9090", conf.API.Port)
	assert.Equal(t, 2*time.Hour, conf.API.JWTTTL)
	assert.Equal(t, 3*time.Second, conf.Postgres.LockTimeout)
	assert.Equal(t, "disable", conf.Postgres.SSLMode)
	assert.Equal(t, int64(60), conf.Redis.ValidationLimit)
	assert.Equal(t, time.Minute, conf.Redis.Window)
	assert.Equal(t, 400, conf.QR.Size)
	assert.Contains(t, conf.Postgres.DSN(), "statement_timeout=10000")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "override-host")
	t.Setenv("API_PORT", "7070")

	conf, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "override-host", conf.Postgres.Host)
	assert.Equal(t, "7070", conf.API.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"short signing key": `
api:
  jwt_signing_key: short
gin: {mode: release}
postgres: {host: db}
redis: {url: ""}
qr: {size: 300}
`,
		"unknown qr recovery level": `
api:
  jwt_signing_key: 0123456789abcdef0123456789abcdef
gin: {mode: release}
postgres: {host: db}
redis: {url: ""}
qr: {recovery_level: extreme}
`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, validConfig)

	changed := make(chan *AppConfig, 1)
	require.NoError(t, Watch(path, func(c *AppConfig) {
		select {
		case changed <- c:
		default:
		}
	}, func(error) {}))

	updated := strings.Replace(validConfig, "environment: production", "environment: production\n  log_level: debug", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.API.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}
