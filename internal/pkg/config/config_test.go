package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  request_timeout: 3
database:
  driver: memory
auth:
  jwt:
    secret: file-secret
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout())
	assert.Equal(t, "file-secret", cfg.Auth.JWT.Secret)
	assert.Equal(t, 7200, cfg.Auth.JWT.AccessTokenExpire)
	assert.True(t, cfg.Auth.Local.AllowRegistration)
	assert.Equal(t, "(uid=%s)", cfg.Auth.LDAP.UserFilter)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt:
    secret: file-secret
`)
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_DSN", "host=db user=ct")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "host=db user=ct", cfg.Database.GetDSN())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server:\n  port: 8080\n"))
	assert.ErrorContains(t, err, "auth.jwt.secret")

	_, err = Load(writeConfig(t, "auth:\n  jwt:\n    secret: s\ndatabase:\n  driver: oracle\n"))
	assert.ErrorContains(t, err, "oracle")
}

func TestGetDSN(t *testing.T) {
	pg := &DatabaseConfig{Driver: "postgres", Host: "h", Port: 5432, Username: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable TimeZone=UTC", pg.GetDSN())

	my := &DatabaseConfig{Driver: "mysql", Host: "h", Port: 3306, Username: "u", Password: "p", Database: "d"}
	assert.Equal(t, "u:p@tcp(h:3306)/d?charset=utf8mb4&parseTime=True&loc=Local", my.GetDSN())

	assert.Equal(t, "d.db", (&DatabaseConfig{Driver: "sqlite", Database: "d"}).GetDSN())
}
