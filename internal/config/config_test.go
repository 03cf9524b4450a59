package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"ROWSTORE_BASE_URL", "ROWSTORE_AUTH_TOKEN", "ROWSTORE_PROXY", "POSTGRES_DSN", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, "rowstore:\n  base_url: http://rows.local/api\n")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "Token", cfg.RowStore.AuthScheme)
	assert.Equal(t, 3, cfg.RowStore.RetryCount)
	assert.Equal(t, 5*time.Minute, cfg.RowStore.CacheTTL)
	assert.True(t, cfg.RowStore.UserFieldNames)
	assert.Equal(t, int64(4400), cfg.RowStore.Tables.Conteudos)
	assert.Equal(t, int64(34670), cfg.RowStore.Fields.Conteudos.FotosElenco)
	assert.Equal(t, int64(35694), cfg.RowStore.Fields.Sessoes.Tipo)
	assert.False(t, cfg.Postgres.Enabled())
}

func TestLoadConfigFrom_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, `
rowstore:
  base_url: http://rows.local/api
  cache_ttl: 30s
  tables:
    conteudos: 1
`)
	t.Setenv("ROWSTORE_AUTH_TOKEN", "secret")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@localhost:5432/pipocaflix")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RowStore.CacheTTL)
	assert.Equal(t, int64(1), cfg.RowStore.Tables.Conteudos)
	assert.Equal(t, int64(5175), cfg.RowStore.Tables.Episodios)
	assert.Equal(t, "secret", cfg.RowStore.AuthToken)
	assert.True(t, cfg.Postgres.Enabled())
}

func TestLoadConfigFrom_Validation(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfigFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rowstore.base_url")

	dir := writeConfig(t, "rowstore:\n  base_url: http://rows.local/api\n  retry_count: 0\n")
	_, err = LoadConfigFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry_count")
}
