package config

import (
	"flag"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	want := &Config{
		HTTPAddr:          ":8080",
		Timeout:           10 * time.Second,
		MaxBodyBytes:      1 << 20,
		GraphiQL:          true,
		DocumentCacheSize: 256,
		Introspection:     true,
		LogLevel:          "info",
		OTelService:       "gqlvalidate",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom_Env(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"GQLVALIDATE_SCHEMA":       "a.graphql,b.graphql",
		"GQLVALIDATE_RULES":        "rules.yaml",
		"GQLVALIDATE_TIMEOUT":      "3s",
		"GQLVALIDATE_GRAPHIQL":     "false",
		"GQLVALIDATE_CORS_ORIGINS": "*",
		"SCHEMA":                   "ignored.graphql",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.graphql", "b.graphql"}, cfg.SchemaFiles)
	assert.Equal(t, "rules.yaml", cfg.RulesFile)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.False(t, cfg.GraphiQL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFrom_BadValue(t *testing.T) {
	_, err := LoadFrom(map[string]string{"GQLVALIDATE_TIMEOUT": "soon"})
	require.Error(t, err)
}

func TestFlagsOverrideEnv(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"GQLVALIDATE_SCHEMA":    "env.graphql",
		"GQLVALIDATE_HTTP_ADDR": ":9000",
		"GQLVALIDATE_PRETTY":    "true",
	})
	require.NoError(t, err)

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.RegisterServeFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"-schema", "a.graphql", "-schema", "b.graphql",
		"-http.addr", ":7000",
		"-server.metadata-header", "X-Tenant",
	}))

	assert.Equal(t, []string{"a.graphql", "b.graphql"}, cfg.SchemaFiles)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, []string{"X-Tenant"}, cfg.MetadataHeaders)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "loud"
	cfg.Timeout = -time.Second
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), `Config.LogLevel: failed "loglevel" check, got loud`)
	assert.Contains(t, err.Error(), `Config.Timeout: failed "gte" check, got -1s`)

	cfg, err = LoadFrom(map[string]string{})
	require.NoError(t, err)
	cfg.MaxBodyBytes = -1
	cfg.DocumentCacheSize = -1
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "Config.MaxBodyBytes")
	assert.Contains(t, err.Error(), "Config.DocumentCacheSize")
	assert.NotContains(t, err.Error(), "Config.LogLevel")
}
