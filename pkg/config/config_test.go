package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, configFile string) *viper.Viper {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	require.NoError(t, Init(v, configFile))
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.SkillsDir)
	assert.Equal(t, "SKILL.md", cfg.ManifestName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "fmt", cfg.LogFormat)
	assert.Equal(t, TransportStdio, cfg.MCP.Transport)
	assert.Equal(t, "0.0.0.0", cfg.MCP.Host)
	assert.Equal(t, 8000, cfg.MCP.Port)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "skillmcp", cfg.Tracing.ServiceName)
}

func TestLoadLegacyEnvironment(t *testing.T) {
	t.Setenv("SKILLS_DIR", "/srv/skills")
	t.Setenv("MCP_TRANSPORT", "SSE")
	t.Setenv("MCP_PORT", "9000")
	t.Setenv("MCP_HOSTNAME", "127.0.0.1")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "/srv/skills", cfg.SkillsDir)
	assert.Equal(t, TransportSSE, cfg.MCP.Transport)
	assert.Equal(t, 9000, cfg.MCP.Port)
	assert.Equal(t, "127.0.0.1", cfg.MCP.Host)
}

func TestLoadPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("SKILLS_DIR", "/legacy")
	t.Setenv("SKILLMCP_SKILLS_DIR", "/prefixed")
	t.Setenv("SKILLMCP_LOG_LEVEL", "debug")
	t.Setenv("SKILLMCP_TRACING_ENABLED", "true")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "/prefixed", cfg.SkillsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
skills_dir: /opt/skills
log_format: json
mcp:
  transport: http
  port: 8123
tracing:
  enabled: true
  sampler: ratio
  ratio: 0.25
`), 0o644))

	cfg, err := Load(newViper(t, path))
	require.NoError(t, err)

	assert.Equal(t, "/opt/skills", cfg.SkillsDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, TransportHTTP, cfg.MCP.Transport)
	assert.Equal(t, 8123, cfg.MCP.Port)
	assert.Equal(t, "0.0.0.0", cfg.MCP.Host)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "ratio", cfg.Tracing.SamplerType)
	assert.Equal(t, 0.25, cfg.Tracing.SamplerRatio)
}

func TestInitMissingExplicitConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	err := Init(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate(t *testing.T) {
	valid := Config{SkillsDir: "/srv/skills", MCP: MCPConfig{Transport: TransportStdio}}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid stdio", func(*Config) {}, ""},
		{"valid sse", func(c *Config) { c.MCP.Transport = TransportSSE; c.MCP.Port = 8000 }, ""},
		{"stdio ignores port", func(c *Config) { c.MCP.Port = 0 }, ""},
		{"missing skills dir", func(c *Config) { c.SkillsDir = "" }, "skills directory is required"},
		{"unknown transport", func(c *Config) { c.MCP.Transport = "websocket" }, "unsupported transport"},
		{"bad port", func(c *Config) { c.MCP.Transport = TransportHTTP; c.MCP.Port = 70000 }, "invalid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
