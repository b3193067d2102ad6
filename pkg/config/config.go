// Package config loads skillmcp settings from flags, environment variables and
// an optional YAML config file through viper.
package config

import (
	"strings"

	"github.com/jingkaihe/skillmcp/pkg/telemetry"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable viper looks up
const EnvPrefix = "SKILLMCP"

// Transport names accepted by the MCP server
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// Config is the full application configuration
type Config struct {
	SkillsDir    string           `mapstructure:"skills_dir" yaml:"skills_dir"`
	ManifestName string           `mapstructure:"manifest_name" yaml:"manifest_name"`
	LogLevel     string           `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string           `mapstructure:"log_format" yaml:"log_format"`
	MCP          MCPConfig        `mapstructure:"mcp" yaml:"mcp"`
	Tracing      telemetry.Config `mapstructure:"tracing" yaml:"tracing"`
}

// MCPConfig configures the MCP server transport
type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
}

// legacyEnv maps config keys to the environment variables used by earlier
// releases of the server, which remain supported next to the prefixed ones.
var legacyEnv = map[string]string{
	"skills_dir":    "SKILLS_DIR",
	"mcp.transport": "MCP_TRANSPORT",
	"mcp.port":      "MCP_PORT",
	"mcp.host":      "MCP_HOSTNAME",
}

// SetDefaults registers default values for every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("skills_dir", "")
	v.SetDefault("manifest_name", "SKILL.md")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("mcp.transport", TransportStdio)
	v.SetDefault("mcp.host", "0.0.0.0")
	v.SetDefault("mcp.port", 8000)
	v.SetDefault("mcp.base_url", "")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "skillmcp")
	v.SetDefault("tracing.sampler", "always")
	v.SetDefault("tracing.ratio", 1.0)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
}

// Init wires environment variables and the config file into v. When
// configFile is empty, config.yaml is looked up in $HOME/.skillmcp and the
// working directory; a missing file is not an error.
func Init(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return errors.Wrapf(err, "failed to bind environment for %s", key)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", configFile)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.skillmcp")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config file")
		}
	}
	return nil
}

// Load decodes the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal configuration")
	}

	cfg.MCP.Transport = strings.ToLower(strings.TrimSpace(cfg.MCP.Transport))
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "skillmcp"
	}

	return cfg, nil
}

// Validate checks the settings needed to serve skills
func (c Config) Validate() error {
	if c.SkillsDir == "" {
		return errors.New("skills directory is required, set it via --skills-dir or SKILLS_DIR")
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportSSE, TransportHTTP:
	default:
		return errors.Errorf("unsupported transport %q, must be one of stdio, sse, http", c.MCP.Transport)
	}
	if c.MCP.Transport != TransportStdio && (c.MCP.Port <= 0 || c.MCP.Port > 65535) {
		return errors.Errorf("invalid port %d", c.MCP.Port)
	}
	return nil
}
