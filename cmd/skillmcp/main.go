package main

import (
	"context"
	"os"
	"time"

	"github.com/jingkaihe/skillmcp/pkg/config"
	"github.com/jingkaihe/skillmcp/pkg/logger"
	"github.com/jingkaihe/skillmcp/pkg/presenter"
	"github.com/jingkaihe/skillmcp/pkg/skills"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// appConfig is populated before any subcommand runs
	appConfig config.Config

	tracingShutdown = func(context.Context) error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "skillmcp",
	Short: "Serve SKILL.md skills over the Model Context Protocol",
	Long: `skillmcp discovers skills in a directory tree, where each skill is a directory
containing a SKILL.md file with YAML frontmatter declaring its name and description,
and serves them to LLM clients as MCP tools.

Files are only ever read from inside a skill directory; paths that resolve outside
of it, including through symlinks, are rejected.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default $HOME/.skillmcp/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringP("skills-dir", "s", "", "Directory containing skill subdirectories with SKILL.md files")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "fmt", "Log format (fmt or json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output")

	viper.BindPFlag("skills_dir", rootCmd.PersistentFlags().Lookup("skills-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// setup loads configuration and initializes logging and tracing
func setup(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(viper.GetViper(), configFile); err != nil {
		return err
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	appConfig = cfg

	shutdown, err := initTracing(cmd.Context(), cfg.Tracing)
	if err != nil {
		return errors.Wrap(err, "failed to initialize tracing")
	}
	tracingShutdown = shutdown
	return nil
}

// newPresenter creates the terminal presenter honoring --quiet
func newPresenter(cmd *cobra.Command) presenter.Presenter {
	p := presenter.New()
	if quiet, err := cmd.Flags().GetBool("quiet"); err == nil {
		p.SetQuiet(quiet)
	}
	return p
}

// newRegistry builds the registry for the configured skills directory
func newRegistry(cfg config.Config) (*skills.Registry, error) {
	if cfg.SkillsDir == "" {
		return nil, errors.New("skills directory is required, set it via --skills-dir or SKILLS_DIR")
	}

	var opts []skills.Option
	if cfg.ManifestName != "" {
		opts = append(opts, skills.WithManifestName(cfg.ManifestName))
	}
	return skills.NewRegistry(cfg.SkillsDir, opts...)
}

func main() {
	ctx := context.Background()

	err := rootCmd.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := tracingShutdown(shutdownCtx); shutdownErr != nil {
		logger.G(ctx).WithError(shutdownErr).Warn("failed to flush traces")
	}

	if err != nil {
		presenter.Error(err, "")
		os.Exit(1)
	}
}
