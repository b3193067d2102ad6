package main

import (
	"context"

	"github.com/jingkaihe/skillmcp/pkg/telemetry"
	"github.com/jingkaihe/skillmcp/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
)

// initTracing initializes the OpenTelemetry tracing system
func initTracing(ctx context.Context, cfg telemetry.Config) (func(context.Context) error, error) {
	cfg.ServiceVersion = version.Get().Version
	return telemetry.InitTracer(ctx, cfg)
}

// withTracing wraps a Cobra command's RunE with a span covering its execution
func withTracing(cmd *cobra.Command) *cobra.Command {
	originalRunE := cmd.RunE

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		attrs := []attribute.KeyValue{
			attribute.String("command.name", cmd.Name()),
			attribute.String("command.path", cmd.CommandPath()),
			attribute.Int("args.count", len(args)),
		}
		cmd.Flags().Visit(func(flag *pflag.Flag) {
			attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
		})

		ctx, span := telemetry.StartSpan(cmd.Context(), "cli.command", attrs...)
		cmd.SetContext(ctx)

		err := originalRunE(cmd, args)
		telemetry.EndSpan(span, err)
		return err
	}

	return cmd
}

func init() {
	rootCmd.PersistentFlags().Bool("tracing-enabled", false, "Enable OpenTelemetry tracing (exporter set via OTEL_EXPORTER_OTLP_* variables)")
	rootCmd.PersistentFlags().String("tracing-sampler", "always", "Tracing sampler type (always, never, ratio)")
	rootCmd.PersistentFlags().Float64("tracing-ratio", 1, "Sampling ratio when using ratio sampler")

	viper.BindPFlag("tracing.enabled", rootCmd.PersistentFlags().Lookup("tracing-enabled"))
	viper.BindPFlag("tracing.sampler", rootCmd.PersistentFlags().Lookup("tracing-sampler"))
	viper.BindPFlag("tracing.ratio", rootCmd.PersistentFlags().Lookup("tracing-ratio"))
}
