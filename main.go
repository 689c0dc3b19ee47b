package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/piyushdaiya/dotescrow-kit/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

type configKey struct{}

func unwrapConfig(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

func CmdDotescrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dotescrow",
		Short:        "Validate, convert and inspect Polkadot escrow accounts",
		Args:         cobra.ExactArgs(0),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.LogLevel, _ = flags.GetString("log-level")
			}
			if flags.Changed("engine-url") {
				cfg.EngineURL, _ = flags.GetString("engine-url")
			}
			if flags.Changed("api-url") {
				cfg.CommentAPIURL, _ = flags.GetString("api-url")
			}
			switch output, _ := flags.GetString("output"); output {
			case outputJSON, outputYAML:
			default:
				return fmt.Errorf("unsupported output %q, use %s or %s", output, outputJSON, outputYAML)
			}
			config.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
			logrus.WithField("engine", cfg.EngineURL).Debug("config loaded")

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringP("output", "o", outputJSON, "Output format: json or yaml")
	pf.String("log-level", "", "Log level (overrides LOG_LEVEL)")
	pf.String("engine-url", "", "Watchlist engine URL (overrides WATCHLIST_ENGINE_URL)")
	pf.String("api-url", "", "Comment service URL (overrides COMMENT_API_URL)")

	cmd.AddCommand(CmdValidate())
	cmd.AddCommand(CmdInspect())
	cmd.AddCommand(CmdFormat())
	cmd.AddCommand(CmdConvert())
	cmd.AddCommand(CmdComments())
	return cmd
}

// printResult renders v in the format picked by --output.
func printResult(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	if output, _ := cmd.Flags().GetString("output"); output == outputYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	if err := CmdDotescrow().Execute(); err != nil {
		os.Exit(1)
	}
}
