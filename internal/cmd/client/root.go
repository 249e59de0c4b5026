package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/config"
	"github.com/One-Minute-Stack/oneminutelogs-next/pkg/oml"
)

// NewRoot constructs the root Cobra command for the oml client.
// It registers the send, query, and tail commands.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "oml",
		Short: "oneminutelogs client commands",
	}
	root.PersistentFlags().String("config", "", "Path to YAML config file")
	root.PersistentFlags().String("server", "", "Collector base URL")
	root.PersistentFlags().String("api-key", "", "API key sent as bearer credential")
	root.PersistentFlags().String("app", "", "Application name")
	root.PersistentFlags().String("environment", "", "Deployment environment")
	root.PersistentFlags().String("log-level", "", "SDK log level: debug|info|warn|error")
	root.PersistentFlags().String("log-format", "", "SDK log format: text|json")

	root.AddCommand(newSendCommand())
	root.AddCommand(newQueryCommand())
	root.AddCommand(newTailCommand())
	return root
}

// loadConfig layers the config file, OML_* environment variables, and flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	config.FromEnv(&cfg)

	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	if v, _ := cmd.Flags().GetString("api-key"); v != "" {
		cfg.APIKey = v
	}
	if v, _ := cmd.Flags().GetString("app"); v != "" {
		cfg.AppName = v
	}
	if v, _ := cmd.Flags().GetString("environment"); v != "" {
		cfg.Environment = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	return cfg, nil
}

func newClient(cmd *cobra.Command) (*oml.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return oml.New(cfg)
}

// parseFilters turns positional key=value arguments into a filter set.
func parseFilters(args []string) (oml.Filters, error) {
	if len(args) == 0 {
		return nil, nil
	}
	f := oml.Filters{}
	for _, kv := range args {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid filter, expected key=value: %s", kv)
		}
		f[parts[0]] = parts[1]
	}
	return f, nil
}
