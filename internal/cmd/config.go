package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/convcom/convcom/internal/pkg/config"
	"github.com/convcom/convcom/internal/pkg/security"
	"github.com/convcom/convcom/internal/pkg/ui"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd(env environment) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage convcom configuration",
		Long: `Manage the convcom configuration file.

The file is a dotenv file stored at ~/.config/conv_commit_ai/.env.commits by
default. Environment variables always take precedence over values in the file.

Supported keys:
  GROQ_API_KEY               (alias: groq)
  ANTHROPIC_API_KEY          (alias: anthropic)
  CONVCOM_MODEL              (alias: model)
  CONVCOM_GROQ_ENDPOINT      (alias: groq_endpoint)
  CONVCOM_ANTHROPIC_ENDPOINT (alias: anthropic_endpoint)`,
	}

	configCmd.AddCommand(newConfigInitCmd(env))
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigGetCmd())
	configCmd.AddCommand(newConfigListCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configManager(cmd *cobra.Command) (*config.ViperManager, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return config.NewManager(configPath)
}

// displayValue masks credentials.
func displayValue(key, value string) string {
	if value != "" && config.IsSecret(key) {
		return security.MaskAPIKey(value)
	}
	return value
}

// newConfigInitCmd creates the 'config init' subcommand.
func newConfigInitCmd(env environment) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file",
		Long: `Create the configuration file with permissions 0600.

On a terminal an interactive setup asks for API keys and a default model.
Otherwise a file listing every supported key with an empty value is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager(cmd)
			if err != nil {
				return err
			}

			if env.interactive && !mgr.ConfigExists() {
				return ui.RunSetupWizard(mgr, cmd.ErrOrStderr())
			}

			if err := mgr.Init(nil); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at %s\n", mgr.GetConfigPath())
			fmt.Fprintln(cmd.OutOrStdout(), "Set your API key with 'convcom config set groq <key>' or 'convcom config set anthropic <key>'.")
			return nil
		},
	}
}

// newConfigSetCmd creates the 'config set' subcommand.
func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value in the file, creating the file if needed.

Examples:
  convcom config set groq gsk_xxx
  convcom config set ANTHROPIC_API_KEY sk-ant-xxx
  convcom config set model claude-3-5-haiku-20241022`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager(cmd)
			if err != nil {
				return err
			}

			if err := mgr.Set(args[0], args[1]); err != nil {
				return err
			}

			key := config.NormalizeKey(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, displayValue(key, args[1]))
			return nil
		},
	}
}

// newConfigGetCmd creates the 'config get' subcommand.
func newConfigGetCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager(cmd)
			if err != nil {
				return err
			}

			value, err := mgr.Get(args[0])
			if err != nil {
				return err
			}

			if !reveal {
				value = displayValue(config.NormalizeKey(args[0]), value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print API keys unmasked")
	return cmd
}

// newConfigListCmd creates the 'config list' subcommand.
func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `Display every supported key, its effective value and where it comes from.

API keys are masked, showing only the last 4 characters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager(cmd)
			if err != nil {
				return err
			}

			entries, err := mgr.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				source := string(e.Source)
				if source == "" {
					source = "unset"
				}
				fmt.Fprintf(out, "%-28s %-12s (%s)\n", e.Key, displayValue(e.Key, e.Value), source)
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' subcommand.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := configManager(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mgr.GetConfigPath())
			return nil
		},
	}
}
