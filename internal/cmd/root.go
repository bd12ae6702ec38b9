// Package cmd contains the CLI command definitions for convcom.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/convcom/convcom/internal/app"
	"github.com/convcom/convcom/internal/pkg/ai"
	"github.com/convcom/convcom/internal/pkg/config"
	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/git"
	"github.com/convcom/convcom/internal/pkg/processor"
	"github.com/convcom/convcom/internal/pkg/prompt"
	"github.com/convcom/convcom/internal/pkg/security"
	"github.com/convcom/convcom/internal/pkg/ui"
)

// environment carries what differs between a real terminal session and tests.
type environment struct {
	workDir     string
	interactive bool
}

// GenerateFlags holds the flags for the default generate action.
type GenerateFlags struct {
	Model string
	Focus string
}

// NewRootCmd creates the root command for the convcom CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	return newRootCmd(version, commitHash, date, environment{
		interactive: ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stderr),
	})
}

func newRootCmd(version, commitHash, date string, env environment) *cobra.Command {
	flags := &GenerateFlags{}

	rootCmd := &cobra.Command{
		Use:   "convcom",
		Short: "Conventional commit messages from staged changes",
		Long: `convcom reads the staged changes of the current git repository, asks a
hosted language model (Groq or Anthropic) for a conventional commit message
and prints it to stdout.

Nothing else is written to stdout, so the output can be piped straight into git:

  git commit -m "$(convcom)"
  convcom -f "mention the retry fix" | git commit -F -`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			apperrors.SetVerbose(verbose)
			apperrors.SetRunID(uuid.NewString())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, env, flags)
		},
	}

	rootCmd.SetVersionTemplate(`convcom {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging on stderr")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.config/conv_commit_ai/.env.commits)")

	rootCmd.Flags().StringVarP(&flags.Model, "model", "m", "", "Model to use (see 'convcom models')")
	rootCmd.Flags().StringVarP(&flags.Focus, "focus", "f", "", "What the commit message should emphasize")

	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newConfigCmd(env))

	return rootCmd
}

// runGenerate executes the default action.
func runGenerate(cmd *cobra.Command, env environment, flags *GenerateFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")

	uiMgr := ui.NewManager(cmd.ErrOrStderr(), env.interactive && !verbose)

	// The embedded template is checked before anything else.
	builder, err := prompt.NewBuilder()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	warnKeyFormats(uiMgr, cfg)

	registry, err := ai.NewRegistry(
		ai.Credentials{
			GroqAPIKey:      cfg.GroqAPIKey,
			AnthropicAPIKey: cfg.AnthropicAPIKey,
		},
		ai.WithEndpoint(ai.ProviderGroq, cfg.GroqEndpoint),
		ai.WithEndpoint(ai.ProviderAnthropic, cfg.AnthropicEndpoint),
	)
	if err != nil {
		return err
	}
	apperrors.Debug("Active providers: %v", registry.ActiveProviders())

	model, err := resolveModel(flags.Model, cfg.Model)
	if err != nil {
		return err
	}
	if err := registry.Validate(model); err != nil {
		return err
	}
	apperrors.Debug("Using model %s (%s)", model, model.Provider())

	client := git.NewClientWithWorkDir(env.workDir)
	root, err := client.Discover(ctx)
	if err != nil {
		return err
	}
	apperrors.Debug("Repository root: %s", root)

	service := app.NewService(processor.NewCollector(client), builder, registry, uiMgr)
	msg, err := service.Generate(ctx, app.Options{
		Model: model,
		Focus: flags.Focus,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func loadConfig(configPath string) (*config.Config, error) {
	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return nil, err
	}
	apperrors.Debug("Config file: %s (exists: %t)", cfgMgr.GetConfigPath(), cfgMgr.ConfigExists())
	return cfgMgr.Load()
}

// resolveModel picks the model: flag, then config, then the default.
func resolveModel(flagValue, configValue string) (ai.Model, error) {
	name := strings.TrimSpace(flagValue)
	if name == "" {
		name = strings.TrimSpace(configValue)
	}
	if name == "" {
		return ai.DefaultModel, nil
	}
	return ai.ParseModel(name)
}

func warnKeyFormats(uiMgr *ui.Manager, cfg *config.Config) {
	for _, k := range []struct {
		provider ai.ProviderID
		key      string
	}{
		{ai.ProviderGroq, cfg.GroqAPIKey},
		{ai.ProviderAnthropic, cfg.AnthropicAPIKey},
	} {
		if k.key == "" {
			continue
		}
		if err := security.ValidateAPIKeyFormat(k.provider.String(), k.key); err != nil {
			uiMgr.ShowWarning(err.Error())
		}
	}
}
