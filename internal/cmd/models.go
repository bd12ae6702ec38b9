package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/convcom/convcom/internal/pkg/ai"
	"github.com/convcom/convcom/internal/pkg/config"
	"github.com/convcom/convcom/internal/pkg/ui"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported models",
		Long: `List every model convcom can use, the provider that serves it, the
default model, and whether the provider has an API key configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.RenderModelTable(out, modelRows(cfg)))
			return nil
		},
	}
}

// modelRows builds the table rows. No credentials is not an error here;
// every model is then reported as unavailable.
func modelRows(cfg *config.Config) []ui.ModelRow {
	active := map[ai.ProviderID]bool{
		ai.ProviderGroq:      cfg.GroqAPIKey != "",
		ai.ProviderAnthropic: cfg.AnthropicAPIKey != "",
	}

	configured := ai.Model(cfg.Model)
	if !configured.Known() {
		configured = ai.DefaultModel
	}

	rows := make([]ui.ModelRow, 0, len(ai.Models()))
	for _, m := range ai.Models() {
		rows = append(rows, ui.ModelRow{
			Model:     m.String(),
			Provider:  m.Provider().String(),
			Default:   m == configured,
			Available: active[m.Provider()],
		})
	}
	return rows
}
