package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/convcom/convcom/internal/pkg/ai"
	"github.com/convcom/convcom/internal/pkg/config"
	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/security"
)

// SetupAnswers holds what the setup wizard collected.
type SetupAnswers struct {
	GroqAPIKey      string
	AnthropicAPIKey string
	Model           ai.Model
}

// Values converts the answers into config file entries.
func (a SetupAnswers) Values() map[string]string {
	values := map[string]string{
		config.KeyGroqAPIKey:      strings.TrimSpace(a.GroqAPIKey),
		config.KeyAnthropicAPIKey: strings.TrimSpace(a.AnthropicAPIKey),
	}
	if a.Model != "" && a.Model != ai.DefaultModel {
		values[config.KeyModel] = a.Model.String()
	}
	return values
}

// Validate checks that at least one key was given and that the model's
// provider has one.
func (a SetupAnswers) Validate() error {
	groq := strings.TrimSpace(a.GroqAPIKey)
	anthropic := strings.TrimSpace(a.AnthropicAPIKey)
	if groq == "" && anthropic == "" {
		return apperrors.NewMissingAPIKeyError()
	}

	model := a.Model
	if model == "" {
		model = ai.DefaultModel
	}
	switch model.Provider() {
	case ai.ProviderGroq:
		if groq == "" {
			return apperrors.NewProviderNotConfiguredError(string(ai.ProviderGroq), ai.ProviderGroq.EnvVar())
		}
	case ai.ProviderAnthropic:
		if anthropic == "" {
			return apperrors.NewProviderNotConfiguredError(string(ai.ProviderAnthropic), ai.ProviderAnthropic.EnvVar())
		}
	}
	return nil
}

// validateOptionalKey accepts an empty key or one without embedded whitespace.
func validateOptionalKey(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return security.ValidateAPIKey(strings.TrimSpace(s))
}

// modelOptions lists the catalog as select options, default model first.
func modelOptions() []huh.Option[ai.Model] {
	options := []huh.Option[ai.Model]{
		huh.NewOption(ai.DefaultModel.String()+" (default)", ai.DefaultModel),
	}
	for _, m := range ai.Models() {
		if m == ai.DefaultModel {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", m, m.Provider()), m))
	}
	return options
}

// RunSetupWizard asks for credentials and a default model, then writes the config file.
func RunSetupWizard(cfgMgr config.Manager, out io.Writer) error {
	answers := SetupAnswers{Model: ai.DefaultModel}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("convcom setup").
				Description(security.PrivacyNotice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Groq API key").
				Description("Leave empty to skip. Get one at https://console.groq.com").
				Value(&answers.GroqAPIKey).
				EchoMode(huh.EchoModePassword).
				Validate(validateOptionalKey),
			huh.NewInput().
				Title("Anthropic API key").
				Description("Leave empty to skip. Get one at https://console.anthropic.com").
				Value(&answers.AnthropicAPIKey).
				EchoMode(huh.EchoModePassword).
				Validate(validateOptionalKey),
			huh.NewSelect[ai.Model]().
				Title("Default model").
				Options(modelOptions()...).
				Value(&answers.Model),
		),
	).WithOutput(out)

	if err := form.Run(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidArguments, "setup cancelled")
	}

	if err := answers.Validate(); err != nil {
		return err
	}

	for provider, key := range map[ai.ProviderID]string{
		ai.ProviderGroq:      answers.GroqAPIKey,
		ai.ProviderAnthropic: answers.AnthropicAPIKey,
	} {
		if key = strings.TrimSpace(key); key == "" {
			continue
		}
		if err := security.ValidateAPIKeyFormat(string(provider), key); err != nil {
			NewManager(out, false).ShowWarning(err.Error())
		}
	}

	if err := cfgMgr.Init(answers.Values()); err != nil {
		return err
	}

	NewManager(out, false).ShowSuccess("Configuration saved to " + cfgMgr.GetConfigPath())
	return nil
}
