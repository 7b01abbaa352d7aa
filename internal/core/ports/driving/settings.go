package driving

import "github.com/custodia-labs/drafter/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetProvider configures one provider's connection settings.
	SetProvider(kind domain.ProviderKind, settings domain.ProviderSettings) error

	// SetPrimary selects the provider tried first.
	SetPrimary(kind domain.ProviderKind) error

	// Validate checks the current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateProviderConfig validates one provider's configuration by pinging it.
	ValidateProviderConfig(kind domain.ProviderKind) error
}
