package driven

import "github.com/custodia-labs/drafter/internal/core/domain"

// ProviderValidator validates provider configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying services.
type ProviderValidator interface {
	// ValidateProvider validates one provider's configuration by pinging it.
	// Returns nil if the configuration is valid or the provider cannot be pinged.
	ValidateProvider(kind domain.ProviderKind, settings domain.ProviderSettings) error
}
