package ai

import (
	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.ProviderValidator = (*ConfigValidator)(nil)

// ConfigValidator validates provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new provider config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateProvider validates one provider's configuration by pinging it.
func (v *ConfigValidator) ValidateProvider(kind domain.ProviderKind, settings domain.ProviderSettings) error {
	return ValidateProviderConfig(kind, settings)
}
