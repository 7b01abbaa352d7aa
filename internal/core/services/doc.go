// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - GenerationOrchestrator: retry, fallback and circuit breaking across providers
//   - ContextAssembler: numbered grounding context and grounded composition
//   - RetrievalService: keeps the fragment index in step with its store
//   - SettingsService: stored settings with environment overrides
//
// Services are pure Go with no CGO.
package services
