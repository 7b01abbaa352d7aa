// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Provider: Generates text from a prompt over one transport
//   - RetrievalIndex: Lexical similarity search over fragments
//   - ConfigStore: Application configuration
//   - Normaliser: Text extraction for one file format before chunking
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FragmentStore: Fragment persistence. Without it, the index lives only for the process.
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults are used.
//   - MetricsRecorder: Generation telemetry. Without it, nothing is recorded.
//   - Pinger: Connectivity checks. Providers without it are validated by configuration only.
//   - ProviderValidator: Settings-time provider checks. Without it, validation is skipped.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
