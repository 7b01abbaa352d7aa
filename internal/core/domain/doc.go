// Package domain defines the core business entities for drafter.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Fragment: An indexed unit of retrievable text
//   - RankedFragment: A fragment scored against a query
//   - GenerationOptions / GenerationResult: One generation request and its outcome
//   - ContentRequest / GroundedResult: A grounded writing request and its outcome
//   - AppSettings: Provider, orchestrator and retrieval configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
