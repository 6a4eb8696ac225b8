// Package domain defines the core business entities for pageform.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Project: An uploaded PDF and its derived pages
//   - Page: One page of a project with extracted text and cached form HTML
//   - FormResult: Generated form HTML tagged with where it came from
//   - BulkReport: A batch of page generations scheduled for a project
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
