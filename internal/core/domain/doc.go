// Package domain defines the core business entities for readfold.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Item: A saved reading entry fetched from the remote source
//   - Cursor: The persisted incremental sync position
//   - Ledger: The merged-ids ledger carried on a merge bucket document
//   - Settings: User configuration for the sync engine
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
