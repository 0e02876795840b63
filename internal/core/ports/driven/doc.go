// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceClient: Paginated item search against the remote source
//   - DocumentStore: Host document CRUD, attributes and dedup lookups
//   - Renderer: Item to markdown/path rendering
//   - StateStore: Settings and sync cursor persistence
//
// # Optional Interfaces
//
//   - AssetUploader / AssetFetcher: Image and attachment localisation.
//     When nil, remote URLs are left in place.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
