// Package services contains the core orchestration logic of the sync
// engine: the sync run loop, item placement, merge bucket maintenance
// and asset localisation. Services depend only on domain types and
// ports; all I/O goes through driven adapters.
package services
