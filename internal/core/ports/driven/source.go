package driven

import (
	"context"

	"github.com/readfold/readfold/internal/core/domain"
)

// SearchRequest describes one page fetch against the remote source.
type SearchRequest struct {
	// After is the item offset to start from.
	After int

	// First is the page size.
	First int

	// UpdatedSince filters to items modified at or after this timestamp,
	// in the source's filter format. Empty means unbounded.
	UpdatedSince string

	// Query is an optional free-text filter.
	Query string

	// IncludeContent requests item bodies. Callers whose templates never
	// reference content can skip the heaviest field.
	IncludeContent bool
}

// SourceClient fetches pages of saved items from the remote source.
type SourceClient interface {
	// Search returns one page of items. Transport and auth failures are
	// returned as errors; the orchestrator aborts the run on them.
	Search(ctx context.Context, req SearchRequest) (*domain.Page, error)
}
