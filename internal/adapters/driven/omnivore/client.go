// Package omnivore fetches saved reading items from an Omnivore-style
// GraphQL endpoint. The API family has several self-hosted forks that
// disagree on the exact response nesting, so decoding is deliberately
// tolerant.
package omnivore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/readfold/readfold/internal/core/domain"
	"github.com/readfold/readfold/internal/core/ports/driven"
	"github.com/readfold/readfold/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.SourceClient = (*Client)(nil)

// DefaultTimeout is the per-request timeout.
const DefaultTimeout = 60 * time.Second

// Config holds the source connection settings.
type Config struct {
	// Endpoint is the GraphQL endpoint URL (required).
	Endpoint string

	// APIKey authenticates via the x-api-key header (required).
	APIKey string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Client fetches pages of saved items over GraphQL.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	limiter  *RateLimiter
}

// NewClient creates a source client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, domain.ErrNotConfigured
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		limiter:  NewRateLimiter(DefaultRateLimit),
	}, nil
}

// graphqlRequest is the wire request format.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// searchResult is the canonical search payload shape.
type searchResult struct {
	Edges []struct {
		Node domain.Item `json:"node"`
	} `json:"edges"`
	PageInfo struct {
		HasNextPage bool `json:"hasNextPage"`
		TotalCount  int  `json:"totalCount"`
	} `json:"pageInfo"`
	ErrorCodes []string `json:"errorCodes"`
}

// Search returns one page of items.
func (c *Client) Search(ctx context.Context, req driven.SearchRequest) (*domain.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	query := buildFilter(req)
	logger.Debug("Searching %s (key %s): after=%d first=%d query=%q",
		c.endpoint, maskKey(c.apiKey), req.After, req.First, query)

	body, err := json.Marshal(graphqlRequest{
		Query: searchQuery(req.IncludeContent),
		Variables: map[string]any{
			"after":          strconv.Itoa(req.After),
			"first":          req.First,
			"query":          query,
			"includeContent": req.IncludeContent,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.limiter.RecordRateLimitError(retryAfter)
		return nil, fmt.Errorf("%w: retry after %ds", domain.ErrRateLimited, retryAfter)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: status %d", resp.StatusCode)
	}

	return decodeSearchResponse(raw)
}

// decodeSearchResponse accepts the three response nestings seen in the
// wild: the full GraphQL envelope, a bare data object, and a raw search
// result.
func decodeSearchResponse(raw []byte) (*domain.Page, error) {
	var envelope struct {
		Data struct {
			Search *searchResult `json:"search"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if len(envelope.Errors) > 0 {
			return nil, fmt.Errorf("search: %s", envelope.Errors[0].Message)
		}
		if envelope.Data.Search != nil {
			return toPage(envelope.Data.Search)
		}
	}

	var bare struct {
		Data *searchResult `json:"data"`
	}
	if err := json.Unmarshal(raw, &bare); err == nil && bare.Data != nil && bare.Data.Edges != nil {
		return toPage(bare.Data)
	}

	var result searchResult
	if err := json.Unmarshal(raw, &result); err == nil && result.Edges != nil {
		return toPage(&result)
	}

	return nil, fmt.Errorf("decode search response: %w", domain.ErrUnexpectedResponse)
}

func toPage(result *searchResult) (*domain.Page, error) {
	if len(result.ErrorCodes) > 0 {
		return nil, fmt.Errorf("search: %s", strings.Join(result.ErrorCodes, ", "))
	}
	page := &domain.Page{
		Items:       make([]domain.Item, len(result.Edges)),
		HasNextPage: result.PageInfo.HasNextPage,
		TotalCount:  result.PageInfo.TotalCount,
	}
	for i, edge := range result.Edges {
		page.Items[i] = edge.Node
	}
	return page, nil
}

// buildFilter assembles the source's free-text filter: the incremental
// window term plus the user's custom query.
func buildFilter(req driven.SearchRequest) string {
	var parts []string
	if req.UpdatedSince != "" {
		parts = append(parts, "updated:"+req.UpdatedSince)
	}
	if req.Query != "" {
		parts = append(parts, req.Query)
	}
	return strings.Join(parts, " ")
}

// searchQuery returns the GraphQL document, requesting the content
// field only when a template actually needs it.
func searchQuery(includeContent bool) string {
	contentField := ""
	if includeContent {
		contentField = "\n          content"
	}
	return `query Search($after: String, $first: Int, $query: String, $includeContent: Boolean) {
  search(after: $after, first: $first, query: $query, includeContent: $includeContent) {
    ... on SearchSuccess {
      edges {
        node {
          id
          title
          author
          url
          savedAt
          publishedAt
          archivedAt
          siteName
          description
          note
          image
          wordsCount
          readLength
          state
          type` + contentField + `
          highlights {
            id
            quote
            annotation
            color
            highlightedAt
            updatedAt
          }
          labels {
            id
            name
            color
            description
          }
        }
      }
      pageInfo {
        hasNextPage
        totalCount
      }
    }
    ... on SearchError {
      errorCodes
    }
  }
}`
}

// maskKey hides all but a short prefix of the API key in log output.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}
