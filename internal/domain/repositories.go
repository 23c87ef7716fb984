package domain

import "context"

// KeyValueStore is durable device-local storage of JSON-serialized
// blobs keyed by string. Absent keys are not errors: Get reports
// presence through its second return value.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// MetadataRepository is the read-only catalog service contract.
// Implementations do not retry; callers surface failures with a
// user-initiated retry affordance.
type MetadataRepository interface {
	// Typed search endpoints (query + page -> one result page)
	SearchMulti(ctx context.Context, query string, page int) (*SearchPage, error)
	SearchMovies(ctx context.Context, query string, page int) (*SearchPage, error)
	SearchTV(ctx context.Context, query string, page int) (*SearchPage, error)
	SearchPeople(ctx context.Context, query string, page int) (*SearchPage, error)

	// Zero-query browse feeds
	Feed(ctx context.Context, id FeedID, page int) (*SearchPage, error)

	// Detail lookups
	MovieDetails(ctx context.Context, id int) (*MovieDetails, error)
	SeriesDetails(ctx context.Context, id int) (*SeriesDetails, error)
}

// SearchSnapshot is an immutable copy of aggregator state pushed to
// observers after every transition.
type SearchSnapshot struct {
	Query          string
	Type           ResultType
	Results        []SearchResult
	Page           int
	TotalPages     int
	TotalResults   int
	Loading        bool
	Err            string
	RecentSearches []string
}

// SearchObserver receives snapshots as the aggregator works.
type SearchObserver interface {
	OnSearchUpdate(snap SearchSnapshot)
}

// NoOpObserver discards snapshots (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnSearchUpdate(SearchSnapshot) {}
