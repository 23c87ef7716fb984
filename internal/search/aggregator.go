package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

const (
	// DefaultDebounce is the delay between the last keystroke and the
	// query being issued.
	DefaultDebounce = 500 * time.Millisecond

	maxRecentSearches = 10
)

// trendingSearches is the static seed list shown before the user has
// a search history. Read-only at runtime.
var trendingSearches = []string{
	"Avengers",
	"Breaking Bad",
	"Stranger Things",
	"The Batman",
	"Game of Thrones",
	"Marvel",
	"Netflix",
	"Disney",
}

// Aggregator merges typed search endpoints into a single paginated
// feed. Input is debounced; responses carry a monotonic sequence
// number and a response is applied only if it belongs to the latest
// issued request, so a late-arriving response for a stale query can
// never overwrite newer results. Pagination is additive: appending
// page N+1 never replaces pages 1..N.
type Aggregator struct {
	repo     domain.MetadataRepository
	observer domain.SearchObserver
	logger   *slog.Logger
	debounce time.Duration

	mu           sync.Mutex
	query        string
	resultType   domain.ResultType
	results      []domain.SearchResult
	page         int
	totalPages   int
	totalResults int
	loading      bool
	errMsg       string
	recent       []string
	timer        *time.Timer
	seq          uint64 // sequence of the latest issued request
	inFlight     bool   // guards LoadMore against duplicate page fetches
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithDebounce overrides the debounce delay (tests use a short one).
func WithDebounce(d time.Duration) Option {
	return func(a *Aggregator) { a.debounce = d }
}

// NewAggregator creates an aggregator over repo, pushing snapshots to
// observer after every transition.
func NewAggregator(repo domain.MetadataRepository, observer domain.SearchObserver, logger *slog.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = domain.NoOpObserver{}
	}
	a := &Aggregator{
		repo:       repo,
		observer:   observer,
		logger:     logger,
		debounce:   DefaultDebounce,
		resultType: domain.ResultTypeAll,
		page:       1,
		totalPages: 1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close cancels any pending debounced search.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopTimerLocked()
}

// === Input ===

// SetQuery updates the query for immediate echo and schedules a
// debounced search, superseding any previously scheduled one. A blank
// query cancels the pending search, clears results, and falls back to
// the browse feed for the active type.
func (a *Aggregator) SetQuery(text string) {
	a.mu.Lock()
	a.query = text
	a.stopTimerLocked()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		a.clearResultsLocked()
		a.mu.Unlock()
		a.notify()
		go a.Browse(context.Background())
		return
	}

	a.timer = time.AfterFunc(a.debounce, func() {
		a.Search(context.Background(), trimmed, 1)
	})
	a.mu.Unlock()
	a.notify()
}

// stopTimerLocked cancels the pending debounce timer, if any.
func (a *Aggregator) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Aggregator) clearResultsLocked() {
	a.results = nil
	a.page = 1
	a.totalPages = 1
	a.totalResults = 0
	a.errMsg = ""
}

// === Search ===

// Search queries the typed endpoint selected by the active result
// type. Page 1 replaces results and records the query into the recent
// list; later pages append. Failures set the error flag and leave
// results untouched.
func (a *Aggregator) Search(ctx context.Context, query string, page int) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	a.mu.Lock()
	a.seq++
	mySeq := a.seq
	resultType := a.resultType
	a.loading = true
	a.inFlight = true
	a.errMsg = ""
	a.mu.Unlock()
	a.notify()

	a.logger.Debug("searching", "query", query, "page", page, "type", resultType)

	result, err := a.dispatch(ctx, resultType, query, page)

	a.mu.Lock()
	if mySeq != a.seq {
		// A newer request was issued while this one was in flight;
		// its response owns the state now.
		a.mu.Unlock()
		a.logger.Debug("discarding stale search response", "query", query, "seq", mySeq)
		return
	}
	a.loading = false
	a.inFlight = false

	if err != nil {
		a.errMsg = fmt.Sprintf("Search failed: %v", err)
		a.mu.Unlock()
		a.logger.Error("search failed", "error", err, "query", query, "page", page)
		a.notify()
		return
	}

	if page == 1 {
		a.results = result.Results
		a.recordRecentLocked(query)
	} else {
		a.results = append(a.results, result.Results...)
	}
	a.page = result.Page
	a.totalPages = result.TotalPages
	if a.totalPages < 1 {
		a.totalPages = 1
	}
	a.totalResults = result.TotalResults
	a.mu.Unlock()

	a.logger.Debug("search complete", "query", query, "page", page, "results", len(result.Results))
	a.notify()
}

func (a *Aggregator) dispatch(ctx context.Context, t domain.ResultType, query string, page int) (*domain.SearchPage, error) {
	switch t {
	case domain.ResultTypeMovie:
		return a.repo.SearchMovies(ctx, query, page)
	case domain.ResultTypeTV:
		return a.repo.SearchTV(ctx, query, page)
	case domain.ResultTypePerson:
		return a.repo.SearchPeople(ctx, query, page)
	default:
		return a.repo.SearchMulti(ctx, query, page)
	}
}

// ChangeResultType switches the typed endpoint. With an active query
// the search re-runs from page 1 (full reset, not incremental); with
// no query the browse feed for the new type loads instead.
func (a *Aggregator) ChangeResultType(ctx context.Context, t domain.ResultType) {
	a.mu.Lock()
	a.resultType = t
	query := strings.TrimSpace(a.query)
	a.mu.Unlock()

	if query != "" {
		a.Search(ctx, query, 1)
		return
	}
	a.Browse(ctx)
}

// LoadMore fetches the next page. Guarded: proceeds only when more
// pages exist and no fetch is already in flight, so rapid scroll
// events cannot issue duplicate page requests.
func (a *Aggregator) LoadMore(ctx context.Context) {
	a.mu.Lock()
	if a.inFlight || a.page >= a.totalPages {
		a.mu.Unlock()
		return
	}
	query := strings.TrimSpace(a.query)
	next := a.page + 1
	a.mu.Unlock()

	if query == "" {
		return
	}
	a.Search(ctx, query, next)
}

// === Browse (zero-query state) ===

// Browse loads popular content for the active result type. This is a
// distinct code path from search: it never touches the recent-search
// list and always replaces results.
func (a *Aggregator) Browse(ctx context.Context) {
	a.mu.Lock()
	a.seq++
	mySeq := a.seq
	resultType := a.resultType
	a.loading = true
	a.inFlight = true
	a.errMsg = ""
	a.mu.Unlock()
	a.notify()

	page, err := a.browseFetch(ctx, resultType)

	a.mu.Lock()
	if mySeq != a.seq {
		a.mu.Unlock()
		return
	}
	a.loading = false
	a.inFlight = false

	if err != nil {
		a.errMsg = fmt.Sprintf("Failed to load content: %v", err)
		a.mu.Unlock()
		a.logger.Error("browse load failed", "error", err, "type", resultType)
		a.notify()
		return
	}

	a.results = page.Results
	a.page = page.Page
	a.totalPages = page.TotalPages
	if a.totalPages < 1 {
		a.totalPages = 1
	}
	a.totalResults = page.TotalResults
	a.mu.Unlock()
	a.notify()
}

func (a *Aggregator) browseFetch(ctx context.Context, t domain.ResultType) (*domain.SearchPage, error) {
	switch t {
	case domain.ResultTypeMovie:
		return a.repo.Feed(ctx, domain.FeedPopularMovies, 1)
	case domain.ResultTypeTV:
		return a.repo.Feed(ctx, domain.FeedPopularTV, 1)
	case domain.ResultTypePerson:
		return a.repo.SearchPeople(ctx, "popular actor", 1)
	default:
		return a.browseMixed(ctx)
	}
}

// browseMixed interleaves the top of the popular movie and TV feeds
// into one browse page.
func (a *Aggregator) browseMixed(ctx context.Context) (*domain.SearchPage, error) {
	movies, err := a.repo.Feed(ctx, domain.FeedPopularMovies, 1)
	if err != nil {
		return nil, err
	}
	tv, err := a.repo.Feed(ctx, domain.FeedPopularTV, 1)
	if err != nil {
		return nil, err
	}

	const perFeed = 10
	m := movies.Results
	if len(m) > perFeed {
		m = m[:perFeed]
	}
	s := tv.Results
	if len(s) > perFeed {
		s = s[:perFeed]
	}

	mixed := make([]domain.SearchResult, 0, len(m)+len(s))
	for i := 0; i < len(m) || i < len(s); i++ {
		if i < len(m) {
			mixed = append(mixed, m[i])
		}
		if i < len(s) {
			mixed = append(mixed, s[i])
		}
	}

	return &domain.SearchPage{
		Results:      mixed,
		Page:         1,
		TotalPages:   1,
		TotalResults: len(mixed),
	}, nil
}

// === Recent searches ===

// recordRecentLocked prepends query to the recent list. Dedup is
// exact-string (case-sensitive); the list is capped at 10 entries.
func (a *Aggregator) recordRecentLocked(query string) {
	for _, r := range a.recent {
		if r == query {
			return
		}
	}
	a.recent = append([]string{query}, a.recent...)
	if len(a.recent) > maxRecentSearches {
		a.recent = a.recent[:maxRecentSearches]
	}
}

// AddRecentSearch records query without running a search (e.g. the
// user tapped a suggestion chip).
func (a *Aggregator) AddRecentSearch(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	a.mu.Lock()
	a.recordRecentLocked(query)
	a.mu.Unlock()
	a.notify()
}

// RemoveRecentSearch drops query from the recent list.
func (a *Aggregator) RemoveRecentSearch(query string) {
	a.mu.Lock()
	out := a.recent[:0]
	for _, r := range a.recent {
		if r != query {
			out = append(out, r)
		}
	}
	a.recent = out
	a.mu.Unlock()
	a.notify()
}

// ClearRecentSearches empties the recent list.
func (a *Aggregator) ClearRecentSearches() {
	a.mu.Lock()
	a.recent = nil
	a.mu.Unlock()
	a.notify()
}

// TrendingSearches returns the static seed suggestions.
func (a *Aggregator) TrendingSearches() []string {
	return append([]string(nil), trendingSearches...)
}

// === State ===

// State returns an immutable snapshot of the aggregator.
func (a *Aggregator) State() domain.SearchSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) snapshotLocked() domain.SearchSnapshot {
	return domain.SearchSnapshot{
		Query:          a.query,
		Type:           a.resultType,
		Results:        append([]domain.SearchResult(nil), a.results...),
		Page:           a.page,
		TotalPages:     a.totalPages,
		TotalResults:   a.totalResults,
		Loading:        a.loading,
		Err:            a.errMsg,
		RecentSearches: append([]string(nil), a.recent...),
	}
}

func (a *Aggregator) notify() {
	a.mu.Lock()
	snap := a.snapshotLocked()
	a.mu.Unlock()
	a.observer.OnSearchUpdate(snap)
}
