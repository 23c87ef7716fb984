package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

// stubRepo is a controllable domain.MetadataRepository. Every call is
// recorded as "method:arg:page"; responses come from the hook funcs.
type stubRepo struct {
	mu    sync.Mutex
	calls []string

	searchFn func(method, query string, page int) (*domain.SearchPage, error)
	feedFn   func(id domain.FeedID, page int) (*domain.SearchPage, error)
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		searchFn: func(method, query string, page int) (*domain.SearchPage, error) {
			return resultPage(query, page, 1), nil
		},
		feedFn: func(id domain.FeedID, page int) (*domain.SearchPage, error) {
			return resultPage(string(id), page, 1), nil
		},
	}
}

// resultPage builds a one-result page whose title encodes query and page.
func resultPage(query string, page, totalPages int) *domain.SearchPage {
	return &domain.SearchPage{
		Results: []domain.SearchResult{
			{ID: page, Kind: domain.MediaKindMovie, Title: fmt.Sprintf("%s-p%d", query, page)},
		},
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: totalPages,
	}
}

func (s *stubRepo) record(method, arg string, page int) {
	s.mu.Lock()
	s.calls = append(s.calls, fmt.Sprintf("%s:%s:%d", method, arg, page))
	s.mu.Unlock()
}

func (s *stubRepo) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubRepo) SearchMulti(_ context.Context, query string, page int) (*domain.SearchPage, error) {
	s.record("multi", query, page)
	return s.searchFn("multi", query, page)
}

func (s *stubRepo) SearchMovies(_ context.Context, query string, page int) (*domain.SearchPage, error) {
	s.record("movies", query, page)
	return s.searchFn("movies", query, page)
}

func (s *stubRepo) SearchTV(_ context.Context, query string, page int) (*domain.SearchPage, error) {
	s.record("tv", query, page)
	return s.searchFn("tv", query, page)
}

func (s *stubRepo) SearchPeople(_ context.Context, query string, page int) (*domain.SearchPage, error) {
	s.record("people", query, page)
	return s.searchFn("people", query, page)
}

func (s *stubRepo) Feed(_ context.Context, id domain.FeedID, page int) (*domain.SearchPage, error) {
	s.record("feed", string(id), page)
	return s.feedFn(id, page)
}

func (s *stubRepo) MovieDetails(_ context.Context, id int) (*domain.MovieDetails, error) {
	return nil, domain.ErrNotFound
}

func (s *stubRepo) SeriesDetails(_ context.Context, id int) (*domain.SeriesDetails, error) {
	return nil, domain.ErrNotFound
}

func newTestAggregator(t *testing.T, repo *stubRepo) *Aggregator {
	t.Helper()
	agg := NewAggregator(repo, nil, nil, WithDebounce(10*time.Millisecond))
	t.Cleanup(agg.Close)
	return agg
}

// setQueryDirect sets the active query without scheduling a debounced
// search, so tests can drive Search and LoadMore deterministically.
func setQueryDirect(agg *Aggregator, query string) {
	agg.mu.Lock()
	agg.query = query
	agg.mu.Unlock()
}

func TestSearchPageOneReplacesResults(t *testing.T) {
	repo := newStubRepo()
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	agg.Search(ctx, "dune", 1)
	agg.Search(ctx, "arrival", 1)

	state := agg.State()
	require.Len(t, state.Results, 1)
	assert.Equal(t, "arrival-p1", state.Results[0].Title)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Err)
	assert.Equal(t, []string{"arrival", "dune"}, state.RecentSearches)
}

func TestPaginationIsAdditive(t *testing.T) {
	repo := newStubRepo()
	repo.searchFn = func(_, query string, page int) (*domain.SearchPage, error) {
		return resultPage(query, page, 3), nil
	}
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	setQueryDirect(agg, "dune")
	agg.Search(ctx, "dune", 1)
	agg.LoadMore(ctx)
	agg.LoadMore(ctx)

	state := agg.State()
	require.Len(t, state.Results, 3)
	assert.Equal(t, "dune-p1", state.Results[0].Title)
	assert.Equal(t, "dune-p2", state.Results[1].Title)
	assert.Equal(t, "dune-p3", state.Results[2].Title)
	assert.Equal(t, 3, state.Page)
	assert.Equal(t, 3, state.TotalPages)
}

func TestLoadMoreStopsAtLastPage(t *testing.T) {
	repo := newStubRepo()
	repo.searchFn = func(_, query string, page int) (*domain.SearchPage, error) {
		return resultPage(query, page, 2), nil
	}
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	setQueryDirect(agg, "dune")
	agg.Search(ctx, "dune", 1)
	agg.LoadMore(ctx)
	agg.LoadMore(ctx) // page == totalPages, must not fetch
	agg.LoadMore(ctx)

	searchCalls := 0
	for _, c := range repo.callLog() {
		if c == "multi:dune:1" || c == "multi:dune:2" {
			searchCalls++
		}
	}
	assert.Equal(t, 2, searchCalls)
	assert.Len(t, agg.State().Results, 2)
}

func TestSearchFailureSetsFlagKeepsResults(t *testing.T) {
	repo := newStubRepo()
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	agg.Search(ctx, "dune", 1)
	require.Len(t, agg.State().Results, 1)

	repo.searchFn = func(_, _ string, _ int) (*domain.SearchPage, error) {
		return nil, errors.New("connection refused")
	}
	agg.Search(ctx, "arrival", 1)

	state := agg.State()
	assert.Contains(t, state.Err, "Search failed")
	require.Len(t, state.Results, 1)
	assert.Equal(t, "dune-p1", state.Results[0].Title)
	assert.False(t, state.Loading)

	// Next success clears the flag.
	repo.searchFn = func(_, query string, page int) (*domain.SearchPage, error) {
		return resultPage(query, page, 1), nil
	}
	agg.Search(ctx, "arrival", 1)
	assert.Empty(t, agg.State().Err)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	repo := newStubRepo()
	repo.searchFn = func(_, query string, page int) (*domain.SearchPage, error) {
		if query == "slow" {
			close(started)
			<-release
		}
		return resultPage(query, page, 1), nil
	}
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		agg.Search(ctx, "slow", 1)
	}()

	<-started
	agg.Search(ctx, "fast", 1)

	// The slow response arrives after fast completed; it must not win.
	close(release)
	wg.Wait()

	state := agg.State()
	require.Len(t, state.Results, 1)
	assert.Equal(t, "fast-p1", state.Results[0].Title)
	assert.False(t, state.Loading)
}

func TestSetQueryDebouncesKeystrokes(t *testing.T) {
	repo := newStubRepo()
	// Wide enough that the keystrokes below land inside one window.
	agg := NewAggregator(repo, nil, nil, WithDebounce(100*time.Millisecond))
	t.Cleanup(agg.Close)

	agg.SetQuery("d")
	agg.SetQuery("du")
	agg.SetQuery("dune")

	require.Eventually(t, func() bool {
		state := agg.State()
		return len(state.Results) == 1 && state.Results[0].Title == "dune-p1"
	}, 2*time.Second, 5*time.Millisecond)

	// Only the final keystroke's query reached the repository.
	for _, c := range repo.callLog() {
		assert.NotContains(t, c, "multi:d:")
		assert.NotContains(t, c, "multi:du:")
	}
	assert.Equal(t, []string{"dune"}, agg.State().RecentSearches)
}

func TestBlankQueryFallsBackToBrowse(t *testing.T) {
	repo := newStubRepo()
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	agg.Search(ctx, "dune", 1)
	agg.SetQuery("   ")

	require.Eventually(t, func() bool {
		state := agg.State()
		// browseMixed interleaves popular movies and TV.
		return len(state.Results) == 2
	}, 2*time.Second, 5*time.Millisecond)

	// Clearing the input does not touch search history.
	assert.Equal(t, []string{"dune"}, agg.State().RecentSearches)
}

func TestBrowseMixedInterleavesAndCapsFeeds(t *testing.T) {
	repo := newStubRepo()
	repo.feedFn = func(id domain.FeedID, page int) (*domain.SearchPage, error) {
		results := make([]domain.SearchResult, 12)
		for i := range results {
			results[i] = domain.SearchResult{
				ID:    i + 1,
				Title: fmt.Sprintf("%s-%d", id, i+1),
			}
		}
		return &domain.SearchPage{Results: results, Page: 1, TotalPages: 1, TotalResults: 12}, nil
	}
	agg := newTestAggregator(t, repo)

	agg.Browse(context.Background())

	state := agg.State()
	// Ten from each feed, alternating movie/TV.
	require.Len(t, state.Results, 20)
	assert.Equal(t, string(domain.FeedPopularMovies)+"-1", state.Results[0].Title)
	assert.Equal(t, string(domain.FeedPopularTV)+"-1", state.Results[1].Title)
	assert.Equal(t, string(domain.FeedPopularMovies)+"-2", state.Results[2].Title)
	assert.Equal(t, string(domain.FeedPopularTV)+"-10", state.Results[19].Title)
}

func TestBrowsePerType(t *testing.T) {
	tests := []struct {
		name       string
		resultType domain.ResultType
		wantCall   string
	}{
		{"movies", domain.ResultTypeMovie, "feed:" + string(domain.FeedPopularMovies) + ":1"},
		{"tv", domain.ResultTypeTV, "feed:" + string(domain.FeedPopularTV) + ":1"},
		{"people", domain.ResultTypePerson, "people:popular actor:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo()
			agg := newTestAggregator(t, repo)

			agg.ChangeResultType(context.Background(), tt.resultType)

			assert.Contains(t, repo.callLog(), tt.wantCall)
		})
	}
}

func TestChangeResultTypeRerunsActiveQuery(t *testing.T) {
	repo := newStubRepo()
	repo.searchFn = func(_, query string, page int) (*domain.SearchPage, error) {
		return resultPage(query, page, 5), nil
	}
	agg := newTestAggregator(t, repo)
	ctx := context.Background()

	setQueryDirect(agg, "dune")
	agg.Search(ctx, "dune", 1)
	agg.LoadMore(ctx)
	require.Len(t, agg.State().Results, 2)

	agg.ChangeResultType(ctx, domain.ResultTypeMovie)

	state := agg.State()
	assert.Equal(t, domain.ResultTypeMovie, state.Type)
	// Full reset from page 1 on the typed endpoint.
	require.Len(t, state.Results, 1)
	assert.Equal(t, 1, state.Page)
	assert.Contains(t, repo.callLog(), "movies:dune:1")
}

func TestRecentSearchesDedupAndCap(t *testing.T) {
	repo := newStubRepo()
	agg := newTestAggregator(t, repo)

	agg.AddRecentSearch("Dune")
	agg.AddRecentSearch("dune") // different string, both kept
	agg.AddRecentSearch("Dune") // exact duplicate, dropped
	agg.AddRecentSearch("  ")   // blank, dropped

	state := agg.State()
	assert.Equal(t, []string{"dune", "Dune"}, state.RecentSearches)

	for i := 0; i < 15; i++ {
		agg.AddRecentSearch(fmt.Sprintf("query-%d", i))
	}
	recent := agg.State().RecentSearches
	require.Len(t, recent, maxRecentSearches)
	// Most recent first.
	assert.Equal(t, "query-14", recent[0])
}

func TestRemoveAndClearRecentSearches(t *testing.T) {
	repo := newStubRepo()
	agg := newTestAggregator(t, repo)

	agg.AddRecentSearch("one")
	agg.AddRecentSearch("two")
	agg.AddRecentSearch("three")

	agg.RemoveRecentSearch("two")
	assert.Equal(t, []string{"three", "one"}, agg.State().RecentSearches)

	agg.ClearRecentSearches()
	assert.Empty(t, agg.State().RecentSearches)
}

func TestTrendingSearchesAreStatic(t *testing.T) {
	repo := newStubRepo()
	agg := newTestAggregator(t, repo)

	trending := agg.TrendingSearches()
	require.NotEmpty(t, trending)

	trending[0] = "mutated"
	assert.NotEqual(t, "mutated", agg.TrendingSearches()[0])
}

func TestObserverReceivesSnapshots(t *testing.T) {
	repo := newStubRepo()
	obs := &recordingObserver{}
	agg := NewAggregator(repo, obs, nil, WithDebounce(10*time.Millisecond))
	t.Cleanup(agg.Close)

	agg.Search(context.Background(), "dune", 1)

	snaps := obs.snapshots()
	require.GreaterOrEqual(t, len(snaps), 2)
	assert.True(t, snaps[0].Loading)
	final := snaps[len(snaps)-1]
	assert.False(t, final.Loading)
	require.Len(t, final.Results, 1)
}

type recordingObserver struct {
	mu    sync.Mutex
	snaps []domain.SearchSnapshot
}

func (r *recordingObserver) OnSearchUpdate(s domain.SearchSnapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}

func (r *recordingObserver) snapshots() []domain.SearchSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SearchSnapshot(nil), r.snaps...)
}
