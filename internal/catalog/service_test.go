package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV { return &fakeKV{data: make(map[string]string)} }

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.data[key] = value
	return nil
}

func (f *fakeKV) Remove(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

// feedRepo serves browse feeds only; the search methods are unused here.
type feedRepo struct {
	page *domain.SearchPage
	err  error
}

func (r *feedRepo) Feed(_ context.Context, _ domain.FeedID, _ int) (*domain.SearchPage, error) {
	return r.page, r.err
}

func (r *feedRepo) SearchMulti(_ context.Context, _ string, _ int) (*domain.SearchPage, error) {
	return nil, domain.ErrNotFound
}

func (r *feedRepo) SearchMovies(_ context.Context, _ string, _ int) (*domain.SearchPage, error) {
	return nil, domain.ErrNotFound
}

func (r *feedRepo) SearchTV(_ context.Context, _ string, _ int) (*domain.SearchPage, error) {
	return nil, domain.ErrNotFound
}

func (r *feedRepo) SearchPeople(_ context.Context, _ string, _ int) (*domain.SearchPage, error) {
	return nil, domain.ErrNotFound
}

func (r *feedRepo) MovieDetails(_ context.Context, _ int) (*domain.MovieDetails, error) {
	return nil, domain.ErrNotFound
}

func (r *feedRepo) SeriesDetails(_ context.Context, _ int) (*domain.SeriesDetails, error) {
	return nil, domain.ErrNotFound
}

func feedPage(title string) *domain.SearchPage {
	return &domain.SearchPage{
		Results:      []domain.SearchResult{{ID: 1, Title: title}},
		Page:         1,
		TotalPages:   1,
		TotalResults: 1,
	}
}

func TestFeedSuccessCachesPageOne(t *testing.T) {
	repo := &feedRepo{page: feedPage("Dune")}
	kv := newFakeKV()
	svc := NewService(repo, kv, nil)

	got, fromCache, err := svc.Feed(context.Background(), domain.FeedPopularMovies, 1)
	require.NoError(t, err)
	assert.False(t, fromCache)
	require.Len(t, got.Results, 1)

	assert.Contains(t, kv.data, "catalog:feed:popular_movies")
}

func TestFeedLaterPagesAreNotCached(t *testing.T) {
	repo := &feedRepo{page: feedPage("Dune")}
	kv := newFakeKV()
	svc := NewService(repo, kv, nil)

	_, _, err := svc.Feed(context.Background(), domain.FeedPopularMovies, 2)
	require.NoError(t, err)

	assert.Empty(t, kv.data)
}

func TestFeedFailureFallsBackToCachedSnapshot(t *testing.T) {
	repo := &feedRepo{page: feedPage("Dune")}
	kv := newFakeKV()
	svc := NewService(repo, kv, nil)
	ctx := context.Background()

	_, _, err := svc.Feed(ctx, domain.FeedPopularMovies, 1)
	require.NoError(t, err)

	repo.page = nil
	repo.err = errors.New("connection refused")

	got, fromCache, err := svc.Feed(ctx, domain.FeedPopularMovies, 1)
	// The error still surfaces so the UI can offer a retry.
	require.Error(t, err)
	assert.True(t, fromCache)
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Results[0].Title)
}

func TestFeedFailureWithoutCacheIsJustAnError(t *testing.T) {
	repo := &feedRepo{err: errors.New("connection refused")}
	svc := NewService(repo, newFakeKV(), nil)

	got, fromCache, err := svc.Feed(context.Background(), domain.FeedPopularTV, 1)
	assert.Error(t, err)
	assert.False(t, fromCache)
	assert.Nil(t, got)
}

func TestInvalidateDropsSnapshot(t *testing.T) {
	repo := &feedRepo{page: feedPage("Dune")}
	kv := newFakeKV()
	svc := NewService(repo, kv, nil)
	ctx := context.Background()

	_, _, err := svc.Feed(ctx, domain.FeedPopularMovies, 1)
	require.NoError(t, err)

	svc.Invalidate(ctx, domain.FeedPopularMovies)

	repo.err = errors.New("connection refused")
	_, fromCache, err := svc.Feed(ctx, domain.FeedPopularMovies, 1)
	assert.Error(t, err)
	assert.False(t, fromCache)
}
