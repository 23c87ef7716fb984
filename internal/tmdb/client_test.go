package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", nil, WithBaseURL(srv.URL), WithLanguage("en-US"))
}

func TestSearchMoviesSendsAuthAndQueryParams(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix","release_date":"1999-03-30","vote_average":8.2}],"total_pages":1,"total_results":1}`))
	})

	page, err := client.SearchMovies(context.Background(), "matrix", 1)
	require.NoError(t, err)

	assert.Equal(t, "/search/movie", gotPath)
	assert.Equal(t, []string{"test-key"}, gotQuery["api_key"])
	assert.Equal(t, []string{"en-US"}, gotQuery["language"])
	assert.Equal(t, []string{"matrix"}, gotQuery["query"])
	assert.Equal(t, []string{"1"}, gotQuery["page"])

	require.Len(t, page.Results, 1)
	got := page.Results[0]
	assert.Equal(t, 603, got.ID)
	assert.Equal(t, domain.MediaKindMovie, got.Kind)
	assert.Equal(t, "The Matrix", got.Title)
	assert.Equal(t, "1999", got.Year())
}

func TestSearchMultiDiscriminatesByMediaType(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"results":[
			{"id":1,"media_type":"movie","title":"Dune"},
			{"id":2,"media_type":"tv","name":"Dune: Prophecy"},
			{"id":3,"media_type":"person","name":"Denis Villeneuve","known_for":[{"title":"Dune"},{"name":"Arrival"}]},
			{"id":4,"title":"Untagged Movie"},
			{"id":5,"name":"Untagged Show"}
		],"total_pages":1,"total_results":5}`))
	})

	page, err := client.SearchMulti(context.Background(), "dune", 1)
	require.NoError(t, err)
	require.Len(t, page.Results, 5)

	assert.Equal(t, domain.MediaKindMovie, page.Results[0].Kind)
	assert.Equal(t, domain.MediaKindSeries, page.Results[1].Kind)
	assert.Equal(t, domain.MediaKindPerson, page.Results[2].Kind)
	assert.Equal(t, []string{"Dune", "Arrival"}, page.Results[2].KnownFor)
	// Untagged records fall back to field presence.
	assert.Equal(t, domain.MediaKindMovie, page.Results[3].Kind)
	assert.Equal(t, domain.MediaKindSeries, page.Results[4].Kind)
}

func TestMissingResultsArrayIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"total_pages":1,"total_results":0}`))
	})

	_, err := client.SearchMovies(context.Background(), "dune", 1)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestInvalidJSONIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	})

	_, err := client.SearchTV(context.Background(), "dune", 1)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.MovieDetails(context.Background(), 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAPIErrorMessageIsSurfaced(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	})

	_, err := client.SearchMovies(context.Background(), "dune", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestUnreachableServerIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // the address now refuses connections

	client := NewClient("test-key", nil, WithBaseURL(srv.URL))
	_, err := client.SearchMovies(context.Background(), "dune", 1)
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestFeedUsesMappedEndpointAndKind(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"page":2,"results":[{"id":10,"name":"Severance"}],"total_pages":8,"total_results":160}`))
	})

	page, err := client.Feed(context.Background(), domain.FeedPopularTV, 2)
	require.NoError(t, err)

	assert.Equal(t, "/tv/popular", gotPath)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 8, page.TotalPages)
	require.Len(t, page.Results, 1)
	// Typed endpoints stamp the kind; no per-record inference.
	assert.Equal(t, domain.MediaKindSeries, page.Results[0].Kind)
}

func TestUnknownFeedIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.Feed(context.Background(), domain.FeedID("bogus"), 1)
	assert.Error(t, err)
}

func TestMovieDetailsMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		w.Write([]byte(`{"id":603,"title":"The Matrix","tagline":"Free your mind","runtime":136,"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}],"vote_average":8.2,"vote_count":26000,"status":"Released"}`))
	})

	d, err := client.MovieDetails(context.Background(), 603)
	require.NoError(t, err)

	assert.Equal(t, "The Matrix", d.Title)
	assert.Equal(t, 136, d.Runtime)
	assert.Equal(t, []string{"Action", "Science Fiction"}, d.Genres)
	assert.Equal(t, "Released", d.Status)
}

func TestSeriesDetailsMapping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1396", r.URL.Path)
		w.Write([]byte(`{"id":1396,"name":"Breaking Bad","number_of_seasons":5,"number_of_episodes":62,"first_air_date":"2008-01-20","last_air_date":"2013-09-29","status":"Ended"}`))
	})

	d, err := client.SeriesDetails(context.Background(), 1396)
	require.NoError(t, err)

	assert.Equal(t, "Breaking Bad", d.Name)
	assert.Equal(t, 5, d.Seasons)
	assert.Equal(t, 62, d.Episodes)
	assert.Equal(t, "Ended", d.Status)
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", ImageURL("", "w500"))
	assert.Equal(t, DefaultImageBaseURL+"/w500/abc.jpg", ImageURL("/abc.jpg", ""))
	assert.Equal(t, DefaultImageBaseURL+"/original/abc.jpg", ImageURL("/abc.jpg", "original"))
}
