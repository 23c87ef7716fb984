package domain

import (
	"encoding/json"
	"fmt"
)

// MediaKind distinguishes content types
type MediaKind int

const (
	MediaKindMovie MediaKind = iota
	MediaKindSeries
	MediaKindPerson
)

// String returns a human-readable representation of the media kind
func (k MediaKind) String() string {
	switch k {
	case MediaKindMovie:
		return "movie"
	case MediaKindSeries:
		return "series"
	case MediaKindPerson:
		return "person"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the kind as its string form so persisted
// snapshots stay readable and stable across enum reordering.
func (k MediaKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses the string form written by MarshalJSON.
func (k *MediaKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "movie":
		*k = MediaKindMovie
	case "series", "tv":
		*k = MediaKindSeries
	case "person":
		*k = MediaKindPerson
	default:
		return fmt.Errorf("unknown media kind %q", s)
	}
	return nil
}

// ResultType selects which typed search endpoint is queried
type ResultType string

const (
	ResultTypeAll    ResultType = "all"
	ResultTypeMovie  ResultType = "movie"
	ResultTypeTV     ResultType = "tv"
	ResultTypePerson ResultType = "person"
)

// SearchResult is a normalized record from a search or browse feed.
// The kind is resolved once, when the API response is mapped; consumers
// never re-infer it from field presence.
type SearchResult struct {
	Kind         MediaKind `json:"kind"`
	ID           int       `json:"id"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	ProfilePath  string    `json:"profile_path,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	KnownFor     []string  `json:"known_for,omitempty"`
}

// DisplayTitle returns the movie title or the series/person name,
// whichever is set.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Year returns the release/first-air year portion, or "" if unknown.
func (r SearchResult) Year() string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// SearchPage is one page of results with pagination bounds.
type SearchPage struct {
	Results      []SearchResult `json:"results"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// FeedID identifies a zero-query browse feed.
type FeedID string

const (
	FeedNowPlaying     FeedID = "now_playing"
	FeedPopularMovies  FeedID = "popular_movies"
	FeedTopRatedMovies FeedID = "top_rated_movies"
	FeedUpcoming       FeedID = "upcoming"
	FeedAiringToday    FeedID = "airing_today"
	FeedPopularTV      FeedID = "popular_tv"
	FeedTopRatedTV     FeedID = "top_rated_tv"
	FeedOnTheAirTV     FeedID = "on_the_air_tv"
)

// MovieDetails holds the extended metadata for a single movie.
type MovieDetails struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Tagline      string   `json:"tagline,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	Runtime      int      `json:"runtime,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	VoteAverage  float64  `json:"vote_average,omitempty"`
	VoteCount    int      `json:"vote_count,omitempty"`
	Status       string   `json:"status,omitempty"`
}

// SeriesDetails holds the extended metadata for a single series.
type SeriesDetails struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Tagline      string   `json:"tagline,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	FirstAirDate string   `json:"first_air_date,omitempty"`
	LastAirDate  string   `json:"last_air_date,omitempty"`
	Seasons      int      `json:"number_of_seasons,omitempty"`
	Episodes     int      `json:"number_of_episodes,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	VoteAverage  float64  `json:"vote_average,omitempty"`
	VoteCount    int      `json:"vote_count,omitempty"`
	Status       string   `json:"status,omitempty"`
}
