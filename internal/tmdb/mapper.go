package tmdb

import (
	"github.com/mmcdole/marquee/internal/domain"
)

// MapPage converts a wire response page into normalized domain records.
// kind selects the fixed media kind for typed endpoints; pass kindAuto
// for multi-search, where each record carries (or implies) its own.
func MapPage(resp *pagedResponse, kind resultKind) *domain.SearchPage {
	page := &domain.SearchPage{
		Results:      make([]domain.SearchResult, 0, len(resp.Results)),
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}
	for _, r := range resp.Results {
		page.Results = append(page.Results, mapResult(r, kind))
	}
	return page
}

// resultKind fixes the media kind for an endpoint, or defers to the
// per-record tag for multi-search.
type resultKind int

const (
	kindAuto resultKind = iota
	kindMovie
	kindSeries
	kindPerson
)

func mapResult(r result, kind resultKind) domain.SearchResult {
	out := domain.SearchResult{
		ID:           r.ID,
		Title:        r.Title,
		Name:         r.Name,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ProfilePath:  r.ProfilePath,
		Overview:     r.Overview,
		ReleaseDate:  r.ReleaseDate,
		FirstAirDate: r.FirstAirDate,
		VoteAverage:  r.VoteAverage,
	}
	for _, k := range r.KnownFor {
		if k.Title != "" {
			out.KnownFor = append(out.KnownFor, k.Title)
		} else if k.Name != "" {
			out.KnownFor = append(out.KnownFor, k.Name)
		}
	}

	switch kind {
	case kindMovie:
		out.Kind = domain.MediaKindMovie
	case kindSeries:
		out.Kind = domain.MediaKindSeries
	case kindPerson:
		out.Kind = domain.MediaKindPerson
	default:
		out.Kind = inferKind(r)
	}
	return out
}

// inferKind resolves a multi-search record's kind. The media_type tag
// is authoritative; field-presence inference is a documented fallback
// for records the upstream leaves untagged.
func inferKind(r result) domain.MediaKind {
	switch r.MediaType {
	case "movie":
		return domain.MediaKindMovie
	case "tv":
		return domain.MediaKindSeries
	case "person":
		return domain.MediaKindPerson
	}
	if r.Title != "" {
		return domain.MediaKindMovie
	}
	return domain.MediaKindSeries
}

func mapMovieDetails(d *movieDetails) *domain.MovieDetails {
	return &domain.MovieDetails{
		ID:           d.ID,
		Title:        d.Title,
		Tagline:      d.Tagline,
		Overview:     d.Overview,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		ReleaseDate:  d.ReleaseDate,
		Runtime:      d.Runtime,
		Genres:       genreNames(d.Genres),
		VoteAverage:  d.VoteAverage,
		VoteCount:    d.VoteCount,
		Status:       d.Status,
	}
}

func mapSeriesDetails(d *seriesDetails) *domain.SeriesDetails {
	return &domain.SeriesDetails{
		ID:           d.ID,
		Name:         d.Name,
		Tagline:      d.Tagline,
		Overview:     d.Overview,
		PosterPath:   d.PosterPath,
		BackdropPath: d.BackdropPath,
		FirstAirDate: d.FirstAirDate,
		LastAirDate:  d.LastAirDate,
		Seasons:      d.NumberOfSeasons,
		Episodes:     d.NumberOfEpisodes,
		Genres:       genreNames(d.Genres),
		VoteAverage:  d.VoteAverage,
		VoteCount:    d.VoteCount,
		Status:       d.Status,
	}
}

func genreNames(genres []genre) []string {
	if len(genres) == 0 {
		return nil
	}
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return names
}
