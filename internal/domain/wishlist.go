package domain

import (
	"strings"
	"time"
)

// WishlistItem is a catalog entry saved by the user. Metadata fields
// mirror the catalog source at the time of adding.
type WishlistItem struct {
	ID           int       `json:"id"`
	Kind         MediaKind `json:"kind"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// DisplayTitle returns the movie title or the series name, whichever is set.
func (w WishlistItem) DisplayTitle() string {
	if w.Title != "" {
		return w.Title
	}
	return w.Name
}

// SortTitle returns the lowercase title used for lexicographic ordering.
func (w WishlistItem) SortTitle() string {
	return strings.ToLower(w.DisplayTitle())
}

// FromSearchResult builds a wishlist item from a normalized catalog
// record. AddedAt is stamped by the wishlist service, not here.
func FromSearchResult(r SearchResult) WishlistItem {
	return WishlistItem{
		ID:           r.ID,
		Kind:         r.Kind,
		Title:        r.Title,
		Name:         r.Name,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		Overview:     r.Overview,
		ReleaseDate:  r.ReleaseDate,
		FirstAirDate: r.FirstAirDate,
		VoteAverage:  r.VoteAverage,
	}
}

// SortKey selects the wishlist ordering.
type SortKey string

const (
	SortByTitle   SortKey = "title"
	SortByRating  SortKey = "rating"
	SortByAddedAt SortKey = "addedAt"
)

// User is the session principal a wishlist is keyed under.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
