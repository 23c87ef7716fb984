package tui

import "github.com/mmcdole/marquee/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SearchUpdatedMsg carries a fresh aggregator snapshot
type SearchUpdatedMsg struct {
	Snapshot domain.SearchSnapshot
}

// FeedLoadedMsg signals that a browse feed page is ready
type FeedLoadedMsg struct {
	Feed      domain.FeedID
	Page      *domain.SearchPage
	FromCache bool
	Err       error
}

// MovieDetailsMsg signals that movie details have been loaded
type MovieDetailsMsg struct {
	Details *domain.MovieDetails
}

// SeriesDetailsMsg signals that series details have been loaded
type SeriesDetailsMsg struct {
	Details *domain.SeriesDetails
}

// WishlistSavedMsg signals that a background save finished
type WishlistSavedMsg struct{}
