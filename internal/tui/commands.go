package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/wishlist"
)

// waitForSearchUpdate blocks until the aggregator pushes a snapshot.
// Re-issued after every SearchUpdatedMsg.
func waitForSearchUpdate(obs *ChannelObserver) tea.Cmd {
	return func() tea.Msg {
		return SearchUpdatedMsg{Snapshot: <-obs.Updates()}
	}
}

// loadFeed fetches one page of a browse feed through the catalog
// service (which falls back to its cached snapshot on failure).
func loadFeed(svc *catalog.Service, id domain.FeedID, page int) tea.Cmd {
	return func() tea.Msg {
		result, fromCache, err := svc.Feed(context.Background(), id, page)
		return FeedLoadedMsg{Feed: id, Page: result, FromCache: fromCache, Err: err}
	}
}

// loadMovieDetails fetches extended metadata for the detail overlay.
func loadMovieDetails(repo domain.MetadataRepository, id int) tea.Cmd {
	return func() tea.Msg {
		details, err := repo.MovieDetails(context.Background(), id)
		if err != nil {
			return ErrMsg{Err: err, Context: "failed to load movie details"}
		}
		return MovieDetailsMsg{Details: details}
	}
}

// loadSeriesDetails fetches extended metadata for the detail overlay.
func loadSeriesDetails(repo domain.MetadataRepository, id int) tea.Cmd {
	return func() tea.Msg {
		details, err := repo.SeriesDetails(context.Background(), id)
		if err != nil {
			return ErrMsg{Err: err, Context: "failed to load series details"}
		}
		return SeriesDetailsMsg{Details: details}
	}
}

// saveWishlist persists the wishlist in the background. Mutations
// return immediately; this is the separate, trackable save task.
func saveWishlist(wl *wishlist.Service, userID string) tea.Cmd {
	return func() tea.Msg {
		wl.Save(context.Background(), userID)
		return WishlistSavedMsg{}
	}
}
