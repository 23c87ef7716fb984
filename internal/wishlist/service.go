package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/domain"
)

// Storage keys, one per typed collection. The two blobs are written
// independently: a crash between the writes can leave them out of step
// with each other. In-memory state is the source of truth and
// persistence is best-effort, so the next successful save repairs it.
func moviesKey(userID string) string { return "wishlist:movies:" + userID }
func seriesKey(userID string) string { return "wishlist:series:" + userID }

// Service holds the per-user wishlist: two typed collections with
// derived counts, persisted to the key-value store as JSON snapshots.
//
// Mutations are synchronous and apply atomically in call order. Load
// and Save are I/O operations and are not serialized against each
// other; whichever write completes last wins. Save snapshots state at
// call time, before any I/O, so mutations racing an in-flight save do
// not leak into the blob being written.
type Service struct {
	kv     domain.KeyValueStore
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	movies  []domain.WishlistItem
	series  []domain.WishlistItem
	lastErr string
}

// NewService creates an empty wishlist backed by kv.
func NewService(kv domain.KeyValueStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, logger: logger, now: time.Now}
}

// === Mutations ===

// AddMovie inserts item into the movie collection unless an entry with
// the same ID already exists. AddedAt is stamped at insertion.
func (s *Service) AddMovie(item domain.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = s.add(s.movies, item, domain.MediaKindMovie)
}

// AddSeries inserts item into the series collection unless an entry
// with the same ID already exists.
func (s *Service) AddSeries(item domain.WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = s.add(s.series, item, domain.MediaKindSeries)
}

func (s *Service) add(items []domain.WishlistItem, item domain.WishlistItem, kind domain.MediaKind) []domain.WishlistItem {
	for _, existing := range items {
		if existing.ID == item.ID {
			return items
		}
	}
	item.Kind = kind
	item.AddedAt = s.now()
	return append(items, item)
}

// RemoveMovie deletes the movie with the given ID. No-op if absent.
func (s *Service) RemoveMovie(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = remove(s.movies, id)
}

// RemoveSeries deletes the series with the given ID. No-op if absent.
func (s *Service) RemoveSeries(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = remove(s.series, id)
}

func remove(items []domain.WishlistItem, id int) []domain.WishlistItem {
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// ToggleMovie removes the movie if listed, otherwise adds it.
// Returns true if the item is listed after the call.
func (s *Service) ToggleMovie(item domain.WishlistItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.movies, item.ID) {
		s.movies = remove(s.movies, item.ID)
		return false
	}
	s.movies = s.add(s.movies, item, domain.MediaKindMovie)
	return true
}

// ToggleSeries removes the series if listed, otherwise adds it.
// Returns true if the item is listed after the call.
func (s *Service) ToggleSeries(item domain.WishlistItem) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.series, item.ID) {
		s.series = remove(s.series, item.ID)
		return false
	}
	s.series = s.add(s.series, item, domain.MediaKindSeries)
	return true
}

// Sort reorders one collection in place. Title sorts ascending,
// case-insensitive; rating sorts descending with a missing vote
// average treated as 0; anything else sorts by AddedAt descending.
// Both title and rating sorts are stable for equal keys.
func (s *Service) Sort(kind domain.MediaKind, key domain.SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.WishlistItem
	switch kind {
	case domain.MediaKindMovie:
		items = s.movies
	case domain.MediaKindSeries:
		items = s.series
	default:
		return
	}

	switch key {
	case domain.SortByTitle:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SortTitle() < items[j].SortTitle()
		})
	case domain.SortByRating:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].VoteAverage > items[j].VoteAverage
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].AddedAt.After(items[j].AddedAt)
		})
	}
}

// Clear empties one collection.
func (s *Service) Clear(kind domain.MediaKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case domain.MediaKindMovie:
		s.movies = nil
	case domain.MediaKindSeries:
		s.series = nil
	}
}

// ClearAll empties both collections.
func (s *Service) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = nil
	s.series = nil
}

// === Persistence ===

// Load replaces both collections with the per-user snapshots from the
// key-value store. Missing blobs are valid empty state; unparsable
// blobs fall back to empty and set the error flag. No-op without a
// user ID. Never returns an error across the store boundary.
func (s *Service) Load(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	movies := s.loadCollection(ctx, moviesKey(userID))
	series := s.loadCollection(ctx, seriesKey(userID))

	s.mu.Lock()
	s.movies = movies
	s.series = series
	s.mu.Unlock()

	s.logger.Debug("loaded wishlist", "userID", userID, "movies", len(movies), "series", len(series))
}

func (s *Service) loadCollection(ctx context.Context, key string) []domain.WishlistItem {
	blob, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Error("failed to read wishlist", "error", err, "key", key)
		s.setErr("Failed to load wishlist")
		return nil
	}
	if !ok {
		return nil
	}

	var items []domain.WishlistItem
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		s.logger.Error("failed to parse wishlist", "error", err, "key", key)
		s.setErr("Failed to load wishlist")
		return nil
	}
	return items
}

// Save serializes both collections and writes them under the per-user
// keys. The snapshot is taken at call time, before any I/O. Failure
// sets the error flag; in-memory state is never rolled back. No-op
// without a user ID.
func (s *Service) Save(ctx context.Context, userID string) {
	if userID == "" {
		return
	}

	s.mu.Lock()
	moviesBlob, mErr := json.Marshal(s.movies)
	seriesBlob, sErr := json.Marshal(s.series)
	s.mu.Unlock()

	if mErr != nil || sErr != nil {
		s.logger.Error("failed to serialize wishlist", "userID", userID)
		s.setErr("Failed to save wishlist")
		return
	}

	if err := s.kv.Set(ctx, moviesKey(userID), string(moviesBlob)); err != nil {
		s.logger.Error("failed to save wishlist movies", "error", err, "userID", userID)
		s.setErr("Failed to save wishlist")
		return
	}
	if err := s.kv.Set(ctx, seriesKey(userID), string(seriesBlob)); err != nil {
		s.logger.Error("failed to save wishlist series", "error", err, "userID", userID)
		s.setErr("Failed to save wishlist")
		return
	}

	s.logger.Debug("saved wishlist", "userID", userID)
}

// === Selectors ===

// IsMovieListed reports whether a movie with the given ID is saved.
func (s *Service) IsMovieListed(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.movies, id)
}

// IsSeriesListed reports whether a series with the given ID is saved.
func (s *Service) IsSeriesListed(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contains(s.series, id)
}

func contains(items []domain.WishlistItem, id int) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// MovieCount returns the number of saved movies.
func (s *Service) MovieCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movies)
}

// SeriesCount returns the number of saved series.
func (s *Service) SeriesCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.series)
}

// TotalCount returns the combined size of both collections.
func (s *Service) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movies) + len(s.series)
}

// Movies returns a copy of the movie collection in its current order.
func (s *Service) Movies() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistItem(nil), s.movies...)
}

// Series returns a copy of the series collection in its current order.
func (s *Service) Series() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistItem(nil), s.series...)
}

// Filter returns saved items (both collections) whose titles fuzzy-
// match query, best matches first. An empty query returns everything.
func (s *Service) Filter(query string) []domain.WishlistItem {
	s.mu.Lock()
	all := make([]domain.WishlistItem, 0, len(s.movies)+len(s.series))
	all = append(all, s.movies...)
	all = append(all, s.series...)
	s.mu.Unlock()

	if query == "" {
		return all
	}

	type ranked struct {
		item domain.WishlistItem
		rank int
	}
	var matched []ranked
	for _, item := range all {
		if r := fuzzy.RankMatchNormalizedFold(query, item.DisplayTitle()); r >= 0 {
			matched = append(matched, ranked{item: item, rank: r})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].rank < matched[j].rank
	})

	out := make([]domain.WishlistItem, len(matched))
	for i, m := range matched {
		out[i] = m.item
	}
	return out
}

// Err returns the current error flag ("" when clear).
func (s *Service) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearErr resets the error flag.
func (s *Service) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *Service) setErr(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

// String summarizes the wishlist for logging.
func (s *Service) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("wishlist(movies=%d series=%d)", len(s.movies), len(s.series))
}
