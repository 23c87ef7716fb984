package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
)

func feedKey(id domain.FeedID) string { return "catalog:feed:" + string(id) }

// Service fetches browse feeds and keeps a last-write-wins snapshot of
// page 1 of each feed in the key-value store, so the UI can show stale
// content alongside a retry affordance when the network is down.
type Service struct {
	repo   domain.MetadataRepository
	kv     domain.KeyValueStore
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo domain.MetadataRepository, kv domain.KeyValueStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, kv: kv, logger: logger}
}

// Feed returns one page of a browse feed. On a fetch failure the
// cached page-1 snapshot is returned instead, when one exists,
// together with the original error; fromCache reports which happened.
func (s *Service) Feed(ctx context.Context, id domain.FeedID, page int) (result *domain.SearchPage, fromCache bool, err error) {
	fetched, err := s.repo.Feed(ctx, id, page)
	if err == nil {
		if page == 1 {
			s.cache(ctx, id, fetched)
		}
		return fetched, false, nil
	}

	s.logger.Error("feed fetch failed", "error", err, "feed", id, "page", page)

	if cached, ok := s.cached(ctx, id); ok {
		s.logger.Debug("serving cached feed", "feed", id)
		return cached, true, err
	}
	return nil, false, err
}

func (s *Service) cache(ctx context.Context, id domain.FeedID, page *domain.SearchPage) {
	blob, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, feedKey(id), string(blob)); err != nil {
		s.logger.Error("failed to cache feed", "error", err, "feed", id)
	}
}

func (s *Service) cached(ctx context.Context, id domain.FeedID) (*domain.SearchPage, bool) {
	blob, ok, err := s.kv.Get(ctx, feedKey(id))
	if err != nil || !ok {
		return nil, false
	}
	var page domain.SearchPage
	if err := json.Unmarshal([]byte(blob), &page); err != nil {
		return nil, false
	}
	return &page, true
}

// Invalidate drops the cached snapshot for a feed.
func (s *Service) Invalidate(ctx context.Context, id domain.FeedID) {
	if err := s.kv.Remove(ctx, feedKey(id)); err != nil {
		s.logger.Error("failed to invalidate feed cache", "error", err, "feed", id)
	}
}
