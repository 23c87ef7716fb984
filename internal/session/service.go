package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/wishlist"
)

const (
	keyUser   = "session:user"
	keyActive = "session:active"
)

// Service manages the signed-in user and ties the wishlist lifecycle
// to it: login loads the user's wishlist, logout flushes it before
// clearing in-memory state. The persisted wishlist snapshot survives
// logout under the user's storage keys.
type Service struct {
	kv       domain.KeyValueStore
	wishlist *wishlist.Service
	logger   *slog.Logger

	mu   sync.Mutex
	user *domain.User
}

// NewService creates a new session service.
func NewService(kv domain.KeyValueStore, wl *wishlist.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, wishlist: wl, logger: logger}
}

// Current returns the signed-in user, or nil.
func (s *Service) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Login persists the user and loads their wishlist.
func (s *Service) Login(ctx context.Context, user domain.User) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, keyUser, string(blob)); err != nil {
		s.logger.Error("failed to persist session", "error", err)
		return err
	}
	if err := s.kv.Set(ctx, keyActive, "true"); err != nil {
		s.logger.Error("failed to persist session flag", "error", err)
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.wishlist.Load(ctx, user.ID)
	s.logger.Info("user signed in", "userID", user.ID)
	return nil
}

// Resume restores a previously persisted session, if one exists.
// Returns nil without error when there is nothing to resume.
func (s *Service) Resume(ctx context.Context) (*domain.User, error) {
	active, ok, err := s.kv.Get(ctx, keyActive)
	if err != nil {
		return nil, err
	}
	if !ok || active != "true" {
		return nil, nil
	}

	blob, ok, err := s.kv.Get(ctx, keyUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(blob), &user); err != nil {
		// A corrupt session blob is unrecoverable; drop it.
		s.logger.Error("corrupt session blob, clearing", "error", err)
		s.kv.Remove(ctx, keyUser)
		s.kv.Remove(ctx, keyActive)
		return nil, nil
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.wishlist.Load(ctx, user.ID)
	s.logger.Info("session resumed", "userID", user.ID)
	return &user, nil
}

// Logout flushes the wishlist for the signed-in user, clears the
// in-memory collections, and removes the session keys. The persisted
// wishlist blobs are left in place for the next login.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.user = nil
	s.mu.Unlock()

	if user != nil {
		s.wishlist.Save(ctx, user.ID)
	}
	s.wishlist.ClearAll()

	if err := s.kv.Remove(ctx, keyUser); err != nil {
		s.logger.Error("failed to clear session", "error", err)
		return err
	}
	if err := s.kv.Remove(ctx, keyActive); err != nil {
		s.logger.Error("failed to clear session flag", "error", err)
		return err
	}

	if user != nil {
		s.logger.Info("user signed out", "userID", user.ID)
	}
	return nil
}
