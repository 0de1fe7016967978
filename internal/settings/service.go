// Package settings stores per-user display preferences.
package settings

import (
	"context"
	"strings"
	"time"

	"smartcents/internal/cache"
	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

type Service struct {
	store  ports.SettingsStore
	cache  *cache.LRUCache[core.Settings]
	logger *log.Logger
}

// NewService wraps store with a read-through cache of cacheSize entries.
func NewService(store ports.SettingsStore, cacheSize int, cacheTTL time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	return &Service{
		store:  store,
		cache:  cache.NewLRUCache[core.Settings](cacheSize, cacheTTL),
		logger: logger.WithComponent(log.ComponentSettings),
	}
}

// Get returns the stored settings, or the defaults when the user never saved
// any. A missing row is not an error.
func (s *Service) Get(ctx context.Context, userID string) (core.Settings, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return cached, nil
	}

	st, found, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return core.Settings{}, err
	}
	if !found {
		// defaults are not cached so a first write elsewhere is seen immediately
		return core.DefaultSettings(), nil
	}
	s.cache.Set(userID, st)
	return st, nil
}

// Upsert replaces the user's settings with st and returns what was stored.
// Input is normalized first: language and name are trimmed and the currency
// code is upper-cased, so a later Get returns the normalized form rather
// than st verbatim. Callers holding a partial change merge it first with Get
// and core.Settings.Apply.
func (s *Service) Upsert(ctx context.Context, userID string, st core.Settings) (core.Settings, error) {
	st = normalize(st)
	if err := st.Validate(); err != nil {
		return core.Settings{}, err
	}

	saved, err := s.store.UpsertSettings(ctx, userID, st)
	if err != nil {
		s.cache.Delete(userID)
		return core.Settings{}, err
	}
	s.cache.Set(userID, saved)

	s.logger.InfoContext(ctx, "Settings saved", log.FieldUserID, userID, log.FieldOperation, log.OpUpdate)
	return saved, nil
}

// Update applies a partial change on top of the current settings.
func (s *Service) Update(ctx context.Context, userID string, patch core.SettingsPatch) (core.Settings, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return core.Settings{}, err
	}
	return s.Upsert(ctx, userID, current.Apply(patch))
}

// Cache exposes the read cache so the caller can register it for cleanup.
func (s *Service) Cache() *cache.LRUCache[core.Settings] {
	return s.cache
}

func normalize(st core.Settings) core.Settings {
	st.Language = strings.TrimSpace(st.Language)
	st.Currency = strings.ToUpper(strings.TrimSpace(st.Currency))
	st.Name = strings.TrimSpace(st.Name)
	return st
}
