package settings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateUser(context.Background(), core.User{ID: "u1", Email: "a@example.com", PasswordHash: "x"}))
	return NewService(store, 8, time.Minute, log.Nop()), store
}

func TestGetReturnsDefaultsForMissingRow(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, core.Settings{Language: "en", Currency: "USD", Theme: core.ThemeLight}, got)
}

func TestUpsertThenGetRoundTrips(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	s := core.Settings{Language: "it", Currency: "EUR", Theme: core.ThemeDark, Name: "Ada"}
	saved, err := svc.Upsert(ctx, "u1", s)
	require.NoError(t, err)
	assert.Equal(t, s, saved)

	again, err := svc.Upsert(ctx, "u1", s)
	require.NoError(t, err)
	assert.Equal(t, saved, again, "upsert is idempotent")

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	// bypass the cache to check what storage holds
	stored, found, err := store.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, s, stored)
}

func TestUpsertStoresNormalizedForm(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Upsert(ctx, "u1", core.Settings{Language: " it ", Currency: "eur", Theme: core.ThemeDark, Name: " Ada "})
	require.NoError(t, err)
	want := core.Settings{Language: "it", Currency: "EUR", Theme: core.ThemeDark, Name: "Ada"}
	assert.Equal(t, want, saved)

	stored, found, err := store.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, saved, stored, "Get returns exactly what Upsert returned")

	again, err := svc.Upsert(ctx, "u1", saved)
	require.NoError(t, err)
	assert.Equal(t, saved, again)
}

func TestUpsertReplacesWholeRow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "u1", core.Settings{Language: "it", Currency: "EUR", Theme: core.ThemeDark, Name: "Ada"})
	require.NoError(t, err)

	replacement := core.Settings{Language: "en", Currency: "GBP", Theme: core.ThemeLight}
	_, err = svc.Upsert(ctx, "u1", replacement)
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestUpsertValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "u1", core.Settings{Language: "en", Currency: "USD", Theme: "sepia"})
	assert.ErrorIs(t, err, core.ErrInvalidTheme)

	_, err = svc.Upsert(ctx, "u1", core.Settings{Language: "en", Currency: "ABC", Theme: core.ThemeLight})
	assert.ErrorIs(t, err, core.ErrInvalidCurrency)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultSettings(), got, "rejected upserts must not write")
}

func TestUpdateMergesPatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dark := core.ThemeDark
	name := "Grace"
	got, err := svc.Update(ctx, "u1", core.SettingsPatch{Theme: &dark, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, core.Settings{Language: "en", Currency: "USD", Theme: core.ThemeDark, Name: "Grace"}, got)

	eur := "eur"
	got, err = svc.Update(ctx, "u1", core.SettingsPatch{Currency: &eur})
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "Grace", got.Name)
	assert.Equal(t, 1, svc.Cache().Size())
}
