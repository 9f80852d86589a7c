package perfmodel

import (
	"context"
	"testing"
	"time"

	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_SaveLoadRoundTrip(t *testing.T) {
	store, err := NewCacheStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	p := playerWithWeeks(10, 12, 11, 13, 12, 14)
	state, err := Train(p, 2024, 6)
	require.NoError(t, err)

	require.NoError(t, store.Save(state))

	loaded, err := store.Load(p.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, state.Components, loaded.Components)
	assert.Equal(t, state.SeasonMean, loaded.SeasonMean)
}

func TestCacheStore_MissingIsCacheMiss(t *testing.T) {
	store, err := NewCacheStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	_, err = store.Load("nobody", 2024)
	assert.ErrorIs(t, err, utils.ErrCacheMiss)
}

func TestCacheStore_ExpiredIsCacheStale(t *testing.T) {
	store, err := NewCacheStore(t.TempDir(), time.Millisecond)
	require.NoError(t, err)
	store.clock = func() time.Time { return time.Now().Add(time.Hour) }

	p := playerWithWeeks(10, 12, 11, 13, 12, 14)
	state, err := Train(p, 2024, 6)
	require.NoError(t, err)
	require.NoError(t, store.Save(state))

	_, err = store.Load(p.ID, 2024)
	assert.ErrorIs(t, err, utils.ErrCacheStale)
}

func TestCacheStore_SchemaVersionMismatchIsStale(t *testing.T) {
	store, err := NewCacheStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	p := playerWithWeeks(10, 12, 11, 13, 12, 14)
	state, err := Train(p, 2024, 6)
	require.NoError(t, err)
	state.SchemaVersion = SchemaVersion + 1
	require.NoError(t, store.Save(state))

	_, err = store.Load(p.ID, 2024)
	assert.ErrorIs(t, err, utils.ErrCacheStale)
}

func TestCacheStore_LoadOrTrainRetrainsOnMiss(t *testing.T) {
	store, err := NewCacheStore(t.TempDir(), time.Hour)
	require.NoError(t, err)

	p := playerWithWeeks(10, 12, 11, 13, 12, 14)
	state, err := store.LoadOrTrain(context.Background(), p, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, p.ID, state.PlayerID)

	cached, err := store.Load(p.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, state.Components, cached.Components)
}
