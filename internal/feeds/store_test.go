package feeds

import (
	"testing"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeAt(t time.Time) domain.FeedEnvelope {
	return domain.FeedEnvelope{
		Data:            map[string]interface{}{"wind_mph": 5.0},
		SourceTimestamp: t,
		QualityFlags:    map[string]struct{}{},
		PublishTime:     t,
	}
}

func TestSnapshotStore_AsOfResolvesBackward(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	t0 := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Hour)
	t2 := t0.Add(4 * time.Hour)

	require.NoError(t, store.Record("league1", 2024, 1, "weather", envelopeAt(t0)))
	require.NoError(t, store.Record("league1", 2024, 1, "weather", envelopeAt(t1)))
	require.NoError(t, store.Record("league1", 2024, 1, "weather", envelopeAt(t2)))

	resolved, err := store.Resolve("league1", 2024, 1, "weather", t1, nil)
	require.NoError(t, err)
	assert.Equal(t, t1, resolved.PublishTime)
}

func TestSnapshotStore_AsOfMissReturnsNeutral(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	t0 := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	earlier := t0.Add(-time.Hour)

	resolved, err := store.Resolve("league1", 2024, 1, "weather", earlier, nil)
	require.ErrorIs(t, err, utils.ErrAsOfMiss)
	assert.True(t, resolved.HasFlag("as_of_miss"))
}

func TestSnapshotStore_StalenessFlagged(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	t0 := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record("league1", 2024, 1, "market", envelopeAt(t0)))

	asOf := t0.Add(3 * time.Hour)
	resolved, err := store.Resolve("league1", 2024, 1, "market", asOf, StalenessConfig{"market": time.Hour})
	require.NoError(t, err)
	assert.True(t, resolved.HasFlag("stale"))
}

func TestSnapshotStore_NoAsOfReturnsLatest(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	t0 := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	require.NoError(t, store.Record("league1", 2024, 1, "odds", envelopeAt(t0)))
	require.NoError(t, store.Record("league1", 2024, 1, "odds", envelopeAt(t1)))

	resolved, err := store.Resolve("league1", 2024, 1, "odds", time.Time{}, nil)
	require.NoError(t, err)
	assert.Equal(t, t1, resolved.PublishTime)
}
