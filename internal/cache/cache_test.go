package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionCache_NilClientAlwaysMisses(t *testing.T) {
	c := NewProjectionCache(nil)
	ctx := context.Background()

	require.NoError(t, c.set(ctx, "k", domain.PlayerProjection{}, time.Minute))

	_, ok, err := c.GetProjection(ctx, ProjectionKey("league1", 5, "p1", "cfg1"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, "k"))
}

func TestProjectionKey_ChangesWithConfigFingerprint(t *testing.T) {
	k1 := ProjectionKey("league1", 5, "p1", "cfg1")
	k2 := ProjectionKey("league1", 5, "p1", "cfg2")
	assert.NotEqual(t, k1, k2)
}

func TestAdjustmentKey_IsStableForSameInputs(t *testing.T) {
	assert.Equal(t, AdjustmentKey("league1", 5, "p1"), AdjustmentKey("league1", 5, "p1"))
}
