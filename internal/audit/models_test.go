package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBlob_ValueScanRoundTrip(t *testing.T) {
	original := JSONBlob{"league_id": "abc", "week": float64(5)}

	raw, err := original.Value()
	require.NoError(t, err)

	var restored JSONBlob
	require.NoError(t, restored.Scan(raw))
	assert.Equal(t, original, restored)
}

func TestReliabilityTable_ValueScanRoundTrip(t *testing.T) {
	original := ReliabilityTable{{BucketLow: 0.5, BucketHigh: 0.6, Predictions: 4, Wins: 3}}

	raw, err := original.Value()
	require.NoError(t, err)

	var restored ReliabilityTable
	require.NoError(t, restored.Scan(raw))
	assert.Equal(t, original, restored)
}

func TestNewDecisionAudit_StampsIDAndTimestamp(t *testing.T) {
	a := NewDecisionAudit(DecisionKindTrade, "league1", 7, JSONBlob{"my_players": "p1"}, JSONBlob{"recommendation": "ACCEPT"})
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.RequestedAt.IsZero())
	assert.Equal(t, DecisionKindTrade, a.Kind)
}
