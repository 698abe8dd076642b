package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecentNewestFirst(t *testing.T) {
	m := NewMemory(3)
	ctx := context.Background()
	for i, code := range []string{"AAAAAA", "BBBBBB", "CCCCCC", "DDDDDD"} {
		require.NoError(t, m.Record(ctx, Result{Code: code, Score: i * 10}))
	}

	got, err := m.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "DDDDDD", got[0].Code)
	assert.Equal(t, "BBBBBB", got[2].Code)

	got, err = m.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 30, got[0].Score)
}

func TestMemoryEmpty(t *testing.T) {
	got, err := NewMemory(0).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRowKeepsParticipantsAndUTC(t *testing.T) {
	ended := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	row := toRow(Result{Code: "ABCDEF", Score: 55, Won: true, Participants: []string{"p1", "p2"}, EndedAt: ended})

	assert.Equal(t, "p1,p2", row.Participants)
	assert.Equal(t, time.UTC, row.EndedAt.Location())

	back := row.result()
	assert.Equal(t, []string{"p1", "p2"}, back.Participants)
	assert.True(t, back.EndedAt.Equal(ended))
	assert.Empty(t, matchResult{}.result().Participants)
}
