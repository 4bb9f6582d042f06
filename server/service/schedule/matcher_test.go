package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hablaai/habla/server/timezone"
)

// 2026-03-02 is a Monday.
func localTime(t *testing.T, loc *time.Location, day, hhmm string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", day+" "+hhmm, loc)
	require.NoError(t, err)
	return ts
}

func TestNearestOccurrence(t *testing.T) {
	loc := timezone.MustParse(timezone.DefaultTimezone)
	blocks := []WeeklyBlock{
		{Day: "mon", Time: "18:00", Type: BlockTypeChat, DurationMinutes: 30},
		{Day: "wed", Time: "07:15", Type: BlockTypeLesson, DurationMinutes: 15},
	}

	t.Run("near start within same day", func(t *testing.T) {
		match, found := NearestOccurrence(blocks, BlockTypeChat, localTime(t, loc, "2026-03-02", "18:10"), loc)
		require.True(t, found)
		assert.Equal(t, 10, match.DiffMinutes)
		assert.Equal(t, "mon", match.Block.Day)
		assert.Equal(t, "2026-03-02", match.OccursAt.Format("2006-01-02"))
	})

	t.Run("distance reported even far from block", func(t *testing.T) {
		match, found := NearestOccurrence(blocks, BlockTypeChat, localTime(t, loc, "2026-03-02", "20:00"), loc)
		require.True(t, found)
		assert.Equal(t, 120, match.DiffMinutes)
	})

	t.Run("type filter", func(t *testing.T) {
		match, found := NearestOccurrence(blocks, BlockTypeLesson, localTime(t, loc, "2026-03-04", "07:20"), loc)
		require.True(t, found)
		assert.Equal(t, "wed", match.Block.Day)
		assert.Equal(t, 5, match.DiffMinutes)

		_, found = NearestOccurrence(blocks, BlockType("exam"), localTime(t, loc, "2026-03-02", "18:00"), loc)
		assert.False(t, found)
	})

	t.Run("no blocks", func(t *testing.T) {
		_, found := NearestOccurrence(nil, BlockTypeChat, localTime(t, loc, "2026-03-02", "18:00"), loc)
		assert.False(t, found)
	})
}

func TestNearestOccurrence_WeekBoundary(t *testing.T) {
	loc := timezone.MustParse(timezone.DefaultTimezone)

	t.Run("sunday block matched from monday", func(t *testing.T) {
		blocks := []WeeklyBlock{{Day: "sun", Time: "23:45", Type: BlockTypeChat, DurationMinutes: 15}}
		// Monday 00:05 is 20 minutes after the previous Sunday 23:45.
		match, found := NearestOccurrence(blocks, BlockTypeChat, localTime(t, loc, "2026-03-02", "00:05"), loc)
		require.True(t, found)
		assert.Equal(t, 20, match.DiffMinutes)
		assert.Equal(t, "2026-03-01", match.OccursAt.Format("2006-01-02"))
	})

	t.Run("monday block matched from sunday", func(t *testing.T) {
		blocks := []WeeklyBlock{{Day: "mon", Time: "00:15", Type: BlockTypeChat, DurationMinutes: 15}}
		match, found := NearestOccurrence(blocks, BlockTypeChat, localTime(t, loc, "2026-03-01", "23:50"), loc)
		require.True(t, found)
		assert.Equal(t, 25, match.DiffMinutes)
		assert.Equal(t, "2026-03-02", match.OccursAt.Format("2006-01-02"))
	})
}

func TestNearestOccurrence_TieKeepsFirstDeclared(t *testing.T) {
	loc := timezone.MustParse(timezone.DefaultTimezone)
	blocks := []WeeklyBlock{
		{Day: "mon", Time: "17:00", Type: BlockTypeChat, DurationMinutes: 15},
		{Day: "mon", Time: "19:00", Type: BlockTypeChat, DurationMinutes: 15},
	}

	// 18:00 is exactly 60 minutes from both blocks.
	match, found := NearestOccurrence(blocks, BlockTypeChat, localTime(t, loc, "2026-03-02", "18:00"), loc)
	require.True(t, found)
	assert.Equal(t, "17:00", match.Block.Time)
	assert.Equal(t, 60, match.DiffMinutes)
}

func TestNearestOccurrence_RespectsUserTimezone(t *testing.T) {
	saoPaulo := timezone.MustParse("America/Sao_Paulo")

	blocks := []WeeklyBlock{{Day: "mon", Time: "18:00", Type: BlockTypeChat, DurationMinutes: 30}}
	// 21:10 UTC on Monday is 18:10 in Sao Paulo (UTC-3).
	startedAt := time.Date(2026, 3, 2, 21, 10, 0, 0, time.UTC)

	match, found := NearestOccurrence(blocks, BlockTypeChat, startedAt, saoPaulo)
	require.True(t, found)
	assert.Equal(t, 10, match.DiffMinutes)
}
