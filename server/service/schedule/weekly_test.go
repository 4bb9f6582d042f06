package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeeklyBlocks(t *testing.T) {
	raw := []map[string]any{
		{"day": "mon", "time": "18:00", "type": "chat", "durationMinutes": 30},
		{"day": "wed", "time": "07:15", "type": "lesson"},
		{"day": "fri", "time": "21:45", "type": "chat", "durationMinutes": float64(45)},
	}

	blocks, dropped := ParseWeeklyBlocks(raw)
	assert.Zero(t, dropped)
	assert.Equal(t, []WeeklyBlock{
		{Day: "mon", Time: "18:00", Type: BlockTypeChat, DurationMinutes: 30},
		{Day: "wed", Time: "07:15", Type: BlockTypeLesson, DurationMinutes: DefaultBlockDurationMinutes},
		{Day: "fri", Time: "21:45", Type: BlockTypeChat, DurationMinutes: 45},
	}, blocks)
}

func TestParseWeeklyBlocks_DropsMalformedEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
	}{
		{name: "missing time", entry: map[string]any{"day": "mon", "type": "chat"}},
		{name: "invalid weekday", entry: map[string]any{"day": "monday", "time": "18:00", "type": "chat"}},
		{name: "non quarter-hour minute", entry: map[string]any{"day": "mon", "time": "18:10", "type": "chat"}},
		{name: "unnormalized time", entry: map[string]any{"day": "mon", "time": "9:30", "type": "chat"}},
		{name: "unknown type", entry: map[string]any{"day": "mon", "time": "18:00", "type": "exam"}},
		{name: "wrong value kinds", entry: map[string]any{"day": 1, "time": 1800, "type": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, dropped := ParseWeeklyBlocks([]map[string]any{tt.entry})
			assert.Empty(t, blocks)
			assert.Equal(t, 1, dropped)
		})
	}
}

func TestParseWeeklyBlocks_MalformedDoesNotAffectSiblings(t *testing.T) {
	raw := []map[string]any{
		{"day": "mon", "time": "18:00", "type": "chat"},
		{"day": "xxx", "time": "18:00", "type": "chat"},
		{"day": "tue", "time": "19:30", "type": "lesson"},
	}

	blocks, dropped := ParseWeeklyBlocks(raw)
	assert.Equal(t, 1, dropped)
	assert.Len(t, blocks, 2)
	assert.Equal(t, "mon", blocks[0].Day)
	assert.Equal(t, "tue", blocks[1].Day)
}

func TestParseWeeklyBlocks_InvalidDurationFallsBack(t *testing.T) {
	raw := []map[string]any{
		{"day": "mon", "time": "18:00", "type": "chat", "durationMinutes": -5},
		{"day": "tue", "time": "18:00", "type": "chat", "durationMinutes": "long"},
		{"day": "wed", "time": "18:00", "type": "chat", "durationMinutes": 22.5},
	}

	blocks, dropped := ParseWeeklyBlocks(raw)
	assert.Zero(t, dropped, "invalid duration never drops the block")
	for _, b := range blocks {
		assert.Equal(t, DefaultBlockDurationMinutes, b.DurationMinutes)
	}
}
