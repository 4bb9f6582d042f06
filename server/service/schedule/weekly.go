// Package schedule matches observed session starts against a user's
// declared weekly study blocks and records the outcome.
package schedule

import (
	"time"

	"github.com/hablaai/habla/server/timezone"
)

// BlockType is the activity a weekly block commits to.
type BlockType string

const (
	// BlockTypeChat is a conversational practice block.
	BlockTypeChat BlockType = "chat"
	// BlockTypeLesson is a guided lesson block.
	BlockTypeLesson BlockType = "lesson"
)

// WeeklyBlock is a validated recurring study commitment.
type WeeklyBlock struct {
	Day             string // "mon".."sun"
	Time            string // 24-hour "HH:MM", minute in {00,15,30,45}
	Type            BlockType
	DurationMinutes int
}

// ParseWeeklyBlocks validates the raw stored schedule entries.
//
// Stored data is untrusted: entries failing shape validation are dropped
// silently and counted, never turned into an error, so one malformed
// entry cannot take down a user's whole schedule.
func ParseWeeklyBlocks(raw []map[string]any) (blocks []WeeklyBlock, dropped int) {
	for _, entry := range raw {
		block, ok := parseBlock(entry)
		if !ok {
			dropped++
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, dropped
}

func parseBlock(entry map[string]any) (WeeklyBlock, bool) {
	day, ok := entry["day"].(string)
	if !ok || timezone.WeekdayIndex(day) < 0 {
		return WeeklyBlock{}, false
	}

	timeStr, ok := entry["time"].(string)
	if !ok || !validBlockTime(timeStr) {
		return WeeklyBlock{}, false
	}

	typeStr, ok := entry["type"].(string)
	if !ok || (BlockType(typeStr) != BlockTypeChat && BlockType(typeStr) != BlockTypeLesson) {
		return WeeklyBlock{}, false
	}

	return WeeklyBlock{
		Day:             day,
		Time:            timeStr,
		Type:            BlockType(typeStr),
		DurationMinutes: parseDuration(entry["durationMinutes"]),
	}, true
}

// validBlockTime accepts 24-hour "HH:MM" with the minute quantized to a
// quarter hour.
func validBlockTime(s string) bool {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return false
	}
	// Reject non-normalized spellings such as "9:30".
	if t.Format("15:04") != s {
		return false
	}
	return t.Minute()%15 == 0
}

// parseDuration returns the block duration, falling back to the default
// when the stored value is absent or invalid. An invalid duration does
// not drop the block.
func parseDuration(v any) int {
	switch d := v.(type) {
	case int:
		if d > 0 {
			return d
		}
	case int64:
		if d > 0 {
			return int(d)
		}
	case float64:
		if d > 0 && d == float64(int(d)) {
			return int(d)
		}
	}
	return DefaultBlockDurationMinutes
}
