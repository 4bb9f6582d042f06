package schedule

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hablaai/habla/server/timezone"
)

// Match is the nearest declared block occurrence for a session start.
type Match struct {
	Block WeeklyBlock
	// OccursAt is the local wall-clock instant of the matched occurrence.
	OccursAt time.Time
	// DiffMinutes is the absolute distance between the session start and
	// the occurrence.
	DiffMinutes int
}

// NearestOccurrence finds the declared block occurrence of the given type
// closest to startedAt, evaluated in loc.
//
// Each block contributes three candidate occurrences: last week's, this
// week's and next week's instance of its weekday/time, so a session near
// a week boundary (Sunday 23:55 against a Monday 00:05 block) still
// matches across the boundary. Ties keep the first candidate seen;
// iteration order is deterministic because blocks come in declared order.
//
// Returns false when no block of the requested type is declared.
func NearestOccurrence(blocks []WeeklyBlock, typ BlockType, startedAt time.Time, loc *time.Location) (Match, bool) {
	local := startedAt.In(loc)

	best := Match{DiffMinutes: math.MaxInt}
	found := false

	for _, block := range blocks {
		if block.Type != typ {
			continue
		}

		hour, minute := mustParseHHMM(block.Time)
		dayOffset := timezone.WeekdayIndex(block.Day) - timezone.WeekdayIndex(timezone.WeekdaySymbol(local.Weekday()))

		// Same-week instance of the block's weekday/time.
		base := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc).
			AddDate(0, 0, dayOffset)

		for _, weekOffset := range []int{-7, 0, 7} {
			occurrence := base.AddDate(0, 0, weekOffset)
			diff := absDiffMinutes(local, occurrence)
			if diff < best.DiffMinutes {
				best = Match{Block: block, OccursAt: occurrence, DiffMinutes: diff}
				found = true
			}
		}
	}

	return best, found
}

func absDiffMinutes(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(math.Round(d.Minutes()))
}

// mustParseHHMM splits a validated "HH:MM" string. Blocks reach the
// matcher only through ParseWeeklyBlocks, so the format holds.
func mustParseHHMM(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	return hour, minute
}
