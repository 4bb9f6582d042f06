package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	loc, err := Parse("America/Asuncion")
	require.NoError(t, err)
	assert.Equal(t, "America/Asuncion", loc.String())

	loc, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = Parse("Not/AZone")
	assert.Error(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestUserLocation_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, "America/Sao_Paulo", UserLocation("America/Sao_Paulo").String())
	assert.Equal(t, DefaultTimezone, UserLocation("").String())
	assert.Equal(t, DefaultTimezone, UserLocation("garbage").String())
}

func TestWeekdaySymbol(t *testing.T) {
	assert.Equal(t, "mon", WeekdaySymbol(time.Monday))
	assert.Equal(t, "sun", WeekdaySymbol(time.Sunday))
	assert.Equal(t, "sat", WeekdaySymbol(time.Saturday))
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, 0, WeekdayIndex("mon"))
	assert.Equal(t, 6, WeekdayIndex("sun"))
	assert.Equal(t, -1, WeekdayIndex("monday"))
}

func TestLocalParts(t *testing.T) {
	loc := MustParse("America/Asuncion")
	// 2026-03-02 is a Monday. Asuncion is UTC-3 year-round since 2024.
	instant := time.Date(2026, 3, 2, 21, 5, 0, 0, time.UTC)

	parts := LocalParts(instant, loc)
	assert.Equal(t, "mon", parts.Weekday)
	assert.Equal(t, "18:05", parts.Time)
	assert.Equal(t, "2026-03-02", parts.ISODate)
}

func TestLocalParts_CrossesMidnight(t *testing.T) {
	loc := MustParse("America/Asuncion")
	// 02:30 UTC Tuesday is 23:30 Monday in Asuncion.
	instant := time.Date(2026, 3, 3, 2, 30, 0, 0, time.UTC)

	parts := LocalParts(instant, loc)
	assert.Equal(t, "mon", parts.Weekday)
	assert.Equal(t, "23:30", parts.Time)
	assert.Equal(t, "2026-03-02", parts.ISODate)
}
