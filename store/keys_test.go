package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleLogID(t *testing.T) {
	assert.Equal(t, "2026-03-02_18:00", ScheduleLogID("2026-03-02", "18:00"))
}

func TestDispatchID(t *testing.T) {
	assert.Equal(t, "2026-03-02_18:00_pre", DispatchID("2026-03-02", "18:00", DispatchPhasePre))
	assert.Equal(t, "2026-03-02_18:00_now", DispatchID("2026-03-02", "18:00", DispatchPhaseNow))
}
