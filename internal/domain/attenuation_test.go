package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

var attenuationNow = time.Date(2025, 2, 12, 9, 0, 0, 0, time.UTC)

func TestApplyTimeAttenuation(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name    string
		base    Level
		elapsed time.Duration
		want    Level
	}{
		{"zero elapsed", LevelStrong, 0, LevelStrong},
		{"just under one period", LevelStrong, 3*day - time.Second, LevelStrong},
		{"exactly one period", LevelStrong, 3 * day, LevelMarked},
		{"two and a half periods", LevelVeryStrong, 7*day + 12*time.Hour, LevelMarked},
		{"floors at low", LevelMarked, 30 * day, LevelLow},
		{"low stays low", LevelLow, 4 * day, LevelLow},
		{"future observation", LevelStrong, -5 * day, LevelStrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyTimeAttenuation(tt.base, attenuationNow.Add(-tt.elapsed), attenuationNow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyTimeAttenuation_OutOfRangeBase(t *testing.T) {
	assert.Equal(t, LevelVeryStrong, ApplyTimeAttenuation(Level(8), attenuationNow, attenuationNow))
	assert.Equal(t, LevelLow, ApplyTimeAttenuation(Level(0), attenuationNow, attenuationNow))
}

func TestApplyTimeAttenuation_MonotonicAndBounded(t *testing.T) {
	for _, base := range Levels() {
		prev := ApplyTimeAttenuation(base, attenuationNow, attenuationNow)
		assert.Equal(t, base, prev)
		for hours := 1; hours <= 24*30; hours += 7 {
			got := ApplyTimeAttenuation(base, attenuationNow.Add(-time.Duration(hours)*time.Hour), attenuationNow)
			assert.LessOrEqual(t, got, prev, "base %d after %dh", base, hours)
			assert.LessOrEqual(t, got, base)
			assert.GreaterOrEqual(t, got, LevelLow)
			prev = got
		}
	}
}

func TestAttenuateNow_UsesPackageClock(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(attenuationNow))
	defer SetClock(nil)

	observed := attenuationNow.Add(-6 * 24 * time.Hour)
	assert.Equal(t, LevelMarked, AttenuateNow(LevelVeryStrong, observed))
	assert.Equal(t, attenuationNow, Now())
}
