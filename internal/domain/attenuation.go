package domain

import "time"

// AttenuationPeriod is the time it takes a level to drop one step.
// Earlier revisions used longer periods; three days is current.
const AttenuationPeriod = 3 * 24 * time.Hour

// ApplyTimeAttenuation lowers base by one level per full AttenuationPeriod
// elapsed between observedAt and now. The result never exceeds the clamped
// base level and never drops below LevelLow. An observedAt after now is
// treated as zero elapsed time.
//
// observedAt must be a real timestamp; parsing and rejecting bad input is the
// caller's job.
func ApplyTimeAttenuation(base Level, observedAt, now time.Time) Level {
	elapsed := now.Sub(observedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	steps := int(elapsed / AttenuationPeriod)
	return ClampLevel(int(ClampLevel(int(base))) - steps)
}

// AttenuateNow is ApplyTimeAttenuation against the package clock.
func AttenuateNow(base Level, observedAt time.Time) Level {
	return ApplyTimeAttenuation(base, observedAt, clock.Now())
}
