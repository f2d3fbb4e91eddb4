package review

import (
	"time"
)

// Schedule is the finite interval table driving review scheduling.
// Intervals[i] is the gap in days a record at level i waits before its next
// review. Levels at or beyond len(Intervals) are "mastered" and recur at
// MasteredIntervalDays.
type Schedule struct {
	Intervals            []int
	MasteredIntervalDays int
}

// DefaultSchedule returns the standard forgetting-curve table.
func DefaultSchedule() Schedule {
	return Schedule{
		Intervals:            []int{1, 2, 4, 7, 15, 30},
		MasteredIntervalDays: 60,
	}
}

// MaxLevel is the mastered level: the number of finite intervals.
func (s Schedule) MaxLevel() int { return len(s.Intervals) }

// IntervalFor returns the review interval for a record at the given level.
// Levels at or beyond MaxLevel use the mastered interval; negative levels
// clamp to level 0.
func (s Schedule) IntervalFor(level int) time.Duration {
	if level >= s.MaxLevel() {
		return time.Duration(s.MasteredIntervalDays) * 24 * time.Hour
	}
	if level < 0 {
		level = 0
	}
	return time.Duration(s.Intervals[level]) * 24 * time.Hour
}

// Transition is the outcome of one review of one record.
type Transition struct {
	Level        int
	NextReviewAt time.Time
}

// Advance computes the next state for a record at the given level.
// Remembered raises the level by one, capped at mastered; forgotten resets
// to level 0 with no partial credit.
// Pure function of (level, remembered, now): no store, no clock, no logger.
func Advance(s Schedule, level int, remembered bool, now time.Time) Transition {
	if level < 0 {
		level = 0
	}

	var next int
	if remembered {
		next = level + 1
		if next > s.MaxLevel() {
			next = s.MaxLevel()
		}
	} else {
		next = 0
	}

	return Transition{
		Level:        next,
		NextReviewAt: now.Add(s.IntervalFor(next)),
	}
}
