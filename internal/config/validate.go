package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}

	return nil
}

func (s *SRSConfig) validate() error {
	if s.MasteredIntervalDays <= 0 {
		return fmt.Errorf("mastered_interval_days must be > 0 (got %d)", s.MasteredIntervalDays)
	}

	intervals, err := ParseIntervals(s.IntervalsRaw)
	if err != nil {
		return fmt.Errorf("intervals: %w", err)
	}
	if len(intervals) == 0 {
		return fmt.Errorf("intervals must not be empty")
	}
	s.Intervals = intervals

	return nil
}

// ParseIntervals parses a comma-separated string of day counts
// (e.g. "1,2,4,7,15,30") into a slice of ints. An empty string returns a
// nil slice.
func ParseIntervals(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	intervals := make([]int, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid day count %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("day count must be > 0 (got %d)", n)
		}
		intervals = append(intervals, n)
	}

	return intervals, nil
}
