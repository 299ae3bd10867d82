// Package hms converts between countdown durations and the hours, minutes
// and seconds a person enters or reads.
package hms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Picker ranges.
const (
	MaxHours   = 24
	MaxMinutes = 59
	MaxSeconds = 59
)

// ErrOutOfRange is returned when a component is outside its picker range.
var ErrOutOfRange = errors.New("out of range")

// Duration combines picker values into a duration.
func Duration(hours, minutes, seconds int) (time.Duration, error) {
	if hours < 0 || hours > MaxHours {
		return 0, fmt.Errorf("hours %d: %w (0-%d)", hours, ErrOutOfRange, MaxHours)
	}
	if minutes < 0 || minutes > MaxMinutes {
		return 0, fmt.Errorf("minutes %d: %w (0-%d)", minutes, ErrOutOfRange, MaxMinutes)
	}
	if seconds < 0 || seconds > MaxSeconds {
		return 0, fmt.Errorf("seconds %d: %w (0-%d)", seconds, ErrOutOfRange, MaxSeconds)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second, nil
}

// Split breaks d into whole hours, minutes and seconds. Sub-second
// remainders are truncated and negative durations count as zero.
func Split(d time.Duration) (hours, minutes, seconds int) {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return total / 3600, total / 60 % 60, total % 60
}

// Format renders d as HH:MM:SS.
func Format(d time.Duration) string {
	h, m, s := Split(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Parse reads a duration from either Go syntax ("1h2m3s") or clock syntax
// ("HH:MM:SS", "MM:SS", "SS"). Clock components are range checked.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.ContainsAny(s, "hms") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
		if d < 0 {
			return 0, fmt.Errorf("negative duration %v", d)
		}
		return d, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock duration %q", s)
	}
	values := make([]int, 3)
	offset := 3 - len(parts)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid clock duration %q: %w", s, err)
		}
		values[offset+i] = v
	}
	return Duration(values[0], values[1], values[2])
}
