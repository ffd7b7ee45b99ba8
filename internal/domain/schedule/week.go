// Package schedule derives the current NFL reporting week from wall
// clock time. The anchor table is an approximation of the real league
// calendar, not an authoritative schedule.
package schedule

import "time"

const (
	FirstWeek = 1
	LastWeek  = 18
)

// SeasonYear returns the year the season started: the current year
// from September onward, otherwise the previous year.
func SeasonYear(now time.Time) int {
	if now.Month() >= time.September {
		return now.Year()
	}
	return now.Year() - 1
}

// CurrentWeek returns the week number in [1,18] for the given instant.
// Week starts are fixed seven-day anchors from September 5 of the
// season year; the result is the highest anchor at or before now.
func CurrentWeek(now time.Time) int {
	anchors := weekAnchors(SeasonYear(now))

	week := FirstWeek
	for i, anchor := range anchors {
		if now.Before(anchor) {
			break
		}
		week = i + 1
	}

	if week < FirstWeek {
		return FirstWeek
	}
	if week > LastWeek {
		return LastWeek
	}
	return week
}

// ClampWeek bounds an externally supplied week to the valid range.
// Zero or negative means "use the current week".
func ClampWeek(week int, now time.Time) int {
	if week <= 0 {
		return CurrentWeek(now)
	}
	if week > LastWeek {
		return LastWeek
	}
	return week
}

func weekAnchors(seasonYear int) []time.Time {
	start := time.Date(seasonYear, time.September, 5, 0, 0, 0, 0, time.UTC)
	anchors := make([]time.Time, LastWeek)
	for i := range anchors {
		anchors[i] = start.AddDate(0, 0, 7*i)
	}
	return anchors
}
