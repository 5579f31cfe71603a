package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/tally-dev/tally/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	timeLayout  = "15:04:05"
	defaultTime = "00:00:00"
)

var dashedDayFirst = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)

// NormalizeDate rewrites DD/MM/YYYY and DD-MM-YYYY as YYYY-MM-DD. Anything
// else is returned unchanged. Components are not range-checked here.
func NormalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if strings.Contains(date, "/") {
		parts := strings.Split(date, "/")
		if len(parts) == 3 {
			return parts[2] + "-" + parts[1] + "-" + parts[0]
		}
		return date
	}
	if m := dashedDayFirst.FindStringSubmatch(date); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return date
}

// Timestamp combines a date and time into the canonical persisted form.
// A blank date yields now; a blank time yields midnight. HH:MM gets
// zero seconds.
func Timestamp(date, clock string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return now.Format(model.TimestampLayout)
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		clock = defaultTime
	}
	return NormalizeDate(date) + " " + padTime(clock)
}

// padTime turns HH:MM into HH:MM:SS. Other input is returned unchanged.
func padTime(clock string) string {
	if len(clock) == len("15:04") && strings.Count(clock, ":") == 1 {
		return clock + ":00"
	}
	return clock
}
