package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadPeriod reports an unparseable period string. Accepted suffixes are
// m (minutes), h, d, w, mo, and y; months and years use the flat 30- and
// 365-day approximations.
var ErrBadPeriod = errors.New("store: bad period")

const (
	minutesPerDay   = 1440
	minutesPerWeek  = 7 * minutesPerDay
	minutesPerMonth = 30 * minutesPerDay
	minutesPerYear  = 365 * minutesPerDay
)

// PeriodMinutes converts a period string like "15m", "4h", or "1d" into
// minutes.
func PeriodMinutes(period string) (int64, error) {
	p := strings.ToLower(strings.TrimSpace(period))

	suffixes := []struct {
		suffix string
		scale  int64
	}{
		{"mo", minutesPerMonth},
		{"m", 1},
		{"h", 60},
		{"d", minutesPerDay},
		{"w", minutesPerWeek},
		{"y", minutesPerYear},
	}
	for _, s := range suffixes {
		if !strings.HasSuffix(p, s.suffix) {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(p, s.suffix), 10, 64)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadPeriod, period)
		}
		return n * s.scale, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadPeriod, period)
}

// tableName maps a period onto its klines table. Non-alphanumeric runes
// become underscores so the period can never smuggle SQL into the DDL.
func tableName(period string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToLower(period) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "", fmt.Errorf("%w: %q", ErrBadPeriod, period)
	}
	return "klines_" + name, nil
}

// floorToPeriod aligns t to the start of its period bucket. Daily and
// larger periods align to midnight; intraday periods align within the day.
// All bucketing is in UTC.
func floorToPeriod(t time.Time, minutes int64) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if minutes >= minutesPerDay {
		return day
	}
	offset := int64(t.Hour())*60 + int64(t.Minute())
	return day.Add(time.Duration(offset/minutes*minutes) * time.Minute)
}
