package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTZOffsetHours applies to unknown or missing zone abbreviations.
const DefaultTZOffsetHours = -8

var tzOffsets = map[string]int{
	"UTC":  0,
	"GMT":  0,
	"Z":    0,
	"EST":  -5,
	"EDT":  -4,
	"CST":  -6,
	"CDT":  -5,
	"MST":  -7,
	"MDT":  -6,
	"PST":  -8,
	"PDT":  -7,
	"AKST": -9,
	"AKDT": -8,
	"HST":  -10,
	"BST":  1,
	"CET":  1,
	"CEST": 2,
}

// "March 5, 2025 at 3:04 PM EST", "Mar 5, 2025 at 3:04pm PST"
var vendorTimestamp = regexp.MustCompile(`(?i)^\s*([a-z]+)\.?\s+(\d{1,2}),\s*(\d{4})\s+at\s+(\d{1,2}):(\d{2})\s*([ap]m)\s*([a-z]{1,5})?\s*$`)

var fallbackLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
}

var months = func() map[string]time.Month {
	m := make(map[string]time.Month, 25)
	for i := time.January; i <= time.December; i++ {
		name := strings.ToLower(i.String())
		m[name] = i
		m[name[:3]] = i
	}
	m["sept"] = time.September
	return m
}()

// TimestampParser resolves export timestamps into absolute instants.
type TimestampParser struct {
	defaultZone *time.Location
}

func NewTimestampParser(defaultOffsetHours int) *TimestampParser {
	return &TimestampParser{
		defaultZone: fixedZone(defaultOffsetHours),
	}
}

func fixedZone(hours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
}

// Parse accepts the vendor form first and falls back to common layouts.
// Timestamps without zone information are read in the default zone.
func (p *TimestampParser) Parse(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, ok := p.parseVendor(s); ok {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, p.defaultZone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", raw)
}

func (p *TimestampParser) parseVendor(s string) (time.Time, bool) {
	m := vendorTimestamp.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := months[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if day < 1 || day > 31 || hour < 1 || hour > 12 || minute > 59 {
		return time.Time{}, false
	}

	// 12-hour clock
	hour %= 12
	if strings.EqualFold(m[6], "pm") {
		hour += 12
	}

	loc := p.defaultZone
	if abbrev := strings.ToUpper(m[7]); abbrev != "" {
		if off, ok := tzOffsets[abbrev]; ok {
			loc = time.FixedZone(abbrev, off*3600)
		}
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if t.Day() != day {
		// normalized overflow such as February 30
		return time.Time{}, false
	}
	return t, true
}
