// Package datefmt formats and strictly parses dates using moment-style format
// tokens (YYYY-MM-DD, gggg-[W]ww, ...), the format language used by note
// templates and periodic note settings.
package datefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokYear4
	tokYear2
	tokQuarter
	tokMonthName
	tokMonthShort
	tokMonth2
	tokMonth
	tokDayOfYear3
	tokDayOfYear
	tokDay2
	tokDayOrdinal
	tokDay
	tokWeekdayName
	tokWeekdayShort
	tokWeekdayMin
	tokWeekdayNum
	tokHour24_2
	tokHour24
	tokHour12_2
	tokHour12
	tokMinute2
	tokMinute
	tokSecond2
	tokSecond
	tokMeridiemUpper
	tokMeridiemLower
	tokWeekYear
	tokWeek2
	tokWeek
)

type token struct {
	kind tokenKind
	text string // literal text
}

// Longest tokens first so "MMMM" wins over "MM".
var tokenTable = []struct {
	pattern string
	kind    tokenKind
}{
	{"YYYY", tokYear4},
	{"gggg", tokWeekYear},
	{"GGGG", tokWeekYear},
	{"MMMM", tokMonthName},
	{"DDDD", tokDayOfYear3},
	{"dddd", tokWeekdayName},
	{"MMM", tokMonthShort},
	{"DDD", tokDayOfYear},
	{"ddd", tokWeekdayShort},
	{"YY", tokYear2},
	{"MM", tokMonth2},
	{"DD", tokDay2},
	{"Do", tokDayOrdinal},
	{"dd", tokWeekdayMin},
	{"HH", tokHour24_2},
	{"hh", tokHour12_2},
	{"mm", tokMinute2},
	{"ss", tokSecond2},
	{"ww", tokWeek2},
	{"WW", tokWeek2},
	{"Q", tokQuarter},
	{"M", tokMonth},
	{"D", tokDay},
	{"d", tokWeekdayNum},
	{"H", tokHour24},
	{"h", tokHour12},
	{"m", tokMinute},
	{"s", tokSecond},
	{"A", tokMeridiemUpper},
	{"a", tokMeridiemLower},
	{"w", tokWeek},
	{"W", tokWeek},
}

func tokenize(layout string) []token {
	var out []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			out = append(out, token{kind: tokLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(layout); {
		if layout[i] == '[' {
			if end := strings.IndexByte(layout[i+1:], ']'); end >= 0 {
				lit.WriteString(layout[i+1 : i+1+end])
				i += end + 2
				continue
			}
		}
		matched := false
		for _, t := range tokenTable {
			if strings.HasPrefix(layout[i:], t.pattern) {
				flush()
				out = append(out, token{kind: t.kind})
				i += len(t.pattern)
				matched = true
				break
			}
		}
		if !matched {
			lit.WriteByte(layout[i])
			i++
		}
	}
	flush()
	return out
}

// Format renders t with a moment-style layout.
func Format(t time.Time, layout string) string {
	var sb strings.Builder
	for _, tok := range tokenize(layout) {
		sb.WriteString(formatToken(t, tok))
	}
	return sb.String()
}

func formatToken(t time.Time, tok token) string {
	isoYear, isoWeek := t.ISOWeek()
	switch tok.kind {
	case tokLiteral:
		return tok.text
	case tokYear4:
		return fmt.Sprintf("%04d", t.Year())
	case tokYear2:
		return fmt.Sprintf("%02d", t.Year()%100)
	case tokQuarter:
		return strconv.Itoa(quarterOf(t.Month()))
	case tokMonthName:
		return t.Month().String()
	case tokMonthShort:
		return t.Month().String()[:3]
	case tokMonth2:
		return fmt.Sprintf("%02d", int(t.Month()))
	case tokMonth:
		return strconv.Itoa(int(t.Month()))
	case tokDayOfYear3:
		return fmt.Sprintf("%03d", t.YearDay())
	case tokDayOfYear:
		return strconv.Itoa(t.YearDay())
	case tokDay2:
		return fmt.Sprintf("%02d", t.Day())
	case tokDayOrdinal:
		return strconv.Itoa(t.Day()) + ordinalSuffix(t.Day())
	case tokDay:
		return strconv.Itoa(t.Day())
	case tokWeekdayName:
		return t.Weekday().String()
	case tokWeekdayShort:
		return t.Weekday().String()[:3]
	case tokWeekdayMin:
		return t.Weekday().String()[:2]
	case tokWeekdayNum:
		return strconv.Itoa(int(t.Weekday()))
	case tokHour24_2:
		return fmt.Sprintf("%02d", t.Hour())
	case tokHour24:
		return strconv.Itoa(t.Hour())
	case tokHour12_2:
		return fmt.Sprintf("%02d", hour12(t.Hour()))
	case tokHour12:
		return strconv.Itoa(hour12(t.Hour()))
	case tokMinute2:
		return fmt.Sprintf("%02d", t.Minute())
	case tokMinute:
		return strconv.Itoa(t.Minute())
	case tokSecond2:
		return fmt.Sprintf("%02d", t.Second())
	case tokSecond:
		return strconv.Itoa(t.Second())
	case tokMeridiemUpper:
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case tokMeridiemLower:
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	case tokWeekYear:
		return fmt.Sprintf("%04d", isoYear)
	case tokWeek2:
		return fmt.Sprintf("%02d", isoWeek)
	case tokWeek:
		return strconv.Itoa(isoWeek)
	}
	return ""
}

func quarterOf(m time.Month) int {
	return (int(m)-1)/3 + 1
}

func hour12(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}

var (
	monthNames   = namesPattern(func(i int) string { return time.Month(i + 1).String() }, 12)
	monthShorts  = namesPattern(func(i int) string { return time.Month(i + 1).String()[:3] }, 12)
	weekdayNames = namesPattern(func(i int) string { return time.Weekday(i).String() }, 7)
	weekdayShort = namesPattern(func(i int) string { return time.Weekday(i).String()[:3] }, 7)
	weekdayMin   = namesPattern(func(i int) string { return time.Weekday(i).String()[:2] }, 7)
)

func namesPattern(name func(int) string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = name(i)
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func tokenPattern(k tokenKind) string {
	switch k {
	case tokYear4, tokWeekYear:
		return `(\d{4})`
	case tokYear2, tokMonth2, tokDay2, tokHour24_2, tokHour12_2, tokMinute2, tokSecond2, tokWeek2:
		return `(\d{2})`
	case tokQuarter:
		return `([1-4])`
	case tokMonth, tokDay, tokHour24, tokHour12, tokMinute, tokSecond, tokWeek:
		return `(\d{1,2})`
	case tokDayOfYear3:
		return `(\d{3})`
	case tokDayOfYear:
		return `(\d{1,3})`
	case tokDayOrdinal:
		return `(\d{1,2})(?:st|nd|rd|th)`
	case tokMonthName:
		return monthNames
	case tokMonthShort:
		return monthShorts
	case tokWeekdayName:
		return weekdayNames
	case tokWeekdayShort:
		return weekdayShort
	case tokWeekdayMin:
		return weekdayMin
	case tokWeekdayNum:
		return `([0-6])`
	case tokMeridiemUpper:
		return `(AM|PM)`
	case tokMeridiemLower:
		return `(am|pm)`
	}
	return ""
}

type fields struct {
	year, month, day, yday  int
	quarter                 int
	hour, minute, second    int
	pm, hasMeridiem         bool
	weekYear, week, weekday int
	hasWeekday              bool
}

// Parse strictly parses value with a moment-style layout in loc. The whole
// value must match and the resulting date must be valid (no rollover).
func Parse(value, layout string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	toks := tokenize(layout)

	var re strings.Builder
	re.WriteString("^")
	var kinds []tokenKind
	for _, tok := range toks {
		if tok.kind == tokLiteral {
			re.WriteString(regexp.QuoteMeta(tok.text))
			continue
		}
		re.WriteString(tokenPattern(tok.kind))
		kinds = append(kinds, tok.kind)
	}
	re.WriteString("$")

	rx, err := regexp.Compile(re.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("compile layout %q: %w", layout, err)
	}
	m := rx.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, fmt.Errorf("%q does not match layout %q", value, layout)
	}

	f := fields{month: -1, day: -1, yday: -1, year: -1, weekYear: -1, week: -1}
	for i, k := range kinds {
		if err := f.set(k, m[i+1]); err != nil {
			return time.Time{}, fmt.Errorf("parse %q with %q: %w", value, layout, err)
		}
	}
	return f.build(loc)
}

func (f *fields) set(k tokenKind, s string) error {
	n, _ := strconv.Atoi(s)
	switch k {
	case tokYear4:
		f.year = n
	case tokYear2:
		f.year = 2000 + n
		if n > 68 {
			f.year = 1900 + n
		}
	case tokQuarter:
		f.quarter = n
	case tokMonthName, tokMonthShort:
		for i := 1; i <= 12; i++ {
			if strings.HasPrefix(time.Month(i).String(), s) {
				f.month = i
				break
			}
		}
	case tokMonth2, tokMonth:
		f.month = n
	case tokDayOfYear3, tokDayOfYear:
		f.yday = n
	case tokDay2, tokDay, tokDayOrdinal:
		f.day = n
	case tokWeekdayName, tokWeekdayShort, tokWeekdayMin:
		for i := 0; i < 7; i++ {
			if strings.HasPrefix(time.Weekday(i).String(), s) {
				f.weekday = i
				f.hasWeekday = true
				break
			}
		}
	case tokWeekdayNum:
		f.weekday = n
		f.hasWeekday = true
	case tokHour24_2, tokHour24, tokHour12_2, tokHour12:
		f.hour = n
	case tokMinute2, tokMinute:
		f.minute = n
	case tokSecond2, tokSecond:
		f.second = n
	case tokMeridiemUpper, tokMeridiemLower:
		f.hasMeridiem = true
		f.pm = strings.EqualFold(s, "pm")
	case tokWeekYear:
		f.weekYear = n
	case tokWeek2, tokWeek:
		f.week = n
	}
	return nil
}

func (f *fields) build(loc *time.Location) (time.Time, error) {
	hour := f.hour
	if f.hasMeridiem {
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("hour %d out of range for 12-hour clock", hour)
		}
		hour %= 12
		if f.pm {
			hour += 12
		}
	}
	if hour > 23 || f.minute > 59 || f.second > 59 {
		return time.Time{}, fmt.Errorf("time %02d:%02d:%02d out of range", hour, f.minute, f.second)
	}

	if f.week >= 0 {
		year := f.weekYear
		if year < 0 {
			year = f.year
		}
		if year < 0 {
			return time.Time{}, fmt.Errorf("week without year")
		}
		return isoWeekStart(year, f.week, loc, hour, f.minute, f.second)
	}

	year := f.year
	if year < 0 {
		year = time.Now().In(loc).Year()
	}
	if f.yday >= 0 {
		t := time.Date(year, time.January, 1, hour, f.minute, f.second, 0, loc).AddDate(0, 0, f.yday-1)
		if t.Year() != year || f.yday < 1 {
			return time.Time{}, fmt.Errorf("day of year %d out of range", f.yday)
		}
		return t, nil
	}

	month := f.month
	if month < 0 {
		month = 1
		if f.quarter > 0 {
			month = (f.quarter-1)*3 + 1
		}
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	if f.quarter > 0 && quarterOf(time.Month(month)) != f.quarter {
		return time.Time{}, fmt.Errorf("month %d is not in quarter %d", month, f.quarter)
	}
	day := f.day
	if day < 0 {
		day = 1
	}
	t := time.Date(year, time.Month(month), day, hour, f.minute, f.second, 0, loc)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	if f.hasWeekday && int(t.Weekday()) != f.weekday {
		return time.Time{}, fmt.Errorf("weekday mismatch for %s", t.Format("2006-01-02"))
	}
	return t, nil
}

// isoWeekStart returns the Monday of ISO week w in ISO year y.
func isoWeekStart(y, w int, loc *time.Location, hour, min, sec int) (time.Time, error) {
	if w < 1 || w > 53 {
		return time.Time{}, fmt.Errorf("week %d out of range", w)
	}
	jan4 := time.Date(y, time.January, 4, hour, min, sec, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(w-1)*7)
	if iy, iw := monday.ISOWeek(); iy != y || iw != w {
		return time.Time{}, fmt.Errorf("week %d does not exist in %d", w, y)
	}
	return monday, nil
}
