package extract

import (
	"strings"
	"time"
)

// Extract parses a raw scheduling request against the reference time "now".
// The request timezone is taken from now's location. Extract never fails: a
// request with no usable time information yields an ambiguous intent carrying
// only the default duration.
//
// The pipeline runs in priority order:
//  1. title rules (see rules.go),
//  2. explicit clock range ("2點到4點"),
//  3. single absolute clock time,
//  4. explicit duration tokens,
//  5. period-only window ("明天下午"),
//  6. default duration fallback.
func Extract(text string, now time.Time) ParsedIntent {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ParsedIntent{DurationMinutes: DefaultDurationMinutes}
	}

	norm := normalizeNumerals(raw)
	intent := ParsedIntent{Title: extractTitle(norm)}

	day, dayFound := resolveTargetDate(norm, now)
	period := findPeriod(norm)
	duration := parseDuration(norm)

	if start, end, ok := parseClockRange(norm, day, period); ok {
		intent.ExactStart = &start
		intent.ExactEnd = &end
		intent.DurationMinutes = int(end.Sub(start).Minutes())
		intent.Period = period
		intent.TargetDate = &day
		return intent
	}

	if hour, minute, explicit, ok := parseClock(norm); ok {
		if !explicit {
			hour = applyPeriodToHour(hour, period)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
		intent.ExactStart = &start
		if duration <= 0 {
			duration = DefaultDurationMinutes
		}
		end := start.Add(time.Duration(duration) * time.Minute)
		intent.ExactEnd = &end
		intent.DurationMinutes = duration
		intent.Period = period
		intent.TargetDate = &day
		return intent
	}

	if period != PeriodUnknown && dayFound {
		if duration <= 0 {
			duration = DefaultDurationMinutes
		}
		intent.Period = period
		intent.TargetDate = &day
		intent.DurationMinutes = duration
		return intent
	}

	if duration > 0 {
		intent.DurationMinutes = duration
		return intent
	}
	intent.DurationMinutes = DefaultDurationMinutes
	return intent
}

// parseClockRange parses an explicit "start到end" clock range on the given
// day. Bare end hours are disambiguated in order: an explicit period keyword
// anywhere in the text, then inference from the start hour's half of day. A
// late-evening start wraps the end past midnight only when the shifted end
// would still precede the start.
func parseClockRange(text string, day time.Time, period Period) (start, end time.Time, ok bool) {
	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		return start, end, false
	}

	startHour, startMin, startExplicit := clockFromGroups(m[1], m[2], m[3], m[4], m[5])
	endHour, endMin, endExplicit := clockFromGroups(m[6], m[7], m[8], m[9], m[10])
	if startHour > 24 || endHour > 24 || startMin > 59 || endMin > 59 {
		return start, end, false
	}

	if !startExplicit {
		startHour = applyPeriodToHour(startHour, period)
	}

	nextDayEnd := false
	if !endExplicit && endHour < 12 {
		switch {
		case startHour >= 18:
			// A late start wins over any period keyword: "晚上11点到1点"
			// ends at 01:00 the next day, not 13:00.
			if endHour+12 > startHour {
				endHour += 12
			} else {
				nextDayEnd = true
			}
		case period != PeriodUnknown:
			endHour = applyPeriodToHour(endHour, period)
		case startHour >= 12:
			endHour += 12
		}
	}
	if endHour == 12 && startHour >= 18 {
		// "晚上10点到12点" means midnight, not next-day noon.
		endHour = 0
		nextDayEnd = true
	}

	loc := day.Location()
	start = time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, loc)
	end = time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, loc)
	if nextDayEnd || !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}

// ResolveStartPhrase resolves a standalone date+time phrase ("明天下午3点",
// "tomorrow 2pm") into an absolute start time. Used for phrases produced by
// the LLM extractor; the interpretation is identical to the rule pipeline.
func ResolveStartPhrase(phrase string, now time.Time) (time.Time, bool) {
	norm := normalizeNumerals(strings.TrimSpace(phrase))
	if norm == "" {
		return time.Time{}, false
	}

	// Accept a few standard formats before falling back to token parsing.
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	} {
		if t, err := time.ParseInLocation(layout, norm, now.Location()); err == nil {
			return t, true
		}
	}

	day, dayFound := resolveTargetDate(norm, now)
	period := findPeriod(norm)
	hour, minute, explicit, ok := parseClock(norm)
	if !ok {
		if !dayFound || period == PeriodUnknown {
			return time.Time{}, false
		}
		// Period without a clock hour: use the start of the period window.
		hour, _ = period.Hours()
		minute = 0
	} else if !explicit {
		hour = applyPeriodToHour(hour, period)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), true
}

// ResolveEndPhrase resolves an end phrase relative to a start time. The
// phrase is preferably a duration ("1 hour", "90分钟") but an absolute clock
// time is accepted too. An empty or unparseable phrase yields the default
// duration.
func ResolveEndPhrase(phrase string, start time.Time) (time.Time, int) {
	norm := normalizeNumerals(strings.TrimSpace(phrase))
	if norm != "" {
		if minutes := parseDuration(norm); minutes > 0 {
			return start.Add(time.Duration(minutes) * time.Minute), minutes
		}
		if end, ok := ResolveStartPhrase(norm, start); ok && end.After(start) {
			return end, int(end.Sub(start).Minutes())
		}
	}
	return start.Add(DefaultDurationMinutes * time.Minute), DefaultDurationMinutes
}
