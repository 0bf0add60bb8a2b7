package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pre-compiled token patterns shared by the extraction rules. A clock phrase
// always needs an explicit marker (colon, 点/點/时/時, or am/pm) so that bare
// digits inside duration phrases or dates are never mistaken for hours.
var (
	clockColonPattern  = regexp.MustCompile(`(\d{1,2})[:：](\d{2})`)
	clockMarkerPattern = regexp.MustCompile(`(\d{1,2})[点點時时](?:(\d{1,2})分?|(半))?`)
	clockAmPmPattern   = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?`)

	// clockToken is a single clock phrase with capture groups
	// (hour, colonMinute, markerMinute, half, ampm).
	clockToken   = `(\d{1,2})(?:[:：](\d{2})|[点點時时](?:(\d{1,2})分?|(半))?|\s*((?i:[ap]m)))`
	rangePattern = regexp.MustCompile(clockToken + `\s*(?:到|至|～|~|—|–|-|to)\s*` + clockToken)

	durationHourHalfPattern = regexp.MustCompile(`(\d+)[个個]半(?:小时|小時|钟头|鐘頭)`)
	durationHourPattern     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[个個]?\s*(?:小时|小時|钟头|鐘頭|hours?|hrs?)(半)?`)
	durationMinPattern      = regexp.MustCompile(`(\d+)\s*(?:分钟|分鐘|minutes?|mins?)`)
	halfHourPattern         = regexp.MustCompile(`半[个個]?(?:小时|小時|钟头|鐘頭)`)

	// Chinese numerals directly attached to a time-ish suffix. Numerals
	// elsewhere (e.g. inside titles such as "三方会谈") are left untouched.
	cnNumTimePattern = regexp.MustCompile(`([〇零一二三四五六七八九十两兩]+)([个個]?(?:[点點]|小时|小時|钟头|鐘頭|分钟|分鐘|[时時]))`)

	weekdayPattern     = regexp.MustCompile(`(?:这|這|本)?(?:周|週|星期|礼拜|禮拜)([一二三四五六日天])`)
	nextWeekdayPattern = regexp.MustCompile(`下(?:周|週|星期|礼拜|禮拜)([一二三四五六日天])`)

	clauseBoundaryPattern = regexp.MustCompile(`[，,。.;；!！?？]`)
)

// relativeDates maps relative-date tokens to day offsets, ordered so that
// longer tokens win ("大后天" before "后天").
var relativeDates = []struct {
	token  string
	offset int
}{
	{"大后天", 3},
	{"大後天", 3},
	{"后天", 2},
	{"後天", 2},
	{"明天", 1},
	{"明日", 1},
	{"今天", 0},
	{"今日", 0},
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"today", 0},
	{"tonight", 0},
}

// periodKeywords maps period tokens to their Period bucket, ordered so that
// longer tokens win.
var periodKeywords = []struct {
	token  string
	period Period
}{
	{"早上", PeriodMorning},
	{"早晨", PeriodMorning},
	{"上午", PeriodMorning},
	{"morning", PeriodMorning},
	{"中午", PeriodNoon},
	{"noon", PeriodNoon},
	{"下午", PeriodAfternoon},
	{"午后", PeriodAfternoon},
	{"午後", PeriodAfternoon},
	{"afternoon", PeriodAfternoon},
	{"傍晚", PeriodEvening},
	{"晚上", PeriodEvening},
	{"晚间", PeriodEvening},
	{"晚間", PeriodEvening},
	{"今晚", PeriodEvening},
	{"evening", PeriodEvening},
	{"tonight", PeriodEvening},
}

// chineseDigits maps single Chinese numerals to their value.
var chineseDigits = map[rune]int{
	'零': 0, '〇': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
	'两': 2, '兩': 2,
}

// chineseWeekdays maps weekday characters to an offset from Monday.
var chineseWeekdays = map[string]int{
	"一": 0, "二": 1, "三": 2, "四": 3, "五": 4, "六": 5, "日": 6, "天": 6,
}

// normalizeNumerals converts Chinese numerals that sit in front of a time or
// duration suffix to Arabic digits: "三点半" -> "3点半", "两个小时" -> "2个小时".
func normalizeNumerals(text string) string {
	return cnNumTimePattern.ReplaceAllStringFunc(text, func(match string) string {
		m := cnNumTimePattern.FindStringSubmatch(match)
		return parseChineseNumber(m[1]) + m[2]
	})
}

// parseChineseNumber converts a Chinese numeral (1-99) to its Arabic form.
// Unparseable input is returned unchanged.
func parseChineseNumber(s string) string {
	runes := []rune(s)
	switch {
	case len(runes) == 0:
		return s
	case len(runes) == 1:
		if runes[0] == '十' {
			return "10"
		}
		if v, ok := chineseDigits[runes[0]]; ok {
			return strconv.Itoa(v)
		}
	case runes[0] == '十':
		// 十X (11-19)
		if v, ok := chineseDigits[runes[1]]; ok {
			return strconv.Itoa(10 + v)
		}
	case len(runes) >= 2 && runes[1] == '十':
		// X十 / X十Y (20-99)
		tens, ok := chineseDigits[runes[0]]
		if !ok {
			return s
		}
		if len(runes) == 2 {
			return strconv.Itoa(tens * 10)
		}
		if ones, ok := chineseDigits[runes[2]]; ok {
			return strconv.Itoa(tens*10 + ones)
		}
	}
	return s
}

// findPeriod returns the first period keyword found in the text.
func findPeriod(text string) Period {
	lower := strings.ToLower(text)
	best := PeriodUnknown
	bestIdx := -1
	for _, kw := range periodKeywords {
		if idx := strings.Index(lower, kw.token); idx >= 0 && (bestIdx == -1 || idx < bestIdx) {
			best = kw.period
			bestIdx = idx
		}
	}
	return best
}

// resolveTargetDate resolves a relative-date or weekday token against now and
// returns midnight of the target day. ok is false when the text carries no
// date reference.
func resolveTargetDate(text string, now time.Time) (day time.Time, ok bool) {
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	lower := strings.ToLower(text)

	for _, rd := range relativeDates {
		if strings.Contains(lower, rd.token) {
			return midnight.AddDate(0, 0, rd.offset), true
		}
	}

	// Monday = 0 for offset math.
	current := int(now.Weekday())
	if current == 0 {
		current = 7
	}
	current--

	// "下周X" must be checked before the bare "周X" form.
	if m := nextWeekdayPattern.FindStringSubmatch(text); len(m) > 1 {
		target := chineseWeekdays[m[1]]
		return midnight.AddDate(0, 0, 7-current+target), true
	}
	if m := weekdayPattern.FindStringSubmatch(text); len(m) > 1 {
		target := chineseWeekdays[m[1]]
		diff := target - current
		if diff < 0 {
			// This week's weekday already passed; roll to next week.
			diff += 7
		}
		return midnight.AddDate(0, 0, diff), true
	}

	if strings.Contains(text, "下周") || strings.Contains(text, "下週") || strings.Contains(lower, "next week") {
		return midnight.AddDate(0, 0, 7-current), true
	}
	if strings.Contains(text, "这周") || strings.Contains(text, "這週") || strings.Contains(text, "本周") || strings.Contains(text, "本週") || strings.Contains(lower, "this week") {
		return midnight, true
	}

	return midnight, false
}

// parseDuration extracts an explicit duration from the text, in minutes.
// Returns 0 when no duration phrase is present.
func parseDuration(text string) int {
	if m := durationHourHalfPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n*60 + 30
	}

	minutes := 0
	if m := durationHourPattern.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.ParseFloat(m[1], 64)
		minutes += int(hours * 60)
		if m[2] != "" {
			minutes += 30
		}
	} else if halfHourPattern.MatchString(text) {
		minutes += 30
	}
	if m := durationMinPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		minutes += n
	}
	return minutes
}

// parseClock extracts a single clock phrase. explicit reports an am/pm marker
// that already fixed the half of day.
func parseClock(text string) (hour, minute int, explicit, ok bool) {
	if m := clockAmPmPattern.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		hour = applyAmPm(hour, m[3])
		return hour, minute, true, hour < 24
	}
	if m := clockColonPattern.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return hour, minute, false, hour < 24 && minute < 60
	}
	if m := clockMarkerPattern.FindStringSubmatch(text); m != nil {
		hour, _ = strconv.Atoi(m[1])
		switch {
		case m[2] != "":
			minute, _ = strconv.Atoi(m[2])
		case m[3] != "":
			minute = 30
		}
		return hour, minute, false, hour <= 24 && minute < 60
	}
	return 0, 0, false, false
}

// applyAmPm resolves an explicit am/pm marker.
func applyAmPm(hour int, marker string) int {
	switch strings.ToLower(marker) {
	case "p":
		if hour < 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	return hour
}

// applyPeriodToHour fixes the half of day for a bare hour using the period
// keyword, or a pragmatic afternoon default when no period is present
// (an unqualified "3点" almost always means 15:00 in scheduling requests).
func applyPeriodToHour(hour int, p Period) int {
	switch p {
	case PeriodAfternoon, PeriodEvening:
		if hour < 12 {
			hour += 12
		}
	case PeriodMorning:
		if hour == 12 {
			hour = 0
		}
	case PeriodNoon:
		if hour >= 1 && hour <= 3 {
			hour += 12
		}
	default:
		if hour >= 1 && hour <= 6 {
			hour += 12
		}
	}
	return hour
}

// clockFromGroups decodes one side of a range match
// (hour, colonMinute, markerMinute, half, ampm).
func clockFromGroups(h, colonMin, markerMin, half, ampm string) (hour, minute int, explicit bool) {
	hour, _ = strconv.Atoi(h)
	switch {
	case colonMin != "":
		minute, _ = strconv.Atoi(colonMin)
	case markerMin != "":
		minute, _ = strconv.Atoi(markerMin)
	case half != "":
		minute = 30
	}
	if ampm != "" {
		hour = applyAmPm(hour, ampm[:1])
		explicit = true
	}
	return hour, minute, explicit
}
