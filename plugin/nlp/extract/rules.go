package extract

import (
	"regexp"
	"strings"
)

// titleRule pulls an event title out of request text. Rules are evaluated in
// a fixed priority order and the first rule producing a non-empty cleaned
// title wins: quoted text beats the schedule-keyword rule, which beats the
// duration-suffix and clock-suffix rules.
type titleRule interface {
	Name() string
	Match(text string) (string, bool)
}

var titleRules = []titleRule{
	quotedTitleRule{},
	keywordTitleRule{},
	durationSuffixTitleRule{},
	clockSuffixTitleRule{},
}

// extractTitle runs the rule pipeline. Returns "" when no rule captures a
// usable title; the caller substitutes its default.
func extractTitle(text string) string {
	for _, rule := range titleRules {
		if span, ok := rule.Match(text); ok {
			if title := cleanTitle(span); title != "" {
				return title
			}
		}
	}
	return ""
}

// quotedTitleRule captures text enclosed in paired quote-like brackets.
type quotedTitleRule struct{}

var bracketPairs = [][2]string{
	{"「", "」"},
	{"『", "』"},
	{"“", "”"},
	{"《", "》"},
	{`"`, `"`},
}

func (quotedTitleRule) Name() string { return "quoted" }

func (quotedTitleRule) Match(text string) (string, bool) {
	best := ""
	bestIdx := -1
	for _, pair := range bracketPairs {
		open := strings.Index(text, pair[0])
		if open < 0 {
			continue
		}
		rest := text[open+len(pair[0]):]
		close := strings.Index(rest, pair[1])
		if close <= 0 {
			continue
		}
		if bestIdx == -1 || open < bestIdx {
			best = rest[:close]
			bestIdx = open
		}
	}
	if bestIdx == -1 {
		return "", false
	}
	return best, true
}

// keywordTitleRule captures the text following an explicit schedule verb, up
// to the next clause boundary.
type keywordTitleRule struct{}

var scheduleKeywordPattern = regexp.MustCompile(`(?:安排|预约|預約|排|约|約|schedule|arrange|book)\s*(.+?)\s*(?:[，,。.;；!！?？]|$)`)

func (keywordTitleRule) Name() string { return "keyword" }

func (keywordTitleRule) Match(text string) (string, bool) {
	m := scheduleKeywordPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// durationSuffixTitleRule captures the text following a duration phrase
// ("3小時開會" -> "開會").
type durationSuffixTitleRule struct{}

func (durationSuffixTitleRule) Name() string { return "duration-suffix" }

func (durationSuffixTitleRule) Match(text string) (string, bool) {
	loc := durationHourPattern.FindStringIndex(text)
	if loc == nil {
		loc = durationMinPattern.FindStringIndex(text)
	}
	if loc == nil {
		return "", false
	}
	return tailUntilBoundary(text[loc[1]:])
}

// clockSuffixTitleRule captures the text following the last clock phrase
// ("2点到4点开会" -> "开会").
type clockSuffixTitleRule struct{}

func (clockSuffixTitleRule) Name() string { return "clock-suffix" }

func (clockSuffixTitleRule) Match(text string) (string, bool) {
	end := -1
	for _, p := range []*regexp.Regexp{clockColonPattern, clockMarkerPattern, clockAmPmPattern} {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			if loc[1] > end {
				end = loc[1]
			}
		}
	}
	if end == -1 {
		return "", false
	}
	return tailUntilBoundary(text[end:])
}

// tailUntilBoundary trims a captured tail at the next clause boundary.
func tailUntilBoundary(tail string) (string, bool) {
	if loc := clauseBoundaryPattern.FindStringIndex(tail); loc != nil {
		tail = tail[:loc[0]]
	}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return "", false
	}
	return tail, true
}

var (
	englishFillerPattern = regexp.MustCompile(`(?i)\b(?:at|on|from|to|in|for|the|an?|me|please|with)\b`)

	chineseFillerReplacer = strings.NewReplacer(
		"时间是", "", "時間是", "",
		"帮我", "", "幫我", "",
		"给我", "", "給我", "",
		"麻烦", "", "麻煩", "",
		"请", "", "請", "",
		"一下", "",
		"然后", "", "然後", "",
		"左右", "",
		"开始", "", "開始", "",
	)

	titleEdgeCutset = " \t\r\n，,。.;；:：、的在和与與跟了吧呢-"
)

// cleanTitle strips residual scheduling vocabulary (dates, clock phrases,
// durations, period keywords) and filler connectors from a captured span so
// the title never contains leftover time words.
func cleanTitle(span string) string {
	s := span
	s = rangePattern.ReplaceAllString(s, " ")
	s = durationHourHalfPattern.ReplaceAllString(s, " ")
	s = durationHourPattern.ReplaceAllString(s, " ")
	s = durationMinPattern.ReplaceAllString(s, " ")
	s = halfHourPattern.ReplaceAllString(s, " ")
	s = clockAmPmPattern.ReplaceAllString(s, " ")
	s = clockColonPattern.ReplaceAllString(s, " ")
	s = clockMarkerPattern.ReplaceAllString(s, " ")
	s = nextWeekdayPattern.ReplaceAllString(s, " ")
	s = weekdayPattern.ReplaceAllString(s, " ")

	lowerTokens := make([]string, 0, len(relativeDates)+len(periodKeywords))
	for _, rd := range relativeDates {
		lowerTokens = append(lowerTokens, rd.token)
	}
	for _, kw := range periodKeywords {
		lowerTokens = append(lowerTokens, kw.token)
	}
	for _, token := range lowerTokens {
		for {
			idx := strings.Index(strings.ToLower(s), token)
			if idx < 0 {
				break
			}
			s = s[:idx] + " " + s[idx+len(token):]
		}
	}

	s = englishFillerPattern.ReplaceAllString(s, " ")
	s = chineseFillerReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, titleEdgeCutset)
}
