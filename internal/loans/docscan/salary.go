package docscan

import (
	"regexp"
	"strconv"
	"strings"
)

// Plausible monthly salary band. Figures outside it are treated as noise
// (employee IDs, account numbers, annual totals).
const (
	minPlausibleSalary = 10000
	maxPlausibleSalary = 10000000
)

// salaryKeywords mark lines that label a pay figure on Indian slips.
var salaryKeywords = []string{
	"net pay",
	"net salary",
	"take home",
	"monthly salary",
	"basic salary",
	"fixed salary",
	"gross",
	"ctc",
	"salary",
}

var salaryFigure = regexp.MustCompile(`\b\d{5,7}(?:\.\d{1,2})?\b`)

// ParseMonthlySalary scans extracted slip text for the monthly salary.
// Keywords are tried in precedence order and the first plausible figure
// following a keyword on its line wins, so "net pay" beats "gross" even
// when gross appears earlier in the text. Without any keyword hit it
// falls back to the largest plausible figure anywhere in the text.
func ParseMonthlySalary(text string) (float64, bool) {
	lowered := strings.ReplaceAll(strings.ToLower(text), ",", "")

	for _, kw := range salaryKeywords {
		if v, ok := figureAfterKeyword(lowered, kw); ok {
			return v, true
		}
	}

	var candidates []float64
	for _, line := range strings.Split(lowered, "\n") {
		candidates = append(candidates, figuresInRange(line)...)
	}
	return maxOf(candidates)
}

// figureAfterKeyword finds the first in-range figure between an
// occurrence of the keyword and the end of its line.
func figureAfterKeyword(text, kw string) (float64, bool) {
	rest := text
	for {
		idx := strings.Index(rest, kw)
		if idx < 0 {
			return 0, false
		}
		segment := rest[idx+len(kw):]
		if end := strings.IndexByte(segment, '\n'); end >= 0 {
			segment = segment[:end]
		}
		if figures := figuresInRange(segment); len(figures) > 0 {
			return figures[0], true
		}
		rest = rest[idx+len(kw):]
	}
}

func figuresInRange(line string) []float64 {
	var out []float64
	for _, match := range salaryFigure.FindAllString(line, -1) {
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		if v >= minPlausibleSalary && v <= maxPlausibleSalary {
			out = append(out, v)
		}
	}
	return out
}

func maxOf(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best, true
}
