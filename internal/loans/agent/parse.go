package agent

import (
	"strconv"
	"strings"
)

// Amount and tenure sanity bounds. Values outside these are treated as
// unparsable and trigger a re-ask.
const (
	maxLoanAmount   = 1_000_000_000
	maxTenureMonths = 240
)

const lakh = 100_000

// normalizeAmount turns Indian-style amount expressions such as "10 lakh",
// "5L" or "500000" into a whole rupee amount. The extraction layer may hand
// us a JSON number or a string. Returns false when the value cannot be
// parsed or falls outside (0, 10^9].
func normalizeAmount(value any) (float64, bool) {
	var amount int64

	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		amount = int64(v)
	case int:
		amount = int64(v)
	case string:
		text := strings.ToLower(strings.ReplaceAll(v, ",", ""))
		text = strings.TrimSpace(text)

		multiplier := int64(1)
		switch {
		case strings.Contains(text, "lakh") || strings.Contains(text, "lac"):
			multiplier = lakh
			for _, word := range []string{"lakhs", "lakh", "lacs", "lac"} {
				text = strings.ReplaceAll(text, word, "")
			}
			text = strings.TrimSpace(text)
		case strings.HasSuffix(text, "l"):
			multiplier = lakh
			text = strings.TrimSpace(strings.TrimSuffix(text, "l"))
		}

		number, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		amount = int64(number * float64(multiplier))
	default:
		return 0, false
	}

	if amount <= 0 || amount > maxLoanAmount {
		return 0, false
	}
	return float64(amount), true
}

// normalizeTenure turns tenure expressions such as "3 years" or "36" into
// months. Returns false when unparsable or outside (0, 240].
func normalizeTenure(value any) (int, bool) {
	var months int

	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		months = int(v)
	case int:
		months = v
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		if strings.Contains(text, "year") {
			years, ok := firstNumber(text)
			if !ok {
				return 0, false
			}
			months = int(years * 12)
		} else {
			text = strings.TrimSuffix(text, "months")
			text = strings.TrimSuffix(text, "month")
			parsed, err := strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				return 0, false
			}
			months = parsed
		}
	default:
		return 0, false
	}

	if months <= 0 || months > maxTenureMonths {
		return 0, false
	}
	return months, true
}

// firstNumber returns the first numeric token in the text.
func firstNumber(text string) (float64, bool) {
	for _, field := range strings.Fields(text) {
		if n, err := strconv.ParseFloat(field, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// prohibitedPurposeTerms mark loan purposes that denote illegal activity.
// Matching one refuses the purpose and triggers a policy re-ask; amount and
// tenure already collected are preserved.
var prohibitedPurposeTerms = []string{
	"robbery", "rob ", "theft", "steal", "scam", "fraud",
	"drugs", "narcotic", "smuggl", "ransom", "weapon", "bribe",
	"money launder", "gambling", "betting",
}

func isProhibitedPurpose(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range prohibitedPurposeTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// extractLoanDetails is the deterministic fallback extractor used when the
// text generator is unavailable. It scans the raw utterance for an amount,
// a tenure and a purpose so the conversation can still advance.
func extractLoanDetails(message string) (amount *float64, tenure *int, purpose *string, prohibited bool) {
	lowered := strings.ToLower(message)
	fields := strings.Fields(strings.ReplaceAll(lowered, ",", ""))

	for i, field := range fields {
		switch {
		case field == "lakh" || field == "lakhs" || field == "lac" || field == "lacs":
			if i > 0 {
				if v, ok := normalizeAmount(fields[i-1] + " lakh"); ok {
					amount = &v
				}
			}
		case field == "year" || field == "years":
			if i > 0 {
				if v, ok := normalizeTenure(fields[i-1] + " years"); ok {
					tenure = &v
				}
			}
		case field == "month" || field == "months":
			if i > 0 {
				if v, ok := normalizeTenure(fields[i-1]); ok {
					tenure = &v
				}
			}
		case strings.HasSuffix(field, "l") && len(field) > 1:
			if v, ok := normalizeAmount(field); ok && amount == nil {
				amount = &v
			}
		default:
			// Bare figures of loan size read as amounts.
			if n, err := strconv.ParseFloat(field, 64); err == nil && n >= 1000 && amount == nil {
				if v, ok := normalizeAmount(n); ok {
					amount = &v
				}
			}
		}
	}

	if isProhibitedPurpose(message) {
		return amount, tenure, nil, true
	}

	for _, known := range []string{
		"home renovation", "renovation", "education", "medical", "travel",
		"wedding", "marriage", "debt consolidation", "business", "vehicle",
	} {
		if strings.Contains(lowered, known) {
			p := known
			purpose = &p
			break
		}
	}

	return amount, tenure, purpose, false
}
