package matching

import (
	"strconv"
	"strings"
)

// DefaultRequiredYears applies when a request does not state an experience
// requirement.
const DefaultRequiredYears = 5

// ParseYears returns the first run of ASCII digits in text, so "15+ years"
// yields 15 and "10-15 years" yields 10. ok is false when the text holds no
// digits or the run does not fit in an int.
func ParseYears(text string) (years int, ok bool) {
	start := strings.IndexFunc(text, isDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(text) && isDigit(rune(text[end])) {
		end++
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// ExperienceScore compares the coach's stated experience with the
// requirement. Blank coach text counts as zero years and a blank
// requirement as DefaultRequiredYears; any other text without a number is
// a parse failure and scores experienceFallback.
func ExperienceScore(coachExperience, requiredExperience string) float64 {
	coachYears, ok := yearsOrDefault(coachExperience, 0)
	if !ok {
		return experienceFallback
	}
	requiredYears, ok := yearsOrDefault(requiredExperience, DefaultRequiredYears)
	if !ok {
		return experienceFallback
	}

	if requiredYears <= 0 || coachYears >= requiredYears {
		return 1.0
	}
	return float64(coachYears) / float64(requiredYears)
}

func yearsOrDefault(text string, fallback int) (int, bool) {
	if strings.TrimSpace(text) == "" {
		return fallback, true
	}
	return ParseYears(text)
}
