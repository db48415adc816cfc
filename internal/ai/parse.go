package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	scorePattern   = regexp.MustCompile(`\$([0-9]+(?:\.[0-9]+)?)\$`)
	numberRegex    = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	ErrParseFailed = errors.New("parse_failed")
)

// ParseScore extracts a 0-100 score from model output. It first tries the
// strict $<number>$ format, then falls back to the first number in the text
// (e.g. "score: 85"). Values outside 0-100 are clamped.
func ParseScore(text string) (float64, error) {
	if m := scorePattern.FindStringSubmatch(text); len(m) >= 2 {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
		return clampScore(v), nil
	}
	m := numberRegex.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: no score found", ErrParseFailed)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return clampScore(v), nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
