package irr

import (
	"fmt"
	"math"
	"strconv"
)

// Years is a duration in years, possibly fractional.
type Years float64

// Months converts y into a whole number of months, rounding half away from zero.
func (y Years) Months() int { return int(math.Round(float64(y) * 12)) }

// finite reports whether y is neither NaN nor infinite.
func (y Years) finite() bool { return finite(float64(y)) }

// YearsOf returns the duration of n months.
func YearsOf(months int) Years { return Years(float64(months) / 12) }

func (y Years) String() string {
	return strconv.FormatFloat(float64(y), 'f', -1, 64) + "y"
}

// ParseYears parses a number of years, with an optional "y" suffix, or a number of months with a "m" suffix.
func ParseYears(s string) (Years, error) {
	unit := 1.0
	switch {
	case len(s) > 1 && s[len(s)-1] == 'y':
		s = s[:len(s)-1]
	case len(s) > 1 && s[len(s)-1] == 'm':
		s, unit = s[:len(s)-1], 1.0/12
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if !finite(f) {
		return 0, fmt.Errorf("invalid duration %q: %w", s, ErrNonPositiveHorizon)
	}
	return Years(f * unit), nil
}
