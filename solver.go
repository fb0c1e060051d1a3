package irr

import "math"

// SolveRate returns the annual rate that grows initial into outcome in the given years:
//
//	(outcome/initial)^(1/years) - 1
func SolveRate(initial, outcome Money, years Years) (Percent, error) {
	if !initial.IsPositive() {
		return 0, domainErr(ErrNonPositiveAmount, "initial", "got %s", initial.Decimal())
	}
	if !outcome.IsPositive() {
		return 0, domainErr(ErrNonPositiveAmount, "outcome", "got %s", outcome.Decimal())
	}
	if years <= 0 || !years.finite() {
		return 0, domainErr(ErrNonPositiveHorizon, "years", "got %v", float64(years))
	}
	if _, err := sameCurrency(initial, outcome); err != nil {
		return 0, err
	}
	ratio := outcome.float() / initial.float()
	rate := math.Pow(ratio, 1/float64(years)) - 1
	if !finite(rate) {
		return 0, domainErr(ErrNegativeBase, "outcome", "ratio %v cannot be annualized over %v years", ratio, float64(years))
	}
	return Percent(rate * 100), nil
}

// FutureValue returns initial compounded at rate for the given years:
//
//	initial * (1+rate)^years
func FutureValue(initial Money, rate Percent, years Years) (Money, error) {
	if !initial.IsPositive() {
		return Money{}, domainErr(ErrNonPositiveAmount, "initial", "got %s", initial.Decimal())
	}
	if years < 0 || !years.finite() {
		return Money{}, domainErr(ErrNonPositiveHorizon, "years", "got %v", float64(years))
	}
	g, err := growth(rate, years)
	if err != nil {
		return Money{}, err
	}
	v := initial.float() * g
	if v <= 0 {
		return Money{}, domainErr(ErrNonPositiveAmount, "outcome", "%s at %v over %v underflows", initial.Decimal(), rate, years)
	}
	return fromFloat(v, initial.cur), nil
}

// PresentValue returns outcome discounted at rate for the given years:
//
//	outcome / (1+rate)^years
func PresentValue(outcome Money, rate Percent, years Years) (Money, error) {
	if !outcome.IsPositive() {
		return Money{}, domainErr(ErrNonPositiveAmount, "outcome", "got %s", outcome.Decimal())
	}
	if years < 0 || !years.finite() {
		return Money{}, domainErr(ErrNonPositiveHorizon, "years", "got %v", float64(years))
	}
	g, err := growth(rate, years)
	if err != nil {
		return Money{}, err
	}
	v := outcome.float() / g
	if v <= 0 {
		return Money{}, domainErr(ErrNonPositiveAmount, "initial", "%s discounted at %v over %v underflows", outcome.Decimal(), rate, years)
	}
	return fromFloat(v, outcome.cur), nil
}

// checkRate validates a compounding rate.
func checkRate(rate Percent) error {
	if base := rate.factor(); base <= 0 {
		return domainErr(ErrNegativeBase, "rate", "1%+.4g%% = %.4g", float64(rate), base)
	}
	if !rate.Valid() {
		return domainErr(ErrPercentageOutOfRange, "rate", "%v is not within %v and %v", float64(rate), float64(MinPercent), float64(MaxPercent))
	}
	return nil
}

// growth returns the growth factor (1+rate)^years.
//
// A factor 1+rate <= 0 (a loss of 100% or worse) has no real fractional power, it is
// reported as ErrNegativeBase instead of producing NaN. Other rates must be Valid.
func growth(rate Percent, years Years) (float64, error) {
	if err := checkRate(rate); err != nil {
		return 0, err
	}
	base := rate.factor()
	g := math.Pow(base, float64(years))
	if !finite(g) || g == 0 {
		return 0, domainErr(ErrNegativeBase, "rate", "(1%+.4g%%)^%v overflows", float64(rate), float64(years))
	}
	return g, nil
}
