package irr

import (
	"slices"

	"github.com/etnz/irr/date"
	"github.com/shopspring/decimal"
)

// Schedule is an investment with its follow-on investments, valued at the horizon.
type Schedule struct {
	Start          date.Date  `json:"start"`          // initial investment date
	Initial        Money      `json:"initial"`        // initial investment
	Horizon        Years      `json:"horizon"`        // holding period from Start
	FinalValuation Money      `json:"finalValuation"` // value of the main investment at the horizon
	FollowOns      []FollowOn `json:"followOns,omitempty"`
}

// Resolved is a Schedule whose follow-on investments are dated, sorted and valued.
type Resolved struct {
	Schedule
	HorizonDate date.Date
	Batches     []Batch // sorted by investment date
	Invested    Money   // time-weighted average invested capital
	Terminal    Money   // aggregate terminal value
}

// Blended returns the blended annual rate of s.
//
// Follow-on investments are weighted by the time they are invested until the
// horizon: the rate is the one growing the time-weighted average capital into the
// aggregate terminal value. It is an approximation, not a money-weighted rate over
// irregular cash flows (XIRR).
//
// Without follow-on investments it is exactly SolveRate(s.Initial, s.FinalValuation, s.Horizon).
func Blended(s Schedule) (Percent, error) {
	r, err := ResolveSchedule(s)
	if err != nil {
		return 0, err
	}
	return r.Rate()
}

// Rate returns the blended rate of the resolved schedule.
func (r Resolved) Rate() (Percent, error) {
	if len(r.Batches) > 0 && !r.Terminal.IsPositive() {
		return 0, domainErr(ErrNonPositiveAmount, "terminalValue", "follow-on sales leave %s", r.Terminal.Decimal())
	}
	return SolveRate(r.Invested, r.Terminal, r.Horizon)
}

// ResolveSchedule validates s, dates and sorts its follow-on investments and
// aggregates the invested capital and terminal value.
func ResolveSchedule(s Schedule) (Resolved, error) {
	if err := s.validate(); err != nil {
		return Resolved{}, err
	}
	months := s.Horizon.Months()
	r := Resolved{
		Schedule: s,
		Batches:  make([]Batch, 0, len(s.FollowOns)),
	}
	if !s.Start.IsZero() {
		r.HorizonDate = s.Start.AddMonth(months)
	}

	for i, f := range s.FollowOns {
		on, err := f.Timing.resolve(s.Start)
		if err != nil {
			return Resolved{}, inBatch(i, "timing", err)
		}
		if on.Before(s.Start) || on.After(r.HorizonDate) {
			return Resolved{}, inBatch(i, "timing", domainErr(ErrUnresolvableTiming, "timing", "%s is outside %s to %s", on, s.Start, r.HorizonDate))
		}
		b := Batch{
			FollowOn:  f,
			Index:     i,
			On:        on,
			Month:     date.MonthsBetween(s.Start, on),
			Remaining: YearsOf(date.MonthsBetween(on, r.HorizonDate)),
		}
		if b.Value, err = b.valuate(); err != nil {
			return Resolved{}, inBatch(i, "valuation", err)
		}
		r.Batches = append(r.Batches, b)
	}
	slices.SortStableFunc(r.Batches, func(a, b Batch) int { return a.On.Compare(b.On) })

	// weighted sums are divided by the horizon as they go, so that without
	// follow-on investments the invested capital is exactly the initial one.
	horizonMonths := decimal.NewFromFloat(float64(s.Horizon)).Mul(decimal.NewFromInt(12))
	r.Invested, r.Terminal = s.Initial, s.FinalValuation
	for _, b := range r.Batches {
		if b.Kind.buys() {
			weight := decimal.NewFromInt(int64(b.Remaining.Months())).Div(horizonMonths)
			r.Invested = r.Invested.Add(b.Amount.Mul(weight))
		}
		switch {
		case b.Kind == Buy && b.Valuation.IsCustom():
			r.Terminal = r.Terminal.Add(b.Value)
		case b.Kind.sells():
			r.Terminal = r.Terminal.Sub(b.Value)
		}
	}
	return r, nil
}

func (s Schedule) validate() error {
	if !s.Initial.IsPositive() {
		return domainErr(ErrNonPositiveAmount, "initial", "got %s", s.Initial.Decimal())
	}
	if s.Horizon <= 0 || !s.Horizon.finite() {
		return domainErr(ErrNonPositiveHorizon, "horizon", "got %v", float64(s.Horizon))
	}
	if s.FinalValuation.IsNegative() {
		return domainErr(ErrNonPositiveAmount, "finalValuation", "got %s", s.FinalValuation.Decimal())
	}
	if _, err := sameCurrency(s.Initial, s.FinalValuation); err != nil {
		return &DomainError{Err: err, Field: "finalValuation"}
	}
	if len(s.FollowOns) == 0 {
		// nothing to date: the rate is the plain annual rate.
		return nil
	}
	if s.Horizon.Months() == 0 {
		return domainErr(ErrNonPositiveHorizon, "horizon", "%v is shorter than half a month", s.Horizon)
	}
	if s.Start.IsZero() {
		return domainErr(ErrUnresolvableTiming, "start", "no start date")
	}
	for i, f := range s.FollowOns {
		if !f.Amount.IsPositive() {
			return inBatch(i, "amount", domainErr(ErrNonPositiveAmount, "amount", "got %s", f.Amount.Decimal()))
		}
		if r, ok := f.Valuation.Rate(); ok {
			if err := checkRate(r); err != nil {
				return inBatch(i, "rate", err)
			}
		}
		if v, ok := f.Valuation.Value(); ok && v.IsNegative() {
			return inBatch(i, "valuation", domainErr(ErrNonPositiveAmount, "valuation", "got %s", v.Decimal()))
		}
		v, _ := f.Valuation.Value()
		if _, err := sameCurrency(s.Initial, f.Amount, v); err != nil {
			return inBatch(i, "amount", err)
		}
	}
	return nil
}
