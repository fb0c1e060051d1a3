package irr

import (
	"iter"
	"math"
	"slices"
)

// GrowthPoint is the value of an investment a number of months after its start.
//
// Sales are subtracted at their sale value, so Value is negative in the months
// where more has been sold than what the schedule holds.
type GrowthPoint struct {
	Month int   `json:"month"`
	Value Money `json:"value"`
}

// Trajectory returns the monthly value of r growing at rate, from month 0 to the
// horizon included.
//
// The main investment and tag-along follow-on investments compound at rate from
// their activation month. Custom valuations and sales are flat amounts from their
// activation month on. Points are not clamped at zero.
//
// The sequence is computed on the fly and can be iterated any number of times.
func Trajectory(r Resolved, rate Percent) iter.Seq[GrowthPoint] {
	total := r.Horizon.Months()
	factor := rate.factor()
	cur := r.Initial.cur
	return func(yield func(GrowthPoint) bool) {
		for m := 0; m <= total; m++ {
			v := r.Initial.float() * compound(factor, m)
			for _, b := range r.Batches {
				if b.Month > m {
					break // batches are sorted
				}
				v += b.contribution(factor, m-b.Month)
			}
			if !yield(GrowthPoint{Month: m, Value: fromFloat(v, cur)}) {
				return
			}
		}
	}
}

// contribution returns the value added by b to the trajectory, elapsed months after its activation.
func (b Batch) contribution(factor float64, elapsed int) float64 {
	var v float64
	if b.Kind.buys() {
		switch {
		case !b.Valuation.IsCustom():
			v += b.Amount.float() * compound(factor, elapsed)
		case b.Kind == Buy:
			v += b.Value.float()
		default: // buy leg of a custom buy-sell
			v += b.Amount.float()
		}
	}
	if b.Kind.sells() {
		v -= b.Value.float()
	}
	return v
}

// compound returns factor^(months/12).
func compound(factor float64, months int) float64 {
	if months == 0 {
		return 1
	}
	return math.Pow(factor, float64(months)/12)
}

// Growth resolves s, computes its blended rate and returns the trajectory at that rate.
func Growth(s Schedule) ([]GrowthPoint, Percent, error) {
	r, err := ResolveSchedule(s)
	if err != nil {
		return nil, 0, err
	}
	rate, err := r.Rate()
	if err != nil {
		return nil, 0, err
	}
	return slices.Collect(Trajectory(r, rate)), rate, nil
}
