package irr

import (
	"slices"

	"github.com/etnz/irr/date"
	"github.com/shopspring/decimal"
)

// PortfolioParameters describes a unit based portfolio investment (e.g. a fund of
// early stage companies) where only a fraction of the units succeed, and proceeds
// go through fees before reaching the investor.
type PortfolioParameters struct {
	Start          date.Date `json:"start"`
	Initial        Money     `json:"initial"`
	UnitPrice      Money     `json:"unitPrice"`
	SuccessRate    Percent   `json:"successRate"`
	OutcomePerUnit Money     `json:"outcomePerUnit"`
	TopLineFee     Percent   `json:"topLineFee"`
	ManagementFee  Percent   `json:"managementFee"`
	InvestorShare  Percent   `json:"investorShare"`
	Horizon        Years     `json:"horizon"`
	// FollowOns are additional purchases of units, their kind is ignored.
	// The unit price of each batch is its Specified valuation.
	FollowOns []FollowOn `json:"followOns,omitempty"`
}

// Waterfall details how gross proceeds become the investor's net proceeds.
type Waterfall struct {
	Units           []decimal.Decimal `json:"units"` // per batch, the initial one first
	TotalUnits      decimal.Decimal   `json:"totalUnits"`
	SuccessfulUnits decimal.Decimal   `json:"successfulUnits"`
	Gross           Money             `json:"gross"`
	AfterTopLine    Money             `json:"afterTopLine"`
	AfterManagement Money             `json:"afterManagement"`
	Net             Money             `json:"net"`
}

// PortfolioResult is the outcome of a portfolio calculation.
type PortfolioResult struct {
	Waterfall Waterfall
	Resolved  Resolved // the schedule the rate is computed on
	Rate      Percent
	Growth    []GrowthPoint
}

// NetProceeds computes the fee waterfall of p, in this strict order:
// units bought, successful units, gross proceeds, top-line fee, management
// fee and finally the investor's share.
func NetProceeds(p PortfolioParameters) (Waterfall, error) {
	if err := p.validate(); err != nil {
		return Waterfall{}, err
	}
	w := Waterfall{Units: make([]decimal.Decimal, 0, 1+len(p.FollowOns))}
	w.Units = append(w.Units, p.Initial.DivPrice(p.UnitPrice))
	for _, f := range p.FollowOns {
		price, _ := f.Valuation.Value()
		w.Units = append(w.Units, f.Amount.DivPrice(price))
	}
	for _, u := range w.Units {
		w.TotalUnits = w.TotalUnits.Add(u)
	}
	one := decimal.NewFromInt(1)
	w.SuccessfulUnits = w.TotalUnits.Mul(p.SuccessRate.fraction())
	w.Gross = p.OutcomePerUnit.Mul(w.SuccessfulUnits)
	w.AfterTopLine = w.Gross.Mul(one.Sub(p.TopLineFee.fraction()))
	w.AfterManagement = w.AfterTopLine.Mul(one.Sub(p.ManagementFee.fraction()))
	w.Net = w.AfterManagement.Mul(p.InvestorShare.fraction())
	// amounts keep the investment currency even if the outcome was given without one.
	w.Gross.cur = cur(p.Initial, p.OutcomePerUnit)
	w.AfterTopLine.cur, w.AfterManagement.cur, w.Net.cur = w.Gross.cur, w.Gross.cur, w.Gross.cur
	return w, nil
}

// Schedule returns the schedule whose blended rate is the portfolio's rate: the
// follow-on batches only count for the capital they invest, their units are
// already part of the net proceeds.
func (p PortfolioParameters) Schedule(net Money) Schedule {
	s := Schedule{
		Start:          p.Start,
		Initial:        p.Initial,
		Horizon:        p.Horizon,
		FinalValuation: net,
		FollowOns:      make([]FollowOn, 0, len(p.FollowOns)),
	}
	for _, f := range p.FollowOns {
		s.FollowOns = append(s.FollowOns, FollowOn{Amount: f.Amount, Kind: Buy, Timing: f.Timing, Valuation: TagAlong()})
	}
	return s
}

// Portfolio computes the net proceeds of p and their blended annual rate.
func Portfolio(p PortfolioParameters) (PortfolioResult, error) {
	w, err := NetProceeds(p)
	if err != nil {
		return PortfolioResult{}, err
	}
	r, err := ResolveSchedule(p.Schedule(w.Net))
	if err != nil {
		return PortfolioResult{}, err
	}
	rate, err := r.Rate()
	if err != nil {
		return PortfolioResult{}, err
	}
	return PortfolioResult{
		Waterfall: w,
		Resolved:  r,
		Rate:      rate,
		Growth:    slices.Collect(Trajectory(r, rate)),
	}, nil
}

func (p PortfolioParameters) validate() error {
	for _, pc := range []struct {
		field string
		value Percent
	}{
		{"successRate", p.SuccessRate},
		{"topLineFee", p.TopLineFee},
		{"managementFee", p.ManagementFee},
		{"investorShare", p.InvestorShare},
	} {
		if !(pc.value >= 0 && pc.value <= 100) {
			return domainErr(ErrPercentageOutOfRange, pc.field, "%v is not within 0 and 100", float64(pc.value))
		}
	}
	if !p.Initial.IsPositive() {
		return domainErr(ErrNonPositiveAmount, "initial", "got %s", p.Initial.Decimal())
	}
	if !p.UnitPrice.IsPositive() {
		return domainErr(ErrNonPositiveAmount, "unitPrice", "got %s", p.UnitPrice.Decimal())
	}
	if p.OutcomePerUnit.IsNegative() {
		return domainErr(ErrNonPositiveAmount, "outcomePerUnit", "got %s", p.OutcomePerUnit.Decimal())
	}
	if p.Horizon <= 0 || !p.Horizon.finite() {
		return domainErr(ErrNonPositiveHorizon, "horizon", "got %v", float64(p.Horizon))
	}
	if _, err := sameCurrency(p.Initial, p.UnitPrice, p.OutcomePerUnit); err != nil {
		return &DomainError{Err: err, Field: "unitPrice"}
	}
	for i, f := range p.FollowOns {
		if !f.Amount.IsPositive() {
			return inBatch(i, "amount", domainErr(ErrNonPositiveAmount, "amount", "got %s", f.Amount.Decimal()))
		}
		price, ok := f.Valuation.Value()
		if !ok || !price.IsPositive() {
			return inBatch(i, "unitPrice", domainErr(ErrNonPositiveAmount, "unitPrice", "batch unit price %s", f.Valuation))
		}
		if _, err := sameCurrency(p.Initial, f.Amount, price); err != nil {
			return inBatch(i, "amount", err)
		}
	}
	return nil
}
