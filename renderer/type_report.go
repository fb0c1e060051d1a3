package renderer

import (
	"fmt"

	"github.com/etnz/irr"
	"github.com/etnz/irr/date"
)

// Options tune the calculation report.
type Options struct {
	Monthly bool // list every month of the growth trajectory instead of every year
}

// Report is a calculation prepared for rendering.
type Report struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Start     string         `json:"start,omitempty"` // empty for undated calculations
	End       string         `json:"end,omitempty"`
	Horizon   irr.Years      `json:"horizon"`
	Rate      irr.Percent    `json:"rate"`
	Invested  irr.Money      `json:"invested"`
	Terminal  irr.Money      `json:"terminal"`
	Multiple  string         `json:"multiple"`
	Profit    irr.Money      `json:"profit"`
	FollowOns []FollowOnLine `json:"followOns,omitempty"`
	Waterfall *irr.Waterfall `json:"waterfall,omitempty"`
	Growth    []GrowthLine   `json:"growth"`
}

// FollowOnLine is a follow-on investment as listed in a report.
type FollowOnLine struct {
	When      string        `json:"when"`
	Kind      irr.Kind      `json:"kind"`
	Amount    irr.Money     `json:"amount"`
	Valuation irr.Valuation `json:"valuation"`
}

// GrowthLine is a point of the growth trajectory as listed in a report.
type GrowthLine struct {
	Label string    `json:"label"`
	Value irr.Money `json:"value"`
}

var titles = map[irr.Mode]string{
	irr.RateMode:      "Annual Rate",
	irr.FutureMode:    "Future Value",
	irr.PresentMode:   "Present Value",
	irr.BlendedMode:   "Blended Rate",
	irr.PortfolioMode: "Portfolio Rate",
}

// NewReport prepares c for rendering.
func NewReport(c *irr.Calculation, opts Options) *Report {
	sc := c.Scenario
	start, horizon, followOns := sc.Start, sc.Horizon, sc.FollowOns
	if sc.Mode == irr.PortfolioMode && sc.Portfolio != nil {
		start, horizon, followOns = sc.Portfolio.Start, sc.Portfolio.Horizon, sc.Portfolio.FollowOns
	}

	r := &Report{
		ID:        c.ID.String(),
		Title:     titles[sc.Mode],
		Horizon:   horizon,
		Rate:      c.Metrics.Rate,
		Invested:  c.Metrics.Invested,
		Terminal:  c.Metrics.Terminal,
		Multiple:  c.Metrics.Multiple.StringFixed(2) + "x",
		Profit:    c.Metrics.Profit,
		Waterfall: c.Waterfall,
	}
	if !start.IsZero() {
		r.Start = start.String()
		r.End = start.AddMonth(horizon.Months()).String()
	}
	for _, f := range followOns {
		r.FollowOns = append(r.FollowOns, FollowOnLine{
			When:      f.Timing.String(),
			Kind:      f.Kind,
			Amount:    f.Amount,
			Valuation: f.Valuation,
		})
	}
	last := len(c.Growth) - 1
	for i, p := range c.Growth {
		if !opts.Monthly && p.Month%12 != 0 && i != last {
			continue
		}
		r.Growth = append(r.Growth, GrowthLine{Label: growthLabel(start, p.Month, opts.Monthly), Value: p.Value})
	}
	return r
}

func growthLabel(start date.Date, month int, monthly bool) string {
	switch {
	case !start.IsZero():
		return start.AddMonth(month).String()
	case monthly || month%12 != 0:
		return fmt.Sprintf("Month %d", month)
	default:
		return fmt.Sprintf("Year %d", month/12)
	}
}
