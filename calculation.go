package irr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/irr/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mode is what a calculation solves for.
type Mode int

const (
	RateMode      Mode = iota // annual rate from initial and outcome
	FutureMode                // outcome from initial and rate
	PresentMode               // initial from outcome and rate
	BlendedMode               // annual rate with follow-on investments
	PortfolioMode             // annual rate of a unit based portfolio after fees
)

var modeNames = []string{"rate", "future", "present", "blended", "portfolio"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses a calculation mode name.
func ParseMode(s string) (Mode, error) {
	i := slices.Index(modeNames, strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return 0, fmt.Errorf("unknown mode %q, want one of %s", s, strings.Join(modeNames, ", "))
	}
	return Mode(i), nil
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Scenario holds the input parameters of a calculation, for any mode.
type Scenario struct {
	Mode      Mode                 `json:"mode"`
	Start     date.Date            `json:"start,omitzero"`
	Initial   Money                `json:"initial,omitzero"`
	Outcome   Money                `json:"outcome,omitzero"` // final valuation in blended mode
	Rate      Percent              `json:"rate,omitempty"`
	Horizon   Years                `json:"horizon,omitempty"`
	FollowOns []FollowOn           `json:"followOns,omitempty"`
	Portfolio *PortfolioParameters `json:"portfolio,omitempty"`
}

// DecodeScenario reads a JSON scenario.
func DecodeScenario(r io.Reader) (Scenario, error) {
	var sc Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario: %w", err)
	}
	return sc, nil
}

// Metrics are the results of a calculation.
type Metrics struct {
	Rate     Percent         `json:"rate"`     // annual rate
	Invested Money           `json:"invested"` // (time-weighted average) invested capital
	Terminal Money           `json:"terminal"` // value at the horizon
	Multiple decimal.Decimal `json:"multiple"` // Terminal / Invested
	Profit   Money           `json:"profit"`   // Terminal - Invested
}

func newMetrics(rate Percent, invested, terminal Money) Metrics {
	m := Metrics{
		Rate:     rate,
		Invested: invested,
		Terminal: terminal,
		Profit:   terminal.Sub(invested),
	}
	// a zero invested capital leaves the multiple at zero.
	if !invested.IsZero() {
		m.Multiple = terminal.Decimal().Div(invested.Decimal())
	}
	return m
}

// Calculation is an evaluated scenario, as stored and exported.
type Calculation struct {
	ID        uuid.UUID
	Scenario  Scenario
	Metrics   Metrics
	Waterfall *Waterfall // portfolio mode only
	Growth    []GrowthPoint
}

// Evaluate runs the calculation described by sc.
func Evaluate(sc Scenario) (*Calculation, error) {
	c := &Calculation{ID: uuid.New(), Scenario: sc}
	var (
		r    Resolved
		rate Percent
		err  error
	)
	switch sc.Mode {
	case RateMode:
		if rate, err = SolveRate(sc.Initial, sc.Outcome, sc.Horizon); err != nil {
			return nil, err
		}
		r = single(sc.Start, sc.Initial, sc.Outcome, sc.Horizon)
	case FutureMode:
		outcome, err := FutureValue(sc.Initial, sc.Rate, sc.Horizon)
		if err != nil {
			return nil, err
		}
		rate, r = sc.Rate, single(sc.Start, sc.Initial, outcome, sc.Horizon)
	case PresentMode:
		initial, err := PresentValue(sc.Outcome, sc.Rate, sc.Horizon)
		if err != nil {
			return nil, err
		}
		rate, r = sc.Rate, single(sc.Start, initial, sc.Outcome, sc.Horizon)
	case BlendedMode:
		r, err = ResolveSchedule(Schedule{
			Start:          sc.Start,
			Initial:        sc.Initial,
			Horizon:        sc.Horizon,
			FinalValuation: sc.Outcome,
			FollowOns:      sc.FollowOns,
		})
		if err != nil {
			return nil, err
		}
		if rate, err = r.Rate(); err != nil {
			return nil, err
		}
	case PortfolioMode:
		if sc.Portfolio == nil {
			return nil, errors.New("portfolio mode requires portfolio parameters")
		}
		res, err := Portfolio(*sc.Portfolio)
		if err != nil {
			return nil, err
		}
		c.Waterfall = &res.Waterfall
		c.Metrics = newMetrics(res.Rate, res.Resolved.Invested, res.Resolved.Terminal)
		c.Growth = res.Growth
		return c, nil
	default:
		return nil, fmt.Errorf("unknown mode %v", sc.Mode)
	}
	c.Metrics = newMetrics(rate, r.Invested, r.Terminal)
	c.Growth = slices.Collect(Trajectory(r, rate))
	return c, nil
}

// single returns the resolution of a schedule without follow-on investments.
func single(start date.Date, initial, outcome Money, horizon Years) Resolved {
	r := Resolved{
		Schedule: Schedule{Start: start, Initial: initial, Horizon: horizon, FinalValuation: outcome},
		Invested: initial,
		Terminal: outcome,
	}
	if !start.IsZero() {
		r.HorizonDate = start.AddMonth(horizon.Months())
	}
	return r
}

func (c Calculation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", c.ID)
	w.Append("scenario", c.Scenario)
	w.Append("metrics", c.Metrics)
	w.Optional("waterfall", c.Waterfall)
	w.Append("growth", c.Growth)
	return w.MarshalJSON()
}

func (c *Calculation) UnmarshalJSON(data []byte) error {
	var v struct {
		ID        uuid.UUID     `json:"id"`
		Scenario  Scenario      `json:"scenario"`
		Metrics   Metrics       `json:"metrics"`
		Waterfall *Waterfall    `json:"waterfall"`
		Growth    []GrowthPoint `json:"growth"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Calculation{ID: v.ID, Scenario: v.Scenario, Metrics: v.Metrics, Waterfall: v.Waterfall, Growth: v.Growth}
	return nil
}
