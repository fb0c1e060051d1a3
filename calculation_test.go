package irr

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/irr/date"
	"github.com/google/uuid"
)

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		name         string
		scenario     Scenario
		wantRate     float64
		wantInvested float64
		wantTerminal float64
		wantPoints   int
	}{
		{
			name:         "rate",
			scenario:     Scenario{Mode: RateMode, Initial: M(100, "EUR"), Outcome: M(150, "EUR"), Horizon: 2},
			wantRate:     22.4745,
			wantInvested: 100,
			wantTerminal: 150,
			wantPoints:   25,
		},
		{
			name:         "future",
			scenario:     Scenario{Mode: FutureMode, Initial: M(100, "EUR"), Rate: 15, Horizon: 3},
			wantRate:     15,
			wantInvested: 100,
			wantTerminal: 152.0875,
			wantPoints:   37,
		},
		{
			name:         "present",
			scenario:     Scenario{Mode: PresentMode, Outcome: M(200, "USD"), Rate: 10, Horizon: 5},
			wantRate:     10,
			wantInvested: 124.1843,
			wantTerminal: 200,
			wantPoints:   61,
		},
		{
			name: "blended",
			scenario: Scenario{
				Mode: BlendedMode, Start: start, Initial: M(100, "EUR"), Outcome: M(150, "EUR"), Horizon: 2,
				FollowOns: []FollowOn{{Amount: M(100, "EUR"), Timing: After(1, date.Years), Valuation: Specified(M(130, "EUR"))}},
			},
			wantRate:     0, // 150 grows into 280
			wantInvested: 150,
			wantTerminal: 280,
			wantPoints:   25,
		},
		{
			name:         "portfolio",
			scenario:     Scenario{Mode: PortfolioMode, Portfolio: ptr(fund())},
			wantRate:     -17.2674,
			wantInvested: 100000,
			wantTerminal: 38760,
			wantPoints:   61,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Evaluate(tc.scenario)
			if err != nil {
				t.Fatalf("Evaluate() unexpected error: %v", err)
			}
			if c.ID == uuid.Nil {
				t.Errorf("Evaluate() has no ID")
			}
			m := c.Metrics
			if tc.wantRate != 0 && !near(float64(m.Rate), tc.wantRate, 1e-3) {
				t.Errorf("Rate = %v, want %v", float64(m.Rate), tc.wantRate)
			}
			if !near(m.Invested.float(), tc.wantInvested, 1e-3) {
				t.Errorf("Invested = %v, want %v", m.Invested, tc.wantInvested)
			}
			if !near(m.Terminal.float(), tc.wantTerminal, 1e-3) {
				t.Errorf("Terminal = %v, want %v", m.Terminal, tc.wantTerminal)
			}
			if got := m.Profit.float(); !near(got, tc.wantTerminal-tc.wantInvested, 1e-3) {
				t.Errorf("Profit = %v, want %v", got, tc.wantTerminal-tc.wantInvested)
			}
			if len(c.Growth) != tc.wantPoints {
				t.Errorf("len(Growth) = %d, want %d", len(c.Growth), tc.wantPoints)
			}
			if (c.Waterfall != nil) != (tc.scenario.Mode == PortfolioMode) {
				t.Errorf("Waterfall = %v in %v mode", c.Waterfall, tc.scenario.Mode)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestEvaluate_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		scenario Scenario
		want     error
	}{
		{"rate without outcome", Scenario{Mode: RateMode, Initial: M(100, ""), Horizon: 1}, ErrNonPositiveAmount},
		{"future with total loss", Scenario{Mode: FutureMode, Initial: M(100, ""), Rate: -100, Horizon: 1}, ErrNegativeBase},
		{"present without horizon", Scenario{Mode: PresentMode, Outcome: M(100, ""), Rate: 5, Horizon: -1}, ErrNonPositiveHorizon},
		{"blended without start", Scenario{Mode: BlendedMode, Initial: M(100, ""), Outcome: M(100, ""), Horizon: 1, FollowOns: []FollowOn{{Amount: M(10, ""), Timing: After(1, date.Months)}}}, ErrUnresolvableTiming},
		{"rate out of range", Scenario{Mode: FutureMode, Initial: M(100, ""), Rate: 5000, Horizon: 1}, ErrPercentageOutOfRange},
		{"present value underflow", Scenario{Mode: PresentMode, Outcome: M(1e-300, ""), Rate: 900, Horizon: 30}, ErrNonPositiveAmount},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Evaluate(tc.scenario); !errors.Is(err, tc.want) {
				t.Errorf("Evaluate() error = %v, want %v", err, tc.want)
			}
		})
	}
	if _, err := Evaluate(Scenario{Mode: PortfolioMode}); err == nil {
		t.Errorf("Evaluate() portfolio mode without parameters succeeded")
	}
	if _, err := Evaluate(Scenario{Mode: Mode(42)}); err == nil {
		t.Errorf("Evaluate() unknown mode succeeded")
	}
}

func TestDecodeScenario(t *testing.T) {
	const input = `{
		"mode": "blended",
		"start": "2020-01-15",
		"initial": {"currency": "EUR", "amount": "100"},
		"outcome": 150,
		"horizon": 2,
		"followOns": [
			{"amount": 100, "kind": "buy", "timing": {"after": 1, "unit": "year"}, "valuation": {"policy": "computed", "rate": 10}},
			{"amount": 20, "kind": "sell", "timing": {"on": "2021-07-15"}, "valuation": {"policy": "specified", "value": 30}}
		]
	}`
	sc, err := DecodeScenario(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeScenario() unexpected error: %v", err)
	}
	if sc.Mode != BlendedMode || sc.Start != start || sc.Horizon != 2 {
		t.Errorf("DecodeScenario() = %+v", sc)
	}
	if !sc.Initial.Equal(M(100, "EUR")) {
		t.Errorf("Initial = %#v, want 100 EUR", sc.Initial)
	}
	if len(sc.FollowOns) != 2 {
		t.Fatalf("len(FollowOns) = %d, want 2", len(sc.FollowOns))
	}
	f := sc.FollowOns[0]
	if f.Kind != Buy || !f.Timing.IsRelative() || f.Timing != After(1, date.Years) {
		t.Errorf("FollowOns[0] = %+v", f)
	}
	if rate, ok := f.Valuation.Rate(); !ok || rate != 10 {
		t.Errorf("FollowOns[0].Valuation = %v, want computed at 10%%", f.Valuation)
	}
	f = sc.FollowOns[1]
	if f.Kind != Sell || f.Timing != At(date.New(2021, 7, 15)) {
		t.Errorf("FollowOns[1] = %+v", f)
	}
	if v, ok := f.Valuation.Value(); !ok || !v.Equal(M(30, "")) {
		t.Errorf("FollowOns[1].Valuation = %v, want specified 30", f.Valuation)
	}

	if _, err := Evaluate(sc); err != nil {
		t.Errorf("Evaluate() decoded scenario unexpected error: %v", err)
	}

	for _, bad := range []string{
		`{"mode": "blended", "unknown": 1}`,
		`{"mode": "sideways"}`,
		`{"mode": "rate", "followOns": [{"kind": "hold"}]}`,
		`{"mode": "rate", "followOns": [{"timing": {"on": "2020-01-01", "after": 2, "unit": "month"}}]}`,
		`{"mode": "rate", "followOns": [{"valuation": {"policy": "guessed"}}]}`,
	} {
		if _, err := DecodeScenario(strings.NewReader(bad)); err == nil {
			t.Errorf("DecodeScenario(%s) succeeded", bad)
		}
	}
}

func TestCalculation_JSON(t *testing.T) {
	c, err := Evaluate(Scenario{Mode: PortfolioMode, Portfolio: ptr(fund())})
	if err != nil {
		t.Fatalf("Evaluate() unexpected error: %v", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("json.Marshal() unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte(`{"id":"`+c.ID.String()+`","scenario":{"mode":"portfolio"`)) {
		t.Errorf("json.Marshal() = %.80s..., want id and scenario first", data)
	}

	var got Calculation
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() unexpected error: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("ID = %v, want %v", got.ID, c.ID)
	}
	if !got.Metrics.Terminal.Equal(c.Metrics.Terminal) || !got.Metrics.Rate.Equal(c.Metrics.Rate) {
		t.Errorf("Metrics = %+v, want %+v", got.Metrics, c.Metrics)
	}
	if got.Waterfall == nil || !got.Waterfall.Net.Equal(M(38760, "EUR")) {
		t.Errorf("Waterfall = %+v, want net 38760 EUR", got.Waterfall)
	}
	if len(got.Growth) != len(c.Growth) {
		t.Errorf("len(Growth) = %d, want %d", len(got.Growth), len(c.Growth))
	}
	if got.Scenario.Portfolio == nil || got.Scenario.Portfolio.InvestorShare != 42.5 {
		t.Errorf("Scenario.Portfolio = %+v", got.Scenario.Portfolio)
	}
}
