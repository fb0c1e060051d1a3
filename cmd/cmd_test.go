package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/etnz/irr"
	"github.com/etnz/irr/date"
	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes c with args and returns its standard output.
func run(t *testing.T, c subcommands.Command, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	status := c.Execute(context.Background(), fs)
	return out.String(), status
}

func TestParseFollowOn(t *testing.T) {
	tests := []struct {
		in        string
		amount    string
		kind      irr.Kind
		timing    string
		valuation string
	}{
		{"50,+6m", "50.00", irr.Buy, "+6 month", "tag-along"},
		{"50 EUR,2021-03-01,sell,value:35 EUR", "€50.00", irr.Sell, "2021-03-01", "specified at €35.00"},
		{"20,+2 quarters,buysell,rate:10%", "20.00", irr.BuySell, "+2 quarter", "computed at 10.00%"},
		{"20,+1y,buy,tagalong", "20.00", irr.Buy, "+1 year", "tag-along"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			fo, err := parseFollowOn(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, fo.Amount.String())
			assert.Equal(t, tt.kind, fo.Kind)
			assert.Equal(t, tt.timing, fo.Timing.String())
			assert.Equal(t, tt.valuation, fo.Valuation.String())
		})
	}
}

func TestParseFollowOn_Errors(t *testing.T) {
	for _, in := range []string{
		"50",
		"50,+6m,buy,tagalong,extra",
		"abc,+6m",
		"50,+m",
		"50,+6m,hold",
		"50,+6m,buy,guess:3",
		"50,+6m,buy,rate:x",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := parseFollowOn(in)
			assert.Error(t, err)
		})
	}
}

func TestFollowOnsFlag(t *testing.T) {
	var f followOnsFlag
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&f, "f", "")
	require.NoError(t, fs.Parse([]string{"-f", "50,+6m", "-f", "20,+1y,sell,value:30"}))
	require.Len(t, f, 2)
	assert.Equal(t, irr.Buy, f[0].Kind)
	assert.Equal(t, irr.Sell, f[1].Kind)
}

func TestParsePercent(t *testing.T) {
	for in, want := range map[string]irr.Percent{"15": 15, "15%": 15, " -3.5% ": -3.5} {
		got, err := parsePercent(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"fifteen", "NaN", "inf", "-Inf%"} {
		_, err := parsePercent(in)
		assert.Error(t, err, in)
	}
}

func TestWithCurrency(t *testing.T) {
	sc := irr.Scenario{
		Initial: irr.M(100, ""),
		Outcome: irr.M(150, "USD"),
		FollowOns: []irr.FollowOn{
			{Amount: irr.M(50, ""), Valuation: irr.Specified(irr.M(80, ""))},
		},
	}
	got := withCurrency(sc, "EUR")
	assert.Equal(t, "EUR", got.Initial.Currency())
	assert.Equal(t, "USD", got.Outcome.Currency())
	assert.Equal(t, "EUR", got.FollowOns[0].Amount.Currency())
	v, _ := got.FollowOns[0].Valuation.Value()
	assert.Equal(t, "EUR", v.Currency())
	// the input is left untouched.
	assert.Equal(t, "", sc.FollowOns[0].Amount.Currency())
}

func TestPrintJSON_Query(t *testing.T) {
	v := map[string]any{
		"id":      "abc",
		"metrics": map[string]any{"rate": 22.5},
	}

	var b bytes.Buffer
	require.NoError(t, printJSON(&b, v, "$.id"))
	assert.Equal(t, "abc\n", b.String())

	b.Reset()
	require.NoError(t, printJSON(&b, v, "$.metrics.rate"))
	assert.Equal(t, "22.5\n", b.String())

	b.Reset()
	assert.Error(t, printJSON(&b, v, "$[?"))
}

func TestRateCmd(t *testing.T) {
	out, status := run(t, &rateCmd{}, "-initial", "100", "-outcome", "150", "-horizon", "2", "-q", "$.metrics.rate")
	require.Equal(t, subcommands.ExitSuccess, status)
	rate, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, 22.4745, rate, 1e-4)
}

func TestRateCmd_MissingFlag(t *testing.T) {
	_, status := run(t, &rateCmd{}, "-initial", "100", "-horizon", "2")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestFutureCmd(t *testing.T) {
	out, status := run(t, &futureCmd{}, "-initial", "100 EUR", "-rate", "15%", "-horizon", "3", "-json")
	require.Equal(t, subcommands.ExitSuccess, status)

	var c irr.Calculation
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, irr.FutureMode, c.Scenario.Mode)
	assert.Equal(t, "EUR", c.Metrics.Terminal.Currency())
	assert.InDelta(t, 152.0875, c.Metrics.Terminal.Decimal().InexactFloat64(), 1e-4)
}

func TestPresentCmd(t *testing.T) {
	out, status := run(t, &presentCmd{}, "-outcome", "200", "-rate", "10", "-horizon", "5", "-q", "$.metrics.invested.amount")
	require.Equal(t, subcommands.ExitSuccess, status)
	v, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, 124.1843, v, 1e-4)
}

func TestBlendedCmd(t *testing.T) {
	out, status := run(t, &blendedCmd{},
		"-start", "2020-01-15", "-initial", "100", "-outcome", "150", "-horizon", "2",
		"-f", "50,+6m,buy,value:80", "-json")
	require.Equal(t, subcommands.ExitSuccess, status)

	var c irr.Calculation
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, date.New(2020, 1, 15), c.Scenario.Start)
	require.Len(t, c.Scenario.FollowOns, 1)
	// 100 + 50 * 18/24 invested, 150 + 80 at the horizon.
	assert.Equal(t, "137.5", c.Metrics.Invested.Decimal().String())
	assert.Equal(t, "230", c.Metrics.Terminal.Decimal().String())
}

func TestBlendedCmd_DomainError(t *testing.T) {
	_, status := run(t, &blendedCmd{},
		"-start", "2020-01-15", "-initial", "100", "-outcome", "150", "-horizon", "2",
		"-f", "-50,+6m")
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestPortfolioCmd(t *testing.T) {
	out, status := run(t, &portfolioCmd{},
		"-start", "2020-01-01", "-initial", "100000", "-unit-price", "10000",
		"-success-rate", "20", "-outcome-per-unit", "80000",
		"-top-line-fee", "5", "-management-fee", "40", "-investor-share", "42.5",
		"-horizon", "5", "-q", "$.waterfall.net.amount")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "38760", strings.TrimSpace(out))
}

func TestCalcCmd(t *testing.T) {
	path := t.TempDir() + "/scenario.json"
	require.NoError(t, writeFile(path, `{"mode": "rate", "start": "2020-01-01", "initial": 100, "outcome": 150, "horizon": 2}`))

	out, status := run(t, &calcCmd{}, "-q", "$.scenario.mode", path)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "rate\n", out)
}

func TestCalcCmd_Markdown(t *testing.T) {
	path := t.TempDir() + "/scenario.json"
	require.NoError(t, writeFile(path, `{"mode": "rate", "start": "2020-01-01", "initial": 100, "outcome": 150, "horizon": 2}`))

	out, status := run(t, &calcCmd{}, path)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "22.47%")
}

func TestTopicCmd_List(t *testing.T) {
	out, status := run(t, &topicCmd{}, "-list")
	require.Equal(t, subcommands.ExitSuccess, status)
	for _, topic := range []string{"rate", "blended", "portfolio", "scenario", "api"} {
		assert.Contains(t, out, topic)
	}
}

func TestTopicCmd_Unknown(t *testing.T) {
	_, status := run(t, &topicCmd{}, "nosuchtopic")
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestCompletion(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("irr", flag.ContinueOnError), "irr")
	Register(commander)

	c := Completion(commander)
	for _, name := range []string{"rate", "future", "present", "blended", "portfolio", "calc", "topic", "assist", "serve"} {
		require.Contains(t, c.Sub, name)
	}
	assert.Contains(t, c.Sub["blended"].Flags, "f")
	assert.Contains(t, c.Sub["portfolio"].Flags, "unit-price")
	assert.NotNil(t, c.Sub["topic"].Args)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
