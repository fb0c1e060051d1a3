package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/irr"
	"github.com/google/subcommands"
)

// evaluate runs sc and prints the calculation.
func evaluate(sc irr.Scenario, out *outputFlags) subcommands.ExitStatus {
	cfg, logger, ok := setup()
	if !ok {
		return subcommands.ExitFailure
	}
	if cfg.Currency != "" {
		sc = withCurrency(sc, cfg.Currency)
	}
	c, err := irr.Evaluate(sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	logger.Debug().Stringer("id", c.ID).Stringer("mode", sc.Mode).Stringer("rate", c.Metrics.Rate).Msg("calculation")
	if err := out.print(stdout, cfg, c); err != nil {
		fmt.Fprintf(os.Stderr, "Error printing calculation: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// withCurrency sets the default currency on the scenario's amounts that have none.
func withCurrency(sc irr.Scenario, currency string) irr.Scenario {
	def := func(m irr.Money) irr.Money {
		if m.Currency() != "" || m.IsZero() {
			return m
		}
		return irr.M(m.Decimal(), currency)
	}
	sc.Initial, sc.Outcome = def(sc.Initial), def(sc.Outcome)
	fos := make([]irr.FollowOn, len(sc.FollowOns))
	for i, f := range sc.FollowOns {
		f.Amount = def(f.Amount)
		if v, ok := f.Valuation.Value(); ok {
			f.Valuation = irr.Specified(def(v))
		}
		fos[i] = f
	}
	sc.FollowOns = fos
	if p := sc.Portfolio; p != nil {
		q := *p
		q.Initial, q.UnitPrice, q.OutcomePerUnit = def(q.Initial), def(q.UnitPrice), def(q.OutcomePerUnit)
		q.FollowOns = withCurrency(irr.Scenario{FollowOns: q.FollowOns}, currency).FollowOns
		sc.Portfolio = &q
	}
	return sc
}

// requireFlags reports the first missing flag among names.
func requireFlags(f *flag.FlagSet, names ...string) error {
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	for _, n := range names {
		if !set[n] {
			return fmt.Errorf("missing -%s", n)
		}
	}
	return nil
}

type rateCmd struct {
	initial, outcome moneyFlag
	horizon          yearsFlag
	start            dateFlag
	out              outputFlags
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "annual rate growing an initial amount into an outcome" }
func (*rateCmd) Usage() string {
	return `irr rate -initial <amount> -outcome <amount> -horizon <duration>

  Solve the compound annual growth rate.

  e.g. irr rate -initial 100 -outcome 150 -horizon 2 prints 22.47%.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.initial, "initial", "initial investment, e.g. '1000 EUR'")
	f.Var(&c.outcome, "outcome", "value at the horizon")
	f.Var(&c.horizon, "horizon", "holding period, in years (3, 2.5y) or months (18m)")
	f.Var(&c.start, "start", "initial investment date (default today)")
	c.out.SetFlags(f)
}

func (c *rateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlags(f, "initial", "outcome", "horizon"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return evaluate(irr.Scenario{
		Mode:    irr.RateMode,
		Start:   c.start.orToday(),
		Initial: c.initial.Money,
		Outcome: c.outcome.Money,
		Horizon: c.horizon.Years,
	}, &c.out)
}

type futureCmd struct {
	initial moneyFlag
	rate    percentFlag
	horizon yearsFlag
	start   dateFlag
	out     outputFlags
}

func (*futureCmd) Name() string     { return "future" }
func (*futureCmd) Synopsis() string { return "value of an initial amount compounded at a rate" }
func (*futureCmd) Usage() string {
	return `irr future -initial <amount> -rate <percent> -horizon <duration>

  Compute the future value of an investment.
`
}

func (c *futureCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.initial, "initial", "initial investment, e.g. '1000 EUR'")
	f.Var(&c.rate, "rate", "annual rate in percent, e.g. 15 or 15%")
	f.Var(&c.horizon, "horizon", "holding period, in years (3, 2.5y) or months (18m)")
	f.Var(&c.start, "start", "initial investment date (default today)")
	c.out.SetFlags(f)
}

func (c *futureCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlags(f, "initial", "rate", "horizon"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return evaluate(irr.Scenario{
		Mode:    irr.FutureMode,
		Start:   c.start.orToday(),
		Initial: c.initial.Money,
		Rate:    c.rate.Percent,
		Horizon: c.horizon.Years,
	}, &c.out)
}

type presentCmd struct {
	outcome moneyFlag
	rate    percentFlag
	horizon yearsFlag
	start   dateFlag
	out     outputFlags
}

func (*presentCmd) Name() string     { return "present" }
func (*presentCmd) Synopsis() string { return "amount to invest now to reach an outcome at a rate" }
func (*presentCmd) Usage() string {
	return `irr present -outcome <amount> -rate <percent> -horizon <duration>

  Compute the present value of a target outcome.
`
}

func (c *presentCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.outcome, "outcome", "target value at the horizon, e.g. '2000 EUR'")
	f.Var(&c.rate, "rate", "annual rate in percent, e.g. 10 or 10%")
	f.Var(&c.horizon, "horizon", "holding period, in years (5, 2.5y) or months (18m)")
	f.Var(&c.start, "start", "initial investment date (default today)")
	c.out.SetFlags(f)
}

func (c *presentCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlags(f, "outcome", "rate", "horizon"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return evaluate(irr.Scenario{
		Mode:    irr.PresentMode,
		Start:   c.start.orToday(),
		Outcome: c.outcome.Money,
		Rate:    c.rate.Percent,
		Horizon: c.horizon.Years,
	}, &c.out)
}

type blendedCmd struct {
	initial, outcome moneyFlag
	horizon          yearsFlag
	start            dateFlag
	followOns        followOnsFlag
	out              outputFlags
}

func (*blendedCmd) Name() string { return "blended" }
func (*blendedCmd) Synopsis() string {
	return "annual rate of an investment with follow-on investments"
}
func (*blendedCmd) Usage() string {
	return `irr blended -initial <amount> -outcome <amount> -horizon <duration> [-f <follow-on>]...

  Compute the blended annual rate of an investment and its follow-on investments.
  -outcome is the value of the initial investment at the horizon.

  Each -f flag adds a follow-on investment: AMOUNT,TIMING[,KIND[,VALUATION]]
    TIMING    a date (2021-03-01) or an offset from -start (+6m, +2 quarters, +1y)
    KIND      buy (default), sell or buysell
    VALUATION tagalong (default), rate:X to compound at X%, or value:Y

  e.g. irr blended -start 2020-01-15 -initial 100 -outcome 150 -horizon 2 -f 50,+6m,buy,value:80
`
}

func (c *blendedCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.initial, "initial", "initial investment, e.g. '1000 EUR'")
	f.Var(&c.outcome, "outcome", "value of the initial investment at the horizon")
	f.Var(&c.horizon, "horizon", "holding period, in years (3, 2.5y) or months (18m)")
	f.Var(&c.start, "start", "initial investment date (default today)")
	f.Var(&c.followOns, "f", "follow-on investment AMOUNT,TIMING[,KIND[,VALUATION]], repeatable")
	c.out.SetFlags(f)
}

func (c *blendedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlags(f, "initial", "outcome", "horizon"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return evaluate(irr.Scenario{
		Mode:      irr.BlendedMode,
		Start:     c.start.orToday(),
		Initial:   c.initial.Money,
		Outcome:   c.outcome.Money,
		Horizon:   c.horizon.Years,
		FollowOns: c.followOns,
	}, &c.out)
}

type portfolioCmd struct {
	initial, unitPrice, outcomePerUnit                    moneyFlag
	successRate, topLineFee, managementFee, investorShare percentFlag
	horizon                                               yearsFlag
	start                                                 dateFlag
	followOns                                             followOnsFlag
	out                                                   outputFlags
}

func (*portfolioCmd) Name() string { return "portfolio" }
func (*portfolioCmd) Synopsis() string {
	return "annual rate of a unit based portfolio after fees"
}
func (*portfolioCmd) Usage() string {
	return `irr portfolio -initial <amount> -unit-price <amount> -success-rate <percent> -outcome-per-unit <amount> -horizon <duration> [flags]

  Compute the net proceeds of a unit based portfolio through its fee waterfall,
  and the resulting annual rate.

  Each -f flag adds a purchase of units: AMOUNT,TIMING,KIND,value:UNIT_PRICE
  The kind is ignored, the unit price defaults to -unit-price.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.initial, "initial", "initial investment, e.g. '100000 EUR'")
	f.Var(&c.unitPrice, "unit-price", "price of one unit")
	f.Var(&c.outcomePerUnit, "outcome-per-unit", "proceeds of one successful unit")
	f.Var(&c.successRate, "success-rate", "share of units that succeed, in percent")
	f.Var(&c.topLineFee, "top-line-fee", "fee on gross proceeds, in percent")
	f.Var(&c.managementFee, "management-fee", "fee on proceeds after the top-line fee, in percent")
	c.investorShare = percentFlag{Percent: 100, set: true}
	f.Var(&c.investorShare, "investor-share", "investor's share of the remaining proceeds, in percent")
	f.Var(&c.horizon, "horizon", "holding period, in years (3, 2.5y) or months (18m)")
	f.Var(&c.start, "start", "initial investment date (default today)")
	f.Var(&c.followOns, "f", "additional purchase AMOUNT,TIMING[,KIND[,value:UNIT_PRICE]], repeatable")
	c.out.SetFlags(f)
}

func (c *portfolioCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireFlags(f, "initial", "unit-price", "success-rate", "outcome-per-unit", "horizon"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	followOns := make([]irr.FollowOn, len(c.followOns))
	for i, fo := range c.followOns {
		if _, ok := fo.Valuation.Value(); !ok {
			fo.Valuation = irr.Specified(c.unitPrice.Money)
		}
		followOns[i] = fo
	}
	return evaluate(irr.Scenario{
		Mode: irr.PortfolioMode,
		Portfolio: &irr.PortfolioParameters{
			Start:          c.start.orToday(),
			Initial:        c.initial.Money,
			UnitPrice:      c.unitPrice.Money,
			SuccessRate:    c.successRate.Percent,
			OutcomePerUnit: c.outcomePerUnit.Money,
			TopLineFee:     c.topLineFee.Percent,
			ManagementFee:  c.managementFee.Percent,
			InvestorShare:  c.investorShare.Percent,
			Horizon:        c.horizon.Years,
			FollowOns:      followOns,
		},
	}, &c.out)
}

type calcCmd struct {
	out outputFlags
}

func (*calcCmd) Name() string     { return "calc" }
func (*calcCmd) Synopsis() string { return "evaluate a JSON scenario" }
func (*calcCmd) Usage() string {
	return `irr calc [<scenario.json>]

  Evaluate a scenario in JSON, read from the file or from stdin.
  See 'irr topic scenario' for the format.
`
}

func (c *calcCmd) SetFlags(f *flag.FlagSet) { c.out.SetFlags(f) }

func (c *calcCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r io.Reader = os.Stdin
	switch f.NArg() {
	case 0:
	case 1:
		file, err := os.Open(f.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening scenario: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	default:
		fmt.Fprintln(os.Stderr, "Error: at most one scenario file")
		return subcommands.ExitUsageError
	}
	sc, err := irr.DecodeScenario(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return evaluate(sc, &c.out)
}
