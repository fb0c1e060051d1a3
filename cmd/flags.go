package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/etnz/irr"
	"github.com/etnz/irr/date"
)

// moneyFlag is a flag.Value for an amount with an optional currency: "100", "100 EUR".
type moneyFlag struct {
	irr.Money
	set bool
}

func (m *moneyFlag) Set(s string) (err error) {
	m.Money, err = irr.ParseMoney(s)
	m.set = err == nil
	return err
}

func (m *moneyFlag) String() string {
	if !m.set {
		return ""
	}
	return m.Money.String()
}

// percentFlag is a flag.Value for a rate in percent: "15", "15%", "-3.5%".
type percentFlag struct {
	irr.Percent
	set bool
}

func (p *percentFlag) Set(s string) (err error) {
	p.Percent, err = parsePercent(s)
	p.set = err == nil
	return err
}

func (p *percentFlag) String() string {
	if !p.set {
		return ""
	}
	return p.Percent.String()
}

func parsePercent(s string) (irr.Percent, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return irr.Percent(f), nil
}

// yearsFlag is a flag.Value for a duration: "3", "2.5y", "18m".
type yearsFlag struct{ irr.Years }

func (y *yearsFlag) Set(s string) (err error) {
	y.Years, err = irr.ParseYears(s)
	return err
}

func (y *yearsFlag) String() string {
	if y.Years == 0 {
		return ""
	}
	return y.Years.String()
}

// dateFlag is a flag.Value for a date, defaulting to today.
type dateFlag struct{ date.Date }

func (d *dateFlag) Set(s string) (err error) {
	d.Date, err = date.Parse(s)
	return err
}

func (d *dateFlag) String() string {
	if d.Date.IsZero() {
		return ""
	}
	return d.Date.String()
}

func (d *dateFlag) orToday() date.Date {
	if d.Date.IsZero() {
		return date.Today()
	}
	return d.Date
}

// followOnsFlag is a repeatable flag.Value for follow-on investments:
//
//	AMOUNT,TIMING[,KIND[,VALUATION]]
//
// where VALUATION is "tagalong", "rate:X" or "value:Y". e.g.
//
//	-f "50 EUR,+6m"  -f "20 EUR,2021-03-01,sell,value:35 EUR"
type followOnsFlag []irr.FollowOn

func (f *followOnsFlag) String() string {
	parts := make([]string, len(*f))
	for i, fo := range *f {
		parts[i] = fmt.Sprintf("%s,%s,%s,%s", fo.Amount, fo.Timing, fo.Kind, fo.Valuation)
	}
	return strings.Join(parts, " ")
}

func (f *followOnsFlag) Set(s string) error {
	fo, err := parseFollowOn(s)
	if err != nil {
		return err
	}
	*f = append(*f, fo)
	return nil
}

func parseFollowOn(s string) (irr.FollowOn, error) {
	fields := strings.Split(s, ",")
	if len(fields) < 2 || len(fields) > 4 {
		return irr.FollowOn{}, fmt.Errorf("invalid follow-on %q, want AMOUNT,TIMING[,KIND[,VALUATION]]", s)
	}
	var (
		fo  irr.FollowOn
		err error
	)
	if fo.Amount, err = irr.ParseMoney(fields[0]); err != nil {
		return irr.FollowOn{}, err
	}
	if fo.Timing, err = irr.ParseTiming(fields[1]); err != nil {
		return irr.FollowOn{}, err
	}
	if len(fields) > 2 {
		if fo.Kind, err = irr.ParseKind(fields[2]); err != nil {
			return irr.FollowOn{}, err
		}
	}
	if len(fields) > 3 {
		if fo.Valuation, err = parseValuation(fields[3]); err != nil {
			return irr.FollowOn{}, err
		}
	}
	return fo, nil
}

func parseValuation(s string) (irr.Valuation, error) {
	s = strings.TrimSpace(s)
	policy, arg, _ := strings.Cut(s, ":")
	switch strings.ToLower(policy) {
	case "", "tagalong":
		return irr.TagAlong(), nil
	case "rate":
		p, err := parsePercent(arg)
		if err != nil {
			return irr.Valuation{}, err
		}
		return irr.Computed(p), nil
	case "value":
		m, err := irr.ParseMoney(arg)
		if err != nil {
			return irr.Valuation{}, err
		}
		return irr.Specified(m), nil
	default:
		return irr.Valuation{}, fmt.Errorf("invalid valuation %q, want tagalong, rate:X or value:Y", s)
	}
}
