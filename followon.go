package irr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/irr/date"
)

// Kind is the kind of capital event of a follow-on investment.
type Kind int

const (
	Buy     Kind = iota // capital added
	Sell                // capital withdrawn
	BuySell             // capital added and withdrawn on the same date
)

func (k Kind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case BuySell:
		return "buysell"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) buys() bool  { return k == Buy || k == BuySell }
func (k Kind) sells() bool { return k == Sell || k == BuySell }

// ParseKind parses a follow-on kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "buysell", "buy-sell", "buy_sell":
		return BuySell, nil
	default:
		return 0, fmt.Errorf("unknown follow-on kind %q", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Timing is when a follow-on investment happens: either on a given date,
// or after an offset from the initial investment date.
type Timing struct {
	on     date.Date
	offset int
	unit   date.Unit // zero for absolute timings
}

// At returns an absolute timing.
func At(on date.Date) Timing { return Timing{on: on} }

// After returns a timing relative to the initial investment date.
func After(n int, unit date.Unit) Timing { return Timing{offset: n, unit: unit} }

// IsRelative reports whether t is an offset from the initial investment date.
func (t Timing) IsRelative() bool { return t.unit != 0 }

func (t Timing) String() string {
	if t.IsRelative() {
		return fmt.Sprintf("+%d %s", t.offset, t.unit)
	}
	return t.on.String()
}

// resolve returns the investment date of t given the initial investment date.
func (t Timing) resolve(start date.Date) (date.Date, error) {
	if !t.IsRelative() {
		if t.on.IsZero() {
			return date.Date{}, domainErr(ErrUnresolvableTiming, "timing", "no date")
		}
		return t.on, nil
	}
	if start.IsZero() {
		return date.Date{}, domainErr(ErrUnresolvableTiming, "timing", "%s without a start date", t)
	}
	if t.offset < 0 {
		return date.Date{}, domainErr(ErrUnresolvableTiming, "timing", "negative offset %d", t.offset)
	}
	on, err := t.unit.Shift(start, t.offset)
	if err != nil {
		return date.Date{}, domainErr(ErrUnresolvableTiming, "timing", "%v", err)
	}
	return on, nil
}

// ParseTiming parses a date (2021-01-15) or an offset from the initial
// investment date (+6m, +2 quarters).
func ParseTiming(s string) (Timing, error) {
	s = strings.TrimSpace(s)
	rel, ok := strings.CutPrefix(s, "+")
	if !ok {
		on, err := date.Parse(s)
		if err != nil {
			return Timing{}, err
		}
		return At(on), nil
	}
	i := strings.IndexFunc(rel, func(r rune) bool { return r < '0' || r > '9' })
	if i <= 0 {
		return Timing{}, fmt.Errorf("invalid offset %q, want a number and a unit like +6m", s)
	}
	n, err := strconv.Atoi(rel[:i])
	if err != nil {
		return Timing{}, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	unit, err := date.ParseUnit(rel[i:])
	if err != nil {
		return Timing{}, fmt.Errorf("invalid offset %q: %w", s, err)
	}
	return After(n, unit), nil
}

type timingJSON struct {
	On    date.Date `json:"on,omitzero"`
	After int       `json:"after,omitempty"`
	Unit  date.Unit `json:"unit,omitzero"`
}

func (t Timing) MarshalJSON() ([]byte, error) {
	return json.Marshal(timingJSON{On: t.on, After: t.offset, Unit: t.unit})
}

func (t *Timing) UnmarshalJSON(data []byte) error {
	var v timingJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !v.On.IsZero() && v.Unit != 0 {
		return fmt.Errorf("timing cannot be both on %s and after %d %s", v.On, v.After, v.Unit)
	}
	*t = Timing{on: v.On, offset: v.After, unit: v.Unit}
	return nil
}

type policy int

const (
	tagAlong policy = iota
	computed
	specified
)

var policyNames = []string{"tagalong", "computed", "specified"}

// Valuation is how a follow-on investment is valued at the horizon.
//
// The zero Valuation is TagAlong.
type Valuation struct {
	policy policy
	rate   Percent
	value  Money
}

// TagAlong values a follow-on as growing at the same rate as the main investment.
func TagAlong() Valuation { return Valuation{} }

// Computed values a follow-on by compounding its amount at its own rate until the horizon.
func Computed(rate Percent) Valuation { return Valuation{policy: computed, rate: rate} }

// Specified values a follow-on at a given amount.
func Specified(value Money) Valuation { return Valuation{policy: specified, value: value} }

// IsCustom reports whether v is a custom valuation (computed or specified).
func (v Valuation) IsCustom() bool { return v.policy != tagAlong }

// Rate returns the rate of a computed valuation.
func (v Valuation) Rate() (Percent, bool) { return v.rate, v.policy == computed }

// Value returns the amount of a specified valuation.
func (v Valuation) Value() (Money, bool) { return v.value, v.policy == specified }

func (v Valuation) String() string {
	switch v.policy {
	case computed:
		return "computed at " + v.rate.String()
	case specified:
		return "specified at " + v.value.String()
	default:
		return "tag-along"
	}
}

type valuationJSON struct {
	Policy string   `json:"policy"`
	Rate   *Percent `json:"rate,omitempty"`
	Value  *Money   `json:"value,omitempty"`
}

func (v Valuation) MarshalJSON() ([]byte, error) {
	out := valuationJSON{Policy: policyNames[v.policy]}
	switch v.policy {
	case computed:
		out.Rate = &v.rate
	case specified:
		out.Value = &v.value
	}
	return json.Marshal(out)
}

func (v *Valuation) UnmarshalJSON(data []byte) error {
	var in valuationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch strings.ToLower(in.Policy) {
	case "", "tagalong", "tag-along":
		*v = TagAlong()
	case "computed":
		if in.Rate == nil {
			return fmt.Errorf("computed valuation requires a rate")
		}
		*v = Computed(*in.Rate)
	case "specified":
		if in.Value == nil {
			return fmt.Errorf("specified valuation requires a value")
		}
		*v = Specified(*in.Value)
	default:
		return fmt.Errorf("unknown valuation policy %q", in.Policy)
	}
	return nil
}

// FollowOn is an additional capital event after the initial investment.
type FollowOn struct {
	Amount    Money     `json:"amount"`
	Kind      Kind      `json:"kind"`
	Timing    Timing    `json:"timing"`
	Valuation Valuation `json:"valuation"`
}

// Batch is a follow-on investment resolved against a schedule.
type Batch struct {
	FollowOn
	Index     int       // position in the schedule's follow-on list
	On        date.Date // investment date
	Month     int       // activation month, counted from the start date
	Remaining Years     // time left until the horizon
	Value     Money     // valuation at the horizon
}

// valuate returns the batch's valuation at the horizon.
func (b Batch) valuate() (Money, error) {
	switch b.Valuation.policy {
	case specified:
		return b.Valuation.value, nil
	case computed:
		if err := checkRate(b.Valuation.rate); err != nil {
			return Money{}, err
		}
		if b.Remaining == 0 {
			return b.Amount, nil
		}
		return FutureValue(b.Amount, b.Valuation.rate, b.Remaining)
	default:
		return b.Amount, nil
	}
}
