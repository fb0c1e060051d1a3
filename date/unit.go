package date

import (
	"fmt"
	"strings"
)

// Unit is the unit of a relative offset between two dates.
type Unit int

const (
	Days Unit = iota + 1
	Weeks
	Months
	Quarters
	Years
)

func (u Unit) String() string {
	switch u {
	case Days:
		return "day"
	case Weeks:
		return "week"
	case Months:
		return "month"
	case Quarters:
		return "quarter"
	case Years:
		return "year"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool { return u >= Days && u <= Years }

// Shift returns d moved by n units. Month based units clamp to the end of month, see [Date.AddMonth].
func (u Unit) Shift(d Date, n int) (Date, error) {
	switch u {
	case Days:
		return d.Add(n), nil
	case Weeks:
		return d.Add(7 * n), nil
	case Months:
		return d.AddMonth(n), nil
	case Quarters:
		return d.AddMonth(3 * n), nil
	case Years:
		return d.AddMonth(12 * n), nil
	default:
		return Date{}, fmt.Errorf("unknown unit %d", int(u))
	}
}

// ParseUnit parses a unit name, singular, plural or its one letter abbreviation.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "day", "days":
		return Days, nil
	case "w", "week", "weeks":
		return Weeks, nil
	case "m", "month", "months":
		return Months, nil
	case "q", "quarter", "quarters":
		return Quarters, nil
	case "y", "year", "years":
		return Years, nil
	default:
		return 0, fmt.Errorf("unknown unit %q", s)
	}
}

func (u Unit) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", u)
	}
	return []byte(u.String()), nil
}

func (u *Unit) UnmarshalText(text []byte) error {
	v, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}
