package irr

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a rate expressed in percent: 15.0 stands for 15%.
type Percent float64

// Sane bounds for a user supplied rate.
const (
	MinPercent Percent = -100
	MaxPercent Percent = 1000
)

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// Valid reports whether p is in the open interval (MinPercent, MaxPercent).
func (p Percent) Valid() bool { return p > MinPercent && p < MaxPercent }

// factor returns 1+p as a growth factor.
func (p Percent) factor() float64 { return 1 + float64(p)/100 }

// fraction returns p/100 as an exact decimal.
func (p Percent) fraction() decimal.Decimal {
	return decimal.NewFromFloat(float64(p)).Div(decimal.NewFromInt(100))
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
