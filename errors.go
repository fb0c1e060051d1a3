package irr

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors. Every failure of the engine wraps exactly one of them.
var (
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrNonPositiveHorizon   = errors.New("horizon must be positive")
	ErrNegativeBase         = errors.New("growth factor must be positive")
	ErrPercentageOutOfRange = errors.New("percentage out of range")
	ErrUnresolvableTiming   = errors.New("unresolvable timing")
	ErrCurrencyMismatch     = errors.New("currency mismatch")
)

// DomainError locates a domain error in the calculation input.
type DomainError struct {
	Err    error  // one of the Err* sentinels
	Batch  int    // 1-based index of the follow-on investment, 0 when not specific to one.
	Field  string // input field at fault
	Detail string
}

func (e *DomainError) Error() string {
	var b strings.Builder
	if e.Batch > 0 {
		fmt.Fprintf(&b, "follow-on #%d: ", e.Batch)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Err.Error())
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Err }

func domainErr(err error, field string, format string, args ...any) *DomainError {
	return &DomainError{Err: err, Field: field, Detail: fmt.Sprintf(format, args...)}
}

// inBatch attributes err to the i-th (0-based) follow-on investment.
// The field is only set if err does not name one already.
func inBatch(i int, field string, err error) error {
	var de *DomainError
	if !errors.As(err, &de) {
		return &DomainError{Err: err, Batch: i + 1, Field: field}
	}
	out := *de
	out.Batch = i + 1
	if out.Field == "" {
		out.Field = field
	}
	return &out
}
