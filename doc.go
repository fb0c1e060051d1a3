// Package irr computes the returns of investments held over a horizon.
//
// The core functionalities include:
//   - Rate Solver: the compound annual rate between an initial investment and
//     its outcome, and its inverses, the future and present values.
//   - Blended Rate: the annual rate of an investment with follow-on investments,
//     weighted by the time each one is invested until the horizon.
//   - Growth Trajectory: the month by month value of an investment at a rate.
//   - Portfolio Fee Waterfall: the net proceeds of a unit based portfolio after
//     its fees, and the resulting annual rate.
//
// A [Scenario] describes any of these calculations, [Evaluate] runs it into a
// [Calculation] that can be rendered or exported as JSON.
//
// This package serves as the foundational logic for the `irr` command-line
// tool and its HTTP API.
package irr
