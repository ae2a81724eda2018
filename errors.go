package rfactor

import (
	"errors"

	"github.com/tphakala/go-leed-rfactor/internal/engine"
	"github.com/tphakala/go-leed-rfactor/internal/spline"
)

// Sentinel errors for preparation and R-factor evaluation. Fatal errors
// are returned as error values; conditions that still permit a valid
// result are reported on Warning fields, wrapped around the same
// sentinels so callers can test them with errors.Is.
var (
	// ErrBadGrid indicates an energy grid that is too short, not
	// strictly increasing, not uniform where uniformity is required,
	// or an evaluation point outside the fitted range.
	ErrBadGrid = errors.New("rfactor: bad energy grid")

	// ErrBeamTooShort reports beams dropped because their support
	// fell below MinBeamSamples. Informational.
	ErrBeamTooShort = errors.New("rfactor: beam support too short")

	// ErrSchemeInvalid indicates an averaging scheme with more output
	// beams than input beams, an out-of-range group label, or an
	// empty output group.
	ErrSchemeInvalid = errors.New("rfactor: invalid averaging scheme")

	// ErrGroupTooShort indicates an averaging group whose common
	// support fell below MinBeamSamples.
	ErrGroupTooShort = errors.New("rfactor: averaged group support too short")

	// ErrSchemeMismatch indicates that averaging was skipped but the
	// configured output beam count differs from the input count, or that
	// two prepared sets compared by BeamSetR, BeamGroupR or OptimizeShift
	// hold different numbers of beams.
	ErrSchemeMismatch = errors.New("rfactor: averaging skipped but beam counts differ")

	// ErrSingularSpline indicates a spline collocation system whose
	// factorization failed.
	ErrSingularSpline = errors.New("rfactor: singular spline system")

	// ErrNoOverlap reports a beam pair with fewer than two common
	// samples at the requested shift. Informational.
	ErrNoOverlap = errors.New("rfactor: no overlap between beams")

	// ErrBeamNaN reports that at least one per-beam R is NaN, which
	// propagates NaN into the aggregate. Informational.
	ErrBeamNaN = errors.New("rfactor: per-beam R is NaN")
)

// Optimizer sentinels, re-exported from the search engine.
// ErrRangeTooSmall, ErrSingularParabola and ErrNoFiniteR are fatal; the
// others are informational and appear on ShiftResult.Warning.
var (
	ErrRangeTooSmall    = engine.ErrRangeTooSmall
	ErrAllEvaluated     = engine.ErrAllEvaluated
	ErrOutOfRange       = engine.ErrOutOfRange
	ErrParabolaPoor     = engine.ErrParabolaPoor
	ErrWeakMinimum      = engine.ErrWeakMinimum
	ErrSingularParabola = engine.ErrSingularParabola
	ErrNoFiniteR        = engine.ErrNoFiniteR
)

// Code is the canonical integer error code carried alongside Go errors
// for array-oriented callers.
type Code int

// Canonical error codes.
const (
	CodeOK               Code = 0
	CodeUnknown          Code = -1
	CodeBadGrid          Code = 201
	CodeBeamTooShort     Code = 211
	CodeSchemeInvalid    Code = 220
	CodeGroupTooShort    Code = 221
	CodeSchemeMismatch   Code = 223
	CodeSingularSpline   Code = 230
	CodeNoOverlap        Code = 810
	CodeBeamNaN          Code = 811
	CodeRangeTooSmall    Code = 851
	CodeAllEvaluated     Code = 852
	CodeOutOfRange       Code = 854
	CodeParabolaPoor     Code = 855
	CodeWeakMinimum      Code = 856
	CodeSingularParabola Code = 860
)

var codeTable = []struct {
	err  error
	code Code
}{
	{ErrBeamTooShort, CodeBeamTooShort},
	{ErrSchemeInvalid, CodeSchemeInvalid},
	{ErrGroupTooShort, CodeGroupTooShort},
	{ErrSchemeMismatch, CodeSchemeMismatch},
	{ErrSingularSpline, CodeSingularSpline},
	{ErrNoOverlap, CodeNoOverlap},
	{ErrBeamNaN, CodeBeamNaN},
	{ErrNoFiniteR, CodeBeamNaN},
	{ErrRangeTooSmall, CodeRangeTooSmall},
	{ErrAllEvaluated, CodeAllEvaluated},
	{ErrOutOfRange, CodeOutOfRange},
	{ErrParabolaPoor, CodeParabolaPoor},
	{ErrWeakMinimum, CodeWeakMinimum},
	{ErrSingularParabola, CodeSingularParabola},
	{ErrBadGrid, CodeBadGrid},
	{spline.ErrSingular, CodeSingularSpline},
	{spline.ErrBadInput, CodeBadGrid},
}

// CodeOf maps an error (or a joined warning chain) to its canonical
// code. When several codes apply the first match in taxonomy order
// wins. A nil error maps to CodeOK, an unrecognized error to CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	for _, e := range codeTable {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return CodeUnknown
}
