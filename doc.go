// Package rfactor computes the Pendry R-factor between experimental and
// theoretical low-energy electron diffraction I(E) curves and optimizes
// the inner-potential shift V0r over an integer grid.
//
// The package provides:
//   - A beam preparation pipeline: range limiting, averaging of
//     symmetry-equivalent beams, optional smoothing, natural B-spline
//     interpolation onto a uniform output energy grid with first
//     derivatives, and evaluation of the Pendry Y-function.
//   - Per-beam and beam-set R-factor evaluation at an integer shift of
//     one curve set against the other, with overlap-weighted
//     aggregation and optional grouping by beam type.
//   - A shift optimizer that fits parabolas to the sampled R(s) and
//     falls back to brute-force grid evaluation when the fit is poor.
//
// # Basic usage
//
//	grid := rfactor.UniformGrid(50, 0.5, 401)
//	cfg := &rfactor.Config{V0Imag: 5.0}
//	res, err := rfactor.OptimizeRFactor(exp, theo, grid, cfg, &rfactor.ShiftOptions{
//		Min: -10, Max: 10,
//	})
//	if err != nil {
//		// handle
//	}
//	fmt.Println(res.BestShift, res.BestR)
//
// # Error model
//
// Fatal conditions are returned as errors; per-beam and optimizer
// conditions that still permit a valid result are reported on the
// Warning field of the result. CodeOf maps any error or warning to the
// canonical integer code taxonomy for array-oriented callers.
//
// # Concurrency
//
// A single call executes sequentially unless Config.EnableParallel is
// set, in which case per-beam interpolation and per-beam R evaluation
// fan out across goroutines writing to disjoint rows. Independent
// calls may always run concurrently; the package holds no global
// mutable state.
//
// # References
//
// J.B. Pendry, "Reliability factors for LEED calculations",
// J. Phys. C: Solid State Phys. 13 (1980) 937.
package rfactor
