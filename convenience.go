package rfactor

import "errors"

// UniformGrid returns n energies starting at e0 with spacing step.
func UniformGrid(e0, step float64, n int) []float64 {
	es := make([]float64, n)
	for i := range es {
		es[i] = e0 + float64(i)*step
	}
	return es
}

// RFactor prepares both curve sets and evaluates the beam-set R-factor
// at zero shift. Preparation warnings from both sets are carried on the
// result.
func RFactor(exp, theo *BeamSet, outEnergies []float64, cfg *Config) (*SetResult, error) {
	pExp, pTheo, err := prepareBoth(exp, theo, outEnergies, cfg)
	if err != nil {
		return nil, err
	}
	res, err := BeamSetR(pExp, pTheo, 0)
	if err != nil {
		return nil, err
	}
	res.Warning = joinWarnings(pExp.Warning, pTheo.Warning, res.Warning)
	return res, nil
}

// OptimizeRFactor prepares both curve sets and optimizes the shift of
// theo against exp over [opt.Min, opt.Max].
func OptimizeRFactor(exp, theo *BeamSet, outEnergies []float64, cfg *Config, opt *ShiftOptions) (*ShiftResult, error) {
	pExp, pTheo, err := prepareBoth(exp, theo, outEnergies, cfg)
	if err != nil {
		return nil, err
	}
	res, err := OptimizeShift(pExp, pTheo, opt)
	if err != nil {
		return nil, err
	}
	res.Warning = joinWarnings(pExp.Warning, pTheo.Warning, res.Warning)
	return res, nil
}

func prepareBoth(exp, theo *BeamSet, outEnergies []float64, cfg *Config) (*Prepared, *Prepared, error) {
	pExp, err := PrepareBeams(exp, outEnergies, cfg)
	if err != nil {
		return nil, nil, err
	}
	pTheo, err := PrepareBeams(theo, outEnergies, cfg)
	if err != nil {
		return nil, nil, err
	}
	return pExp, pTheo, nil
}

func joinWarnings(errs ...error) error {
	return errors.Join(errs...)
}
