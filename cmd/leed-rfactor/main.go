package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	rfactor "github.com/tphakala/go-leed-rfactor"
)

func main() {
	var (
		expPath  = flag.String("exp", "", "Experimental beam table (CSV)")
		theoPath = flag.String("theo", "", "Theoretical beam table (CSV)")
		v0i      = flag.Float64("v0i", defaultV0Imag, "Imaginary inner potential in eV")
		step     = flag.Float64("step", defaultEnergyStep, "Output energy grid step in eV")
		emin     = flag.Float64("emin", 0, "Lower bound of the comparison range in eV (0 = auto)")
		emax     = flag.Float64("emax", 0, "Upper bound of the comparison range in eV (0 = auto)")
		vRange   = flag.Float64("range", defaultShiftRange, "Half-range of the inner potential shift in eV")
		brute    = flag.Bool("brute", false, "Evaluate every shift instead of the guided search")
		parallel = flag.Bool("parallel", false, "Evaluate beams concurrently")
		demo     = flag.Bool("demo", false, "Run a demonstration on synthetic curves")
	)
	flag.Parse()

	if *demo {
		runDemo()
		return
	}
	if *expPath == "" || *theoPath == "" {
		log.Fatal("both -exp and -theo are required (or use -demo)")
	}

	exp, err := readBeamTable(*expPath)
	if err != nil {
		log.Fatalf("Failed to read experimental curves: %v", err)
	}
	theo, err := readBeamTable(*theoPath)
	if err != nil {
		log.Fatalf("Failed to read theoretical curves: %v", err)
	}
	fmt.Printf("Experimental: %d beams on [%g, %g] eV\n",
		exp.NBeams(), exp.Energies[0], exp.Energies[len(exp.Energies)-1])
	fmt.Printf("Theoretical:  %d beams on [%g, %g] eV\n",
		theo.NBeams(), theo.Energies[0], theo.Energies[len(theo.Energies)-1])

	out, err := outputGrid(exp, theo, *emin, *emax, *step)
	if err != nil {
		log.Fatalf("Failed to build output grid: %v", err)
	}

	cfg := &rfactor.Config{V0Imag: *v0i, EnableParallel: *parallel}
	shiftSteps := int(math.Round(*vRange / *step))
	res, err := rfactor.OptimizeRFactor(exp, theo, out, cfg, &rfactor.ShiftOptions{
		Min:   -shiftSteps,
		Max:   shiftSteps,
		Brute: *brute,
	})
	if err != nil {
		log.Fatalf("Optimization failed: %v", err)
	}

	report(res, *step)
}

// outputGrid builds the uniform comparison grid, defaulting to the
// common energy range of the two tables.
func outputGrid(exp, theo *rfactor.BeamSet, emin, emax, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g", step)
	}
	if emin == 0 {
		emin = math.Max(exp.Energies[0], theo.Energies[0])
	}
	if emax == 0 {
		emax = math.Min(exp.Energies[len(exp.Energies)-1], theo.Energies[len(theo.Energies)-1])
	}
	n := int(math.Floor((emax-emin)/step)) + 1
	if n < 2 {
		return nil, fmt.Errorf("range [%g, %g] eV holds fewer than 2 grid points", emin, emax)
	}
	return rfactor.UniformGrid(emin, step, n), nil
}

func report(res *rfactor.ShiftResult, step float64) {
	fmt.Printf("\nPer-beam results at the optimal shift:\n")
	for b, br := range res.Beams {
		if br.Overlap == 0 {
			fmt.Printf("  beam %2d: no overlap\n", b+1)
			continue
		}
		fmt.Printf("  beam %2d: R = %.4f (%d samples)\n", b+1, br.R, br.Overlap)
	}

	fmt.Printf("\nPendry R-factor: %.4f\n", res.BestR)
	fmt.Printf("Inner potential shift: %+.2f eV (interpolated %+.3f eV)\n",
		float64(res.BestShift)*step, res.ShiftReal*step)
	fmt.Printf("Overlap: %d samples, %d shift evaluations\n", res.TotalOverlap, res.NEval)
	if res.Warning != nil {
		fmt.Printf("Warning: %v (code %d)\n", res.Warning, rfactor.CodeOf(res.Warning))
	}
}

func runDemo() {
	fmt.Println("=== LEED R-factor Demo ===")
	fmt.Printf("Synthetic curves displaced by %.1f eV\n\n", demoOffset)

	in := rfactor.UniformGrid(demoGridStart, demoGridStep, demoGridPoints)
	curve := func(e float64) float64 {
		u1 := (e - 90) / 12
		u2 := (e - 130) / 8
		return 1 + 5/(1+u1*u1) + 3/(1+u2*u2)
	}

	exp := syntheticSet(in, curve)
	theo := syntheticSet(in, func(e float64) float64 { return curve(e + demoOffset) })

	nOut := int((demoOutEnd-demoOutStart)/defaultEnergyStep) + 1
	out := rfactor.UniformGrid(demoOutStart, defaultEnergyStep, nOut)

	at0, err := rfactor.RFactor(exp, theo, out, nil)
	if err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
	fmt.Printf("R at zero shift: %.4f\n", at0.RTotal)

	shiftSteps := int(defaultShiftRange / defaultEnergyStep)
	res, err := rfactor.OptimizeRFactor(exp, theo, out, nil, &rfactor.ShiftOptions{
		Min: -shiftSteps,
		Max: shiftSteps,
	})
	if err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
	fmt.Printf("R at optimal shift: %.6f\n", res.BestR)
	fmt.Printf("Recovered shift: %+.2f eV (true %+.2f eV)\n",
		float64(res.BestShift)*defaultEnergyStep, demoOffset)
	fmt.Printf("Shift evaluations: %d of %d\n", res.NEval, 2*shiftSteps+1)

	fmt.Println("\n=== Demo Complete ===")
}

func syntheticSet(es []float64, f func(float64) float64) *rfactor.BeamSet {
	intensity := make([]float64, len(es))
	for i, e := range es {
		intensity[i] = f(e)
	}
	return &rfactor.BeamSet{
		Energies:  es,
		Intensity: [][]float64{intensity},
		Spans:     []rfactor.Span{{Start: 0, Len: len(es)}},
	}
}
