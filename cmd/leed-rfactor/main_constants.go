package main

// Default output grid and optimizer settings.
const (
	defaultEnergyStep = 0.5
	defaultV0Imag     = 5.0
	defaultShiftRange = 10.0

	// Demo curve parameters.
	demoGridStart  = 20.0
	demoGridStep   = 1.0
	demoGridPoints = 161
	demoOutStart   = 50.0
	demoOutEnd     = 150.0
	demoOffset     = 2.5
)
