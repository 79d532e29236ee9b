// Package analysis characterises recorded and live particle runs.
//
//   - [DominantPeriod]: strongest oscillation in a metric series
//   - [Divergence]: separation of two engines started from nearby layouts
//   - [GrowthRate]: exponential rate fitted to a divergence curve
//
// # Sensitivity
//
// Build two engines from the same config, nudge one particle in the twin,
// and step both:
//
//	seps, err := analysis.Divergence(a, b, dt, steps)
//	if analysis.GrowthRate(seps, dt) > 0 {
//	    // nearby layouts diverge
//	}
package analysis
