// Package dynamo provides the core primitives shared by the particle life
// simulation packages.
//
// The package defines the types every other layer agrees on:
//
//   - [Particle]: position, velocity and colour class of a single point
//   - [Metric]: scalar observer of the particle slice over time
//   - [Observer]: per-tick callback used by renderers and recorders
//   - [ConfigError]: startup validation failure, wraps [ErrConfig]
//
// # Example
//
//	m, _ := forces.BuildPreset(3, 4)
//	set, _ := particles.InitializeRandom(rng, particles.Layout{
//	    Count: 500, Colors: 4, Width: 800, Height: 600,
//	})
//	eng, _ := physics.New(set, m, physics.DefaultParams(800, 600))
//	for {
//	    _ = eng.Step(dt)
//	    draw(set.Particles())
//	}
//
// # Thread Safety
//
// Nothing in the simulation is safe for concurrent use. A particle set has
// exactly one writer, the engine that steps it.
package dynamo
