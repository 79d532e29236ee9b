// Package physics advances a particle life system by one tick.
//
// [Engine.Step] runs a dense all-pairs sweep. For particle i, in index order:
//
//   - integrate: pos += vel*dt using last tick's velocity
//   - drag: per axis, vel -= vel*drag*dt, clamping positive overshoot to 0
//   - wrap: fold the position onto the torus with [Wrap]
//   - forces: vel += [PairForce](i, j)*dt for every j != i
//
// With the [Sequential] strategy the sweep writes in place, so the result
// depends on index order and momentum is not conserved. [Buffered] reads the
// other particles from a start-of-tick copy instead.
//
// # Coincident particles
//
// A pair at distance zero has no direction. Such ordered pairs contribute
// nothing and are counted in [Engine.Coincident].
package physics
