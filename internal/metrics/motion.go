package metrics

import (
	"github.com/san-kum/plife/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// KineticEnergy is the mean of |v|^2/2 over the population at the last
// observation. Particles have unit mass.
type KineticEnergy struct {
	value float64
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(ps []dynamo.Particle, t float64) {
	if len(ps) == 0 {
		k.value = 0
		return
	}
	var sum float64
	for _, p := range ps {
		sum += 0.5 * r2.Dot(p.Vel, p.Vel)
	}
	k.value = sum / float64(len(ps))
}

func (k *KineticEnergy) Value() float64 { return k.value }
func (k *KineticEnergy) Reset()         { k.value = 0 }

// MeanSpeed is the mean and spread of |v| at the last observation.
type MeanSpeed struct {
	mean, std float64
	speeds    []float64
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(ps []dynamo.Particle, t float64) {
	if len(ps) == 0 {
		m.mean, m.std = 0, 0
		return
	}
	m.speeds = m.speeds[:0]
	for _, p := range ps {
		m.speeds = append(m.speeds, p.Speed())
	}
	if len(m.speeds) == 1 {
		m.mean, m.std = m.speeds[0], 0
		return
	}
	m.mean, m.std = stat.MeanStdDev(m.speeds, nil)
}

func (m *MeanSpeed) Value() float64 { return m.mean }

// StdDev is the sample standard deviation of the speeds last observed.
func (m *MeanSpeed) StdDev() float64 { return m.std }

func (m *MeanSpeed) Reset() {
	m.mean, m.std = 0, 0
	m.speeds = m.speeds[:0]
}

// NetMomentum is |sum v| / N. Pair forces are not reciprocal, so this
// drifts away from zero even for a population that starts at rest.
type NetMomentum struct {
	value float64
}

func NewNetMomentum() *NetMomentum { return &NetMomentum{} }

func (n *NetMomentum) Name() string { return "net_momentum" }

func (n *NetMomentum) Observe(ps []dynamo.Particle, t float64) {
	if len(ps) == 0 {
		n.value = 0
		return
	}
	var sum r2.Vec
	for _, p := range ps {
		sum = r2.Add(sum, p.Vel)
	}
	n.value = r2.Norm(sum) / float64(len(ps))
}

func (n *NetMomentum) Value() float64 { return n.value }
func (n *NetMomentum) Reset()         { n.value = 0 }
