package forces

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/san-kum/plife/internal/dynamo"
)

// Matrix is a KxK table of interaction coefficients. At(a, b) is the force
// felt by a particle of colour a due to a particle of colour b. It is never
// symmetrised and has no mutating methods.
type Matrix struct {
	k    int
	data []float64
}

// FromRows copies rows into a new Matrix. Rows must form a non-empty square
// of finite values.
func FromRows(rows [][]float64) (*Matrix, error) {
	k := len(rows)
	if k == 0 {
		return nil, dynamo.NewConfigError("matrix", k, "must have at least one row")
	}
	m := &Matrix{k: k, data: make([]float64, k*k)}
	for a, row := range rows {
		if len(row) != k {
			return nil, dynamo.NewConfigError("matrix", fmt.Sprintf("row %d", a), fmt.Sprintf("has %d entries, want %d", len(row), k))
		}
		for b, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, dynamo.NewConfigError("matrix", fmt.Sprintf("[%d][%d]", a, b), "must be finite")
			}
			m.data[a*k+b] = v
		}
	}
	return m, nil
}

// BuildRandom fills every entry independently and uniformly from [low, high].
func BuildRandom(rng *rand.Rand, k int, low, high float64) (*Matrix, error) {
	if k <= 0 {
		return nil, dynamo.NewConfigError("colors", k, "must be positive")
	}
	if low > high || math.IsNaN(low) || math.IsNaN(high) {
		return nil, dynamo.NewConfigError("matrix_range", fmt.Sprintf("[%g, %g]", low, high), "low must not exceed high")
	}
	m := &Matrix{k: k, data: make([]float64, k*k)}
	for i := range m.data {
		m.data[i] = low + rng.Float64()*(high-low)
	}
	return m, nil
}

// Size returns K.
func (m *Matrix) Size() int { return m.k }

// At returns the coefficient for self colour a and other colour b.
func (m *Matrix) At(a, b int) float64 {
	return m.data[a*m.k+b]
}

// Rows returns a copy of the table in row-major form.
func (m *Matrix) Rows() [][]float64 {
	rows := make([][]float64, m.k)
	for a := range rows {
		rows[a] = make([]float64, m.k)
		copy(rows[a], m.data[a*m.k:(a+1)*m.k])
	}
	return rows
}

// IsSymmetric reports whether At(a, b) == At(b, a) for every pair.
func (m *Matrix) IsSymmetric() bool {
	for a := 0; a < m.k; a++ {
		for b := a + 1; b < m.k; b++ {
			if m.At(a, b) != m.At(b, a) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) String() string {
	var b strings.Builder
	for a := 0; a < m.k; a++ {
		for c := 0; c < m.k; c++ {
			if c > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%+6.3f", m.At(a, c))
		}
		b.WriteString("\n")
	}
	return b.String()
}
