package random

import (
	"math/rand/v2"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// MathRandom draws numbers from the runtime-seeded math/rand/v2 generator
type MathRandom struct{}

// NewMathRandom creates the default random source
func NewMathRandom() core.RandomSource {
	return &MathRandom{}
}

// Intn returns a uniform integer in [0, n)
func (r *MathRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
