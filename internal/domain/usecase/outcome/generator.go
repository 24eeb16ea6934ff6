package outcome

import (
	"fmt"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// Generator derives round outcomes, honoring a forced number when one is given
type Generator struct {
	random       coreport.RandomSource
	timeProvider coreport.TimeProvider
}

// NewGenerator creates a new outcome generator
func NewGenerator(random coreport.RandomSource, timeProvider coreport.TimeProvider) *Generator {
	return &Generator{random: random, timeProvider: timeProvider}
}

// Draw returns a uniform number in [0, 9]
func (g *Generator) Draw() int {
	return g.random.Intn(10)
}

// Generate produces the outcome of roundID. A forced number in [0, 9] is
// used as-is; anything else falls back to a fresh draw.
func (g *Generator) Generate(mode entity.GameMode, roundID string, forced *int) (*entity.RoundOutcome, error) {
	number, isForced := 0, false
	if forced != nil && *forced >= 0 && *forced <= 9 {
		number, isForced = *forced, true
	} else {
		number = g.Draw()
	}

	o, err := entity.NewRoundOutcome(roundID, mode, number, isForced, g.timeProvider.Now())
	if err != nil {
		return nil, fmt.Errorf("generating outcome for %s: %w", roundID, err)
	}
	return o, nil
}
