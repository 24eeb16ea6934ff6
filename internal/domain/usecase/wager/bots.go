package wager

import (
	"strconv"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/google/uuid"
)

var (
	botNames  = []string{"Sultan", "Dragon", "Lucky", "Winner"}
	botStakes = []int64{100000, 5000000, 10000000, 50000000} // 1000.00 to 500000.00
)

// BotGenerator fabricates synthetic wagers that make the operator view look busy
type BotGenerator struct {
	random       coreport.RandomSource
	timeProvider coreport.TimeProvider
}

// NewBotGenerator creates a bot wager generator
func NewBotGenerator(random coreport.RandomSource, timeProvider coreport.TimeProvider) *BotGenerator {
	return &BotGenerator{random: random, timeProvider: timeProvider}
}

// Generate returns one bot wager on a random digit of the given round
func (g *BotGenerator) Generate(mode entity.GameMode, roundID string) *entity.Wager {
	name := botNames[g.random.Intn(len(botNames))] + strconv.Itoa(g.random.Intn(99))
	return &entity.Wager{
		ID:         "bot-" + uuid.NewString(),
		Username:   name,
		RoundID:    roundID,
		Mode:       mode,
		Selection:  entity.DigitSelection(g.random.Intn(10)),
		Stake:      botStakes[g.random.Intn(len(botStakes))],
		Multiplier: 1,
		LedgerMode: entity.LedgerReal,
		Status:     entity.WagerPending,
		PlacedAt:   g.timeProvider.Now(),
		IsBot:      true,
	}
}
