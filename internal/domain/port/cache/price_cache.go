package cache

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PriceCache keeps the latest price per market outside the process so a
// restart resumes from where the market was
type PriceCache interface {
	// SetPrice stores a market's latest price
	SetPrice(ctx context.Context, market entity.MarketID, price decimal.Decimal) error

	// GetPrice returns a market's cached price. found is false when nothing was cached.
	GetPrice(ctx context.Context, market entity.MarketID) (price decimal.Decimal, found bool, err error)
}
