package outcome

import (
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coremocks "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Generate(t *testing.T) {
	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(fixedTime).Maybe()

	t.Run("Random draw", func(t *testing.T) {
		random := coremocks.NewMockRandomSource(t)
		random.EXPECT().Intn(10).Return(7).Once()

		o, err := NewGenerator(random, mockTime).Generate(entity.Mode30s, "2024010110", nil)
		require.NoError(t, err)
		assert.Equal(t, 7, o.Number)
		assert.Equal(t, entity.ColorGreen, o.Color)
		assert.Equal(t, entity.SizeBig, o.Size)
		assert.False(t, o.Forced)
		assert.Equal(t, fixedTime, o.DrawnAt)
	})

	t.Run("Forced value skips the random source", func(t *testing.T) {
		random := coremocks.NewMockRandomSource(t)
		forced := 0

		o, err := NewGenerator(random, mockTime).Generate(entity.Mode30s, "2024010110", &forced)
		require.NoError(t, err)
		assert.Equal(t, 0, o.Number)
		assert.Equal(t, entity.ColorRedViolet, o.Color)
		assert.True(t, o.Forced)
		random.AssertNotCalled(t, "Intn", 10)
	})

	t.Run("Out of range forced value is ignored", func(t *testing.T) {
		random := coremocks.NewMockRandomSource(t)
		random.EXPECT().Intn(10).Return(4).Once()
		forced := 12

		o, err := NewGenerator(random, mockTime).Generate(entity.Mode30s, "r", &forced)
		require.NoError(t, err)
		assert.Equal(t, 4, o.Number)
		assert.False(t, o.Forced)
	})
}
