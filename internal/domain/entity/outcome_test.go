package entity

import (
	"testing"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeAndColorOfEveryDigit(t *testing.T) {
	expected := map[int]struct {
		size  Size
		color Color
	}{
		0: {SizeSmall, ColorRedViolet},
		1: {SizeSmall, ColorGreen},
		2: {SizeSmall, ColorRed},
		3: {SizeSmall, ColorGreen},
		4: {SizeSmall, ColorRed},
		5: {SizeBig, ColorGreenViolet},
		6: {SizeBig, ColorRed},
		7: {SizeBig, ColorGreen},
		8: {SizeBig, ColorRed},
		9: {SizeBig, ColorGreen},
	}

	for n := 0; n <= 9; n++ {
		o, err := NewRoundOutcome("r", Mode30s, n, false, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, expected[n].size, o.Size, "size of %d", n)
		assert.Equal(t, expected[n].color, o.Color, "color of %d", n)
		assert.Equal(t, SizeOf(n), o.Size)
		assert.Equal(t, ColorOf(n), o.Color)
	}
}

func TestNewRoundOutcome_Invalid(t *testing.T) {
	_, err := NewRoundOutcome("r", Mode30s, 10, false, time.Time{})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	_, err = NewRoundOutcome("r", Mode30s, -1, false, time.Time{})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	_, err = NewRoundOutcome("", Mode30s, 1, false, time.Time{})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestGameModes(t *testing.T) {
	testCases := []struct {
		mode     GameMode
		seconds  int64
		prefix   string
		parseArg string
	}{
		{Mode30s, 30, "1", "30S"},
		{Mode1Min, 60, "2", "1min"},
		{Mode3Min, 180, "3", "3Min"},
		{Mode5Min, 300, "5", " 5MIN "},
	}

	for _, tc := range testCases {
		t.Run(string(tc.mode), func(t *testing.T) {
			m, err := ParseGameMode(tc.parseArg)
			require.NoError(t, err)
			assert.Equal(t, tc.mode, m)
			assert.Equal(t, tc.seconds, m.Seconds())
			assert.Equal(t, tc.prefix, m.Prefix())
			assert.True(t, m.Valid())
		})
	}

	_, err := ParseGameMode("10Min")
	assert.ErrorIs(t, err, errs.ErrInvalidGameMode)
	assert.False(t, GameMode("x").Valid())
}
