package clock

import (
	"strconv"
	"strings"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// DefaultLockWindow is how long before a round ends placement closes
const DefaultLockWindow = 5 * time.Second

// Snapshot is the state of a mode's open round at one instant
type Snapshot struct {
	Mode             entity.GameMode
	RoundID          string
	Index            int64
	SecondsRemaining int64
	StartsAt         time.Time
	EndsAt           time.Time
	Locked           bool
}

// Clock maps wall time onto round indices. It holds no state besides the lock window.
type Clock struct {
	lockWindow time.Duration
}

// New creates a clock; a non-positive window uses DefaultLockWindow
func New(lockWindow time.Duration) *Clock {
	if lockWindow <= 0 {
		lockWindow = DefaultLockWindow
	}
	return &Clock{lockWindow: lockWindow}
}

// Index is floor(epochSeconds / D)
func Index(mode entity.GameMode, now time.Time) int64 {
	return now.Unix() / mode.Seconds()
}

// RoundID builds the id of the round at index: the UTC date the round
// starts on, the mode prefix and the index
func RoundID(mode entity.GameMode, index int64) string {
	start := time.Unix(index*mode.Seconds(), 0).UTC()
	return start.Format("20060102") + mode.Prefix() + strconv.FormatInt(index, 10)
}

// ParseIndex recovers the index from a RoundID of the mode
func ParseIndex(mode entity.GameMode, roundID string) (int64, bool) {
	const dateLen = len("20060102")
	if len(roundID) <= dateLen || !strings.HasPrefix(roundID[dateLen:], mode.Prefix()) {
		return 0, false
	}
	index, err := strconv.ParseInt(roundID[dateLen+len(mode.Prefix()):], 10, 64)
	if err != nil {
		return 0, false
	}
	return index, true
}

// Snapshot describes the round open at now
func (c *Clock) Snapshot(mode entity.GameMode, now time.Time) Snapshot {
	d := mode.Seconds()
	epoch := now.Unix()
	index := epoch / d
	remaining := d - epoch%d
	start := time.Unix(index*d, 0).UTC()

	return Snapshot{
		Mode:             mode,
		RoundID:          RoundID(mode, index),
		Index:            index,
		SecondsRemaining: remaining,
		StartsAt:         start,
		EndsAt:           start.Add(mode.Duration()),
		Locked:           time.Duration(remaining)*time.Second <= c.lockWindow,
	}
}

// LockWindow returns the configured lock window
func (c *Clock) LockWindow() time.Duration {
	return c.lockWindow
}
