package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// GameMode identifies one of the fixed-duration round series
type GameMode string

// Game modes
const (
	Mode30s  GameMode = "30s"
	Mode1Min GameMode = "1Min"
	Mode3Min GameMode = "3Min"
	Mode5Min GameMode = "5Min"
)

type modeSpec struct {
	duration time.Duration
	prefix   string
}

var modeSpecs = map[GameMode]modeSpec{
	Mode30s:  {duration: 30 * time.Second, prefix: "1"},
	Mode1Min: {duration: 60 * time.Second, prefix: "2"},
	Mode3Min: {duration: 180 * time.Second, prefix: "3"},
	Mode5Min: {duration: 300 * time.Second, prefix: "5"},
}

// AllModes returns every game mode, shortest first
func AllModes() []GameMode {
	return []GameMode{Mode30s, Mode1Min, Mode3Min, Mode5Min}
}

// ParseGameMode resolves a mode name case-insensitively
func ParseGameMode(s string) (GameMode, error) {
	for _, m := range AllModes() {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errs.ErrInvalidGameMode, s)
}

// Valid reports whether m is a known mode
func (m GameMode) Valid() bool {
	_, ok := modeSpecs[m]
	return ok
}

// Duration is the length of one round
func (m GameMode) Duration() time.Duration {
	return modeSpecs[m].duration
}

// Seconds is the round length in whole seconds
func (m GameMode) Seconds() int64 {
	return int64(m.Duration() / time.Second)
}

// Prefix is the digit that distinguishes this mode's round ids
func (m GameMode) Prefix() string {
	return modeSpecs[m].prefix
}

func (m GameMode) String() string {
	return string(m)
}
