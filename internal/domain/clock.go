package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps the creation time of built grids. Tests freeze it with
// SetClock so that grids built in separate runs compare equal.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the clock used to stamp grids; nil restores real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// stamp is the current time as stored in grid metadata: UTC, whole seconds.
func stamp() time.Time {
	return clock.Now().UTC().Truncate(time.Second)
}
