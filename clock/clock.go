// Package clock provides an injectable time source so the handshake and
// session code can be tested with a frozen clock instead of wall time.
package clock

import "time"

// Clock abstracts the passage of time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the real, wall-clock Clock.
var System Clock = systemClock{}

// Frozen is a Clock that always returns the same instant. Useful for
// deterministic tests of msg_id generation.
type Frozen struct {
	At time.Time
}

// Now implements Clock.
func (f Frozen) Now() time.Time { return f.At }
