package game

import (
	"fmt"
	"time"

	"github.com/herohde/arena/pkg/uci"
	"github.com/notnil/chess"
	"github.com/seekerror/stdlib/pkg/lang"
)

// DefaultTolerance is the slack granted beyond the per-move budget before an
// engine is forfeited on time.
const DefaultTolerance = 100 * time.Millisecond

// Clock is a classic two-sided time control.
type Clock struct {
	// White and Black are the initial times per side.
	White, Black time.Duration
	// WhiteInc and BlackInc are added after each completed move.
	WhiteInc, BlackInc time.Duration
}

func (c Clock) String() string {
	return fmt.Sprintf("%.1f+%.1f<>%.1f+%.1f", c.White.Seconds(), c.WhiteInc.Seconds(), c.Black.Seconds(), c.BlackInc.Seconds())
}

// TimeControl is the time allocation policy for a game. Exactly one mode is
// active: fixed time per move, a classic clock, or infinite.
type TimeControl struct {
	// PerMove is a fixed budget per move, if set.
	PerMove lang.Optional[time.Duration]
	// Clock is a classic time control, if set.
	Clock lang.Optional[Clock]
	// Ceiling bounds an infinite search before the arbiter sends stop. Only
	// meaningful when neither PerMove nor Clock is set.
	Ceiling lang.Optional[time.Duration]
}

// MoveTime allocates a fixed duration per move: "go movetime N".
func MoveTime(d time.Duration) TimeControl {
	return TimeControl{PerMove: lang.Some(d)}
}

// WithClock plays under a classic clock: "go wtime W btime B [winc I1 binc I2]".
func WithClock(c Clock) TimeControl {
	return TimeControl{Clock: lang.Some(c)}
}

// Infinite searches until stopped. The arbiter sends stop after the ceiling,
// if positive; without one this policy is intended for manual use only.
func Infinite(ceiling time.Duration) TimeControl {
	tc := TimeControl{}
	if ceiling > 0 {
		tc.Ceiling = lang.Some(ceiling)
	}
	return tc
}

func (tc TimeControl) String() string {
	if d, ok := tc.PerMove.V(); ok {
		return fmt.Sprintf("movetime %v", d)
	}
	if c, ok := tc.Clock.V(); ok {
		return c.String()
	}
	return "infinite"
}

// clockState tracks remaining time per side across a game under a classic
// clock. Nil when the time control has no clock.
type clockState struct {
	white, black time.Duration
	winc, binc   time.Duration
}

func (tc TimeControl) newClockState() *clockState {
	c, ok := tc.Clock.V()
	if !ok {
		return nil
	}
	return &clockState{white: c.White, black: c.Black, winc: c.WhiteInc, binc: c.BlackInc}
}

func (cs *clockState) remaining(turn chess.Color) time.Duration {
	if turn == chess.White {
		return cs.white
	}
	return cs.black
}

// charge decrements the moving side's clock by the elapsed wall time and adds
// the increment. Returns false if the flag fell.
func (cs *clockState) charge(turn chess.Color, elapsed time.Duration) bool {
	if turn == chess.White {
		cs.white -= elapsed
		if cs.white < 0 {
			return false
		}
		cs.white += cs.winc
		return true
	}
	cs.black -= elapsed
	if cs.black < 0 {
		return false
	}
	cs.black += cs.binc
	return true
}

// limits returns the go limits for the next move under this policy.
func (tc TimeControl) limits(cs *clockState) uci.Limits {
	var ret uci.Limits
	if d, ok := tc.PerMove.V(); ok {
		ret.MoveTime = lang.Some(d)
		return ret
	}
	if _, ok := tc.Clock.V(); ok {
		ret.WTime = lang.Some(cs.white)
		ret.BTime = lang.Some(cs.black)
		if cs.winc > 0 {
			ret.WInc = lang.Some(cs.winc)
		}
		if cs.binc > 0 {
			ret.BInc = lang.Some(cs.binc)
		}
		return ret
	}
	ret.Infinite = true
	return ret
}

// budget returns the wall-clock allowance for the side to move, if bounded.
// The arbiter adds its tolerance on top before enforcing a deadline.
func (tc TimeControl) budget(turn chess.Color, cs *clockState) lang.Optional[time.Duration] {
	if d, ok := tc.PerMove.V(); ok {
		return lang.Some(d)
	}
	if _, ok := tc.Clock.V(); ok {
		return lang.Some(cs.remaining(turn))
	}
	if d, ok := tc.Ceiling.V(); ok {
		return lang.Some(d)
	}
	return lang.Optional[time.Duration]{}
}
