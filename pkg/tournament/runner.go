// Package tournament schedules engine-vs-engine matches over multiple rounds
// with alternating colors and aggregates the results.
package tournament

import (
	"context"
	"fmt"

	"github.com/herohde/arena/pkg/game"
	"github.com/herohde/arena/pkg/uci"
	"github.com/seekerror/logw"
)

// Runner plays a fixed number of rounds between two engines. Sequential: one
// game at a time, fresh sessions per round.
type Runner struct {
	rounds int
	e1, e2 uci.Descriptor
	tc     game.TimeControl
	opts   []game.Option
}

// Option is a runner creation option.
type Option func(*Runner)

// WithGameOptions forwards options to every game, such as a custom launcher
// or tolerance.
func WithGameOptions(opts ...game.Option) Option {
	return func(r *Runner) {
		r.opts = opts
	}
}

// New creates a tournament of the given number of rounds between the two
// engines. No process is spawned until Start.
func New(rounds int, e1, e2 uci.Descriptor, tc game.TimeControl, opts ...Option) *Runner {
	r := &Runner{
		rounds: rounds,
		e1:     e1,
		e2:     e2,
		tc:     tc,
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// Run plays a tournament. Convenience function. Cancelling ctx aborts the
// current game and the remaining rounds.
func Run(ctx context.Context, rounds int, e1, e2 uci.Descriptor, tc game.TimeControl, opts ...Option) Result {
	return New(rounds, e1, e2, tc, opts...).Start(ctx)
}

// Result aggregates the games of a tournament. Tallies are by engine name,
// not color. Aborted rounds are present in Games but counted only in Aborted.
type Result struct {
	// Engine1 and Engine2 are the display names of the participants.
	Engine1, Engine2 string
	// Games holds one result per started round, in order.
	Games []game.Result

	Engine1Wins, Engine2Wins, Draws, Aborted int
}

// Rounds returns the number of games played, including aborted ones.
func (r Result) Rounds() int {
	return len(r.Games)
}

func (r Result) String() string {
	return fmt.Sprintf("%v %v-%v %v (draws=%v, aborted=%v, rounds=%v)",
		r.Engine1, r.Engine1Wins, r.Engine2Wins, r.Engine2, r.Draws, r.Aborted, len(r.Games))
}

func (r *Result) tally(res game.Result) {
	switch res.Outcome {
	case game.WhiteWins:
		r.award(res.White)
	case game.BlackWins:
		r.award(res.Black)
	case game.Draw:
		r.Draws++
	default:
		r.Aborted++
	}
}

func (r *Result) award(name string) {
	if name == r.Engine1 {
		r.Engine1Wins++
	} else {
		r.Engine2Wins++
	}
}

// Start plays all rounds sequentially and returns the aggregate result.
// Engine1 takes white in even rounds (0-indexed) and black in odd ones. Each
// round constructs a fresh game with fresh sessions. Cancellation aborts the
// tournament; completed rounds are retained in the result.
func (r *Runner) Start(ctx context.Context) Result {
	ret := Result{Engine1: r.e1.Name, Engine2: r.e2.Name}

	logw.Infof(ctx, "Tournament %v vs %v: %v rounds, %v", r.e1.Name, r.e2.Name, r.rounds, r.tc)

	for i := 0; i < r.rounds; i++ {
		white, black := r.e1, r.e2
		if i%2 == 1 {
			white, black = black, white
		}

		logw.Infof(ctx, "Round %v/%v: %v (white) vs %v (black)", i+1, r.rounds, white.Name, black.Name)

		res := game.New(white, black, r.tc, r.opts...).Play(ctx)
		ret.Games = append(ret.Games, res)
		ret.tally(res)

		logw.Infof(ctx, "Round %v/%v: %v", i+1, r.rounds, res)

		if res.Outcome == game.Aborted && res.Reason == game.Cancelled {
			logw.Infof(ctx, "Tournament cancelled after %v rounds", len(ret.Games))
			break
		}
	}

	logw.Infof(ctx, "Tournament complete: %v", ret)
	return ret
}
