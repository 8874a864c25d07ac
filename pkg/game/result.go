package game

import (
	"fmt"

	"github.com/notnil/chess"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Outcome represents the result of a game.
type Outcome uint8

const (
	Undecided Outcome = iota
	WhiteWins
	BlackWins
	Draw
	// Aborted marks a game ended by infrastructure failure. It credits no
	// win or loss and is excluded from tournament tallies.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	case Aborted:
		return "aborted"
	default:
		return "*"
	}
}

// Loss returns the losing outcome for the given side.
func Loss(c chess.Color) Outcome {
	if c == chess.White {
		return BlackWins
	}
	return WhiteWins
}

// Reason explains how the outcome was reached.
type Reason uint8

const (
	None Reason = iota
	Checkmate
	Stalemate
	Repetition3
	NoProgress
	InsufficientMaterial

	// Forfeits. The culprit side loses.

	IllegalMove
	NoMove
	Timeout
	EngineError

	// Infrastructure aborts. No side is credited.

	LaunchFailed
	HandshakeFailed
	InvalidPosition
	Cancelled
)

func (r Reason) String() string {
	switch r {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Repetition3:
		return "threefold repetition"
	case NoProgress:
		return "fifty-move rule"
	case InsufficientMaterial:
		return "insufficient material"
	case IllegalMove:
		return "illegal move"
	case NoMove:
		return "no move"
	case Timeout:
		return "timeout"
	case EngineError:
		return "engine error"
	case LaunchFailed:
		return "launch failed"
	case HandshakeFailed:
		return "handshake failed"
	case InvalidPosition:
		return "invalid position"
	case Cancelled:
		return "cancelled"
	default:
		return "none"
	}
}

// Result is the record of a single game.
type Result struct {
	// White and Black are the engine display names by color.
	White, Black string
	// Moves is the complete game in UCI notation. Replaying it from the
	// starting position reproduces the arbiter's final board.
	Moves []string

	Outcome Outcome
	Reason  Reason
	// Culprit is the side at fault for forfeits and aborts, if any.
	Culprit lang.Optional[chess.Color]
}

// Winner returns the winning engine name, if the game was decided.
func (r Result) Winner() (string, bool) {
	switch r.Outcome {
	case WhiteWins:
		return r.White, true
	case BlackWins:
		return r.Black, true
	default:
		return "", false
	}
}

func (r Result) String() string {
	return fmt.Sprintf("%v vs %v: %v (%v, %v plies)", r.White, r.Black, r.Outcome, r.Reason, len(r.Moves))
}
