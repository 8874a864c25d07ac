// Package game contains the arbiter: it drives one game between two engine
// sessions, maintains the authoritative board, validates every move
// independently of the engines and adjudicates terminal conditions.
package game

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/herohde/arena/pkg/uci"
	"github.com/notnil/chess"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Session is the per-game engine connection the arbiter drives. Implemented
// by uci.Session; tests substitute pure in-memory doubles.
type Session interface {
	// Name returns the engine display name.
	Name() string
	// RequestBestMove transmits the position and limits and returns the
	// engine's move in UCI notation.
	RequestBestMove(ctx context.Context, pos uci.Position, limits uci.Limits) (string, error)
	// Stop asks the engine to conclude an infinite search.
	Stop(ctx context.Context) error
	// Disconnect shuts the engine down. Idempotent.
	Disconnect(ctx context.Context) error
}

// Launcher creates fresh sessions. Every game must use new sessions so that
// no engine state leaks between games.
type Launcher interface {
	Launch(ctx context.Context, desc uci.Descriptor) (Session, error)
}

// ProcessLauncher spawns engine child processes. The default launcher.
type ProcessLauncher struct{}

func (ProcessLauncher) Launch(ctx context.Context, desc uci.Descriptor) (Session, error) {
	return uci.Spawn(ctx, desc)
}

// Game arbitrates a single game between two engines.
type Game struct {
	white, black uci.Descriptor
	tc           TimeControl

	launcher  Launcher
	tolerance time.Duration
	startFEN  lang.Optional[string]
}

// Option is a game creation option.
type Option func(*Game)

// WithLauncher overrides how engine sessions are created.
func WithLauncher(l Launcher) Option {
	return func(g *Game) {
		g.launcher = l
	}
}

// WithStartFEN starts the game from the given position instead of the
// standard one.
func WithStartFEN(fen string) Option {
	return func(g *Game) {
		g.startFEN = lang.Some(fen)
	}
}

// WithTolerance overrides the per-move deadline tolerance.
func WithTolerance(d time.Duration) Option {
	return func(g *Game) {
		g.tolerance = d
	}
}

// New creates a game between the two engines with the given time control.
// White and black play as given; color rotation is the tournament runner's
// concern. No process is spawned until Play.
func New(white, black uci.Descriptor, tc TimeControl, opts ...Option) *Game {
	g := &Game{
		white:     white,
		black:     black,
		tc:        tc,
		launcher:  ProcessLauncher{},
		tolerance: DefaultTolerance,
	}
	for _, fn := range opts {
		fn(g)
	}
	return g
}

// Run plays a single game. Convenience function. Cancelling ctx aborts it.
func Run(ctx context.Context, white, black uci.Descriptor, tc TimeControl, opts ...Option) Result {
	return New(white, black, tc, opts...).Play(ctx)
}

// Play conducts the game to completion and returns its result. Fresh sessions
// are spawned for both sides and disconnected on every exit path. Cancelling
// ctx aborts the game; cancellation is observed at least once per move.
func (g *Game) Play(ctx context.Context) Result {
	ret := Result{White: g.white.Name, Black: g.black.Name}

	logw.Infof(ctx, "Game %v (white) vs %v (black): %v", g.white.Name, g.black.Name, g.tc)

	board, err := g.newBoard()
	if err != nil {
		logw.Errorf(ctx, "Invalid start position: %v", err)
		ret.Outcome, ret.Reason = Aborted, InvalidPosition
		return ret
	}

	white, err := g.launcher.Launch(ctx, g.white)
	if err != nil {
		return g.abort(ctx, ret, chess.White, err)
	}
	defer white.Disconnect(ctx)

	black, err := g.launcher.Launch(ctx, g.black)
	if err != nil {
		return g.abort(ctx, ret, chess.Black, err)
	}
	defer black.Disconnect(ctx)

	clocks := g.tc.newClockState()

	for {
		if ctx.Err() != nil {
			logw.Infof(ctx, "Game %v vs %v cancelled", g.white.Name, g.black.Name)
			ret.Outcome, ret.Reason = Aborted, Cancelled
			return ret
		}

		// (1) Terminal conditions are adjudicated before any engine is
		// consulted, so a mated or stalemated engine is never asked to move.

		if outcome, reason, over := adjudicate(board); over {
			ret.Outcome, ret.Reason = outcome, reason
			logw.Infof(ctx, "Game over: %v", ret)
			return ret
		}

		turn := board.Position().Turn()
		session := white
		if turn == chess.Black {
			session = black
		}

		// (2) Ask the side to move for its move.

		mv, elapsed, err := g.requestMove(ctx, session, turn, ret.Moves, clocks)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				ret.Outcome, ret.Reason = Aborted, Cancelled
				return ret
			}
			logw.Warningf(ctx, "Engine %v failed to move: %v", session.Name(), err)
			ret.Outcome, ret.Reason, ret.Culprit = Loss(turn), forfeitReason(err), lang.Some(turn)
			return ret
		}

		if clocks != nil && !clocks.charge(turn, elapsed) {
			logw.Warningf(ctx, "Engine %v exhausted its clock", session.Name())
			ret.Outcome, ret.Reason, ret.Culprit = Loss(turn), Timeout, lang.Some(turn)
			return ret
		}

		// (3) Validate and apply. The engine's claim is never trusted: the
		// move must decode against the arbiter's own board.

		decoded, err := ParseMove(mv, board.Position())
		if err != nil {
			logw.Warningf(ctx, "Engine %v played %q: %v", session.Name(), mv, err)
			ret.Outcome, ret.Reason, ret.Culprit = Loss(turn), IllegalMove, lang.Some(turn)
			return ret
		}
		if err := board.Move(decoded); err != nil {
			logw.Warningf(ctx, "Engine %v move %q rejected: %v", session.Name(), mv, err)
			ret.Outcome, ret.Reason, ret.Culprit = Loss(turn), IllegalMove, lang.Some(turn)
			return ret
		}
		ret.Moves = append(ret.Moves, mv)

		logw.Debugf(ctx, "Move %v: %v (%v)", len(ret.Moves), mv, elapsed)

		// (4) Declare the draws the position now allows. The engines have no
		// say: threefold repetition and the fifty-move rule are called by the
		// arbiter as soon as they trigger.

		for _, m := range board.EligibleDraws() {
			switch m {
			case chess.ThreefoldRepetition, chess.FiftyMoveRule:
				_ = board.Draw(m)
			}
		}
	}
}

func (g *Game) newBoard() (*chess.Game, error) {
	if fen, ok := g.startFEN.V(); ok {
		opt, err := chess.FEN(fen)
		if err != nil {
			return nil, err
		}
		return chess.NewGame(opt), nil
	}
	return chess.NewGame(), nil
}

// requestMove transmits position and go to the session and awaits bestmove,
// enforcing the time control budget plus tolerance as a hard deadline.
func (g *Game) requestMove(ctx context.Context, s Session, turn chess.Color, moves []string, clocks *clockState) (string, time.Duration, error) {
	pos := uci.Position{FEN: g.startFEN, Moves: moves}
	limits := g.tc.limits(clocks)

	wctx := ctx
	if budget, ok := g.tc.budget(turn, clocks).V(); ok {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, budget+g.tolerance)
		defer cancel()
	}
	if ceiling, ok := g.tc.Ceiling.V(); ok && limits.Infinite {
		timer := time.AfterFunc(ceiling, func() {
			_ = s.Stop(ctx)
		})
		defer timer.Stop()
	}

	start := time.Now()
	mv, err := s.RequestBestMove(wctx, pos, limits)
	return mv, time.Since(start), err
}

func (g *Game) abort(ctx context.Context, ret Result, culprit chess.Color, err error) Result {
	name := g.white.Name
	if culprit == chess.Black {
		name = g.black.Name
	}
	logw.Errorf(ctx, "Engine %v failed to start: %v", name, err)

	ret.Outcome, ret.Culprit = Aborted, lang.Some(culprit)
	switch {
	case errors.Is(err, uci.ErrHandshake):
		ret.Reason = HandshakeFailed
	case errors.Is(err, context.Canceled):
		ret.Reason = Cancelled
	default:
		ret.Reason = LaunchFailed
	}
	return ret
}

// adjudicate maps the board state to a final outcome, if the game is over.
func adjudicate(board *chess.Game) (Outcome, Reason, bool) {
	pos := board.Position()
	switch pos.Status() {
	case chess.Checkmate:
		return Loss(pos.Turn()), Checkmate, true
	case chess.Stalemate:
		return Draw, Stalemate, true
	}

	if board.Outcome() == chess.NoOutcome {
		return Undecided, None, false
	}
	switch board.Method() {
	case chess.ThreefoldRepetition, chess.FivefoldRepetition:
		return Draw, Repetition3, true
	case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
		return Draw, NoProgress, true
	case chess.InsufficientMaterial:
		return Draw, InsufficientMaterial, true
	default:
		return Draw, None, true
	}
}

// forfeitReason maps a session failure to the forfeit recorded against the
// offending side.
func forfeitReason(err error) Reason {
	switch {
	case errors.Is(err, uci.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, uci.ErrNoMove):
		// The engine resigned the position while legal moves exist.
		return NoMove
	case errors.Is(err, io.EOF) || errors.Is(err, uci.ErrClosed):
		return EngineError
	case errors.Is(err, uci.ErrProtocol):
		return EngineError
	default:
		return EngineError
	}
}
