package uci

import "errors"

var (
	// ErrLaunch indicates that the engine executable could not be spawned.
	ErrLaunch = errors.New("engine launch failed")

	// ErrHandshake indicates that no uciok arrived before the handshake
	// timeout, or that the engine exited first.
	ErrHandshake = errors.New("uci handshake failed")

	// ErrClosed indicates an attempt to drive a closed or crashed session.
	ErrClosed = errors.New("session closed")

	// ErrProtocol indicates a malformed line where structure was required,
	// such as a bestmove reply with no move token.
	ErrProtocol = errors.New("protocol error")

	// ErrTimeout indicates that the per-move deadline was exceeded.
	ErrTimeout = errors.New("deadline exceeded")

	// ErrNoMove indicates a "bestmove (none)" or "bestmove 0000" reply.
	ErrNoMove = errors.New("no move")
)
