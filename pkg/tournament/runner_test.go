package tournament_test

import (
	"context"
	"testing"
	"time"

	"github.com/herohde/arena/pkg/game"
	"github.com/herohde/arena/pkg/tournament"
	"github.com/herohde/arena/pkg/uci"
	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstMoveSession deterministically plays the first legal move in the
// position it is handed.
type firstMoveSession struct {
	name string
}

func (s *firstMoveSession) Name() string {
	return s.name
}

func (s *firstMoveSession) RequestBestMove(ctx context.Context, pos uci.Position, limits uci.Limits) (string, error) {
	board := chess.NewGame()
	for _, mv := range pos.Moves {
		m, err := game.ParseMove(mv, board.Position())
		if err != nil {
			return "", err
		}
		if err := board.Move(m); err != nil {
			return "", err
		}
	}

	valid := board.Position().ValidMoves()
	if len(valid) == 0 {
		return "", uci.ErrNoMove
	}
	return game.FormatMove(valid[0]), nil
}

func (s *firstMoveSession) Stop(ctx context.Context) error {
	return nil
}

func (s *firstMoveSession) Disconnect(ctx context.Context) error {
	return nil
}

// countingLauncher creates a fresh session per launch, recording every one.
type countingLauncher struct {
	launched []game.Session
	fail     error
}

func (l *countingLauncher) Launch(ctx context.Context, desc uci.Descriptor) (game.Session, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	s := &firstMoveSession{name: desc.Name}
	l.launched = append(l.launched, s)
	return s, nil
}

func TestColorRotation(t *testing.T) {
	// Two engines that always play the first legal move over 4 rounds:
	// engine1 is white in rounds 0 and 2, black in rounds 1 and 3.

	const rounds = 4
	l := &countingLauncher{}

	ret := tournament.Run(context.Background(), rounds,
		uci.Descriptor{Name: "e1"}, uci.Descriptor{Name: "e2"},
		game.MoveTime(10*time.Millisecond),
		tournament.WithGameOptions(game.WithLauncher(l)))

	require.Len(t, ret.Games, rounds)
	for i, res := range ret.Games {
		if i%2 == 0 {
			assert.Equal(t, "e1", res.White, "round %v", i)
			assert.Equal(t, "e2", res.Black, "round %v", i)
		} else {
			assert.Equal(t, "e2", res.White, "round %v", i)
			assert.Equal(t, "e1", res.Black, "round %v", i)
		}
	}

	// Tallies account for every round.
	assert.Equal(t, rounds, ret.Engine1Wins+ret.Engine2Wins+ret.Draws+ret.Aborted)
	assert.Zero(t, ret.Aborted)
}

func TestFreshSessionsPerRound(t *testing.T) {
	const rounds = 3
	l := &countingLauncher{}

	ret := tournament.Run(context.Background(), rounds,
		uci.Descriptor{Name: "e1"}, uci.Descriptor{Name: "e2"},
		game.MoveTime(10*time.Millisecond),
		tournament.WithGameOptions(game.WithLauncher(l)))

	require.Len(t, ret.Games, rounds)

	// Two fresh sessions per round; no object reuse across games.
	require.Len(t, l.launched, 2*rounds)
	seen := map[game.Session]bool{}
	for _, s := range l.launched {
		assert.False(t, seen[s], "session reused across games")
		seen[s] = true
	}
}

func TestTallyByNameNotColor(t *testing.T) {
	// A forfeit by whoever plays white must credit the engine playing black
	// in that round, independent of names.

	l := &forfeitWhiteLauncher{}

	ret := tournament.Run(context.Background(), 2,
		uci.Descriptor{Name: "e1"}, uci.Descriptor{Name: "e2"},
		game.MoveTime(10*time.Millisecond),
		tournament.WithGameOptions(game.WithLauncher(l)))

	require.Len(t, ret.Games, 2)

	// Round 0: e1 is white and forfeits; round 1: e2 is white and forfeits.
	assert.Equal(t, game.BlackWins, ret.Games[0].Outcome)
	assert.Equal(t, game.BlackWins, ret.Games[1].Outcome)
	assert.Equal(t, 1, ret.Engine1Wins)
	assert.Equal(t, 1, ret.Engine2Wins)
	assert.Zero(t, ret.Draws)
	assert.Zero(t, ret.Aborted)
}

// forfeitWhiteLauncher builds sessions where the white side always plays an
// illegal move.
type forfeitWhiteLauncher struct {
	count int
}

func (l *forfeitWhiteLauncher) Launch(ctx context.Context, desc uci.Descriptor) (game.Session, error) {
	l.count++
	if l.count%2 == 1 {
		return &illegalMoveSession{name: desc.Name}, nil // white is launched first
	}
	return &firstMoveSession{name: desc.Name}, nil
}

type illegalMoveSession struct {
	name string
}

func (s *illegalMoveSession) Name() string {
	return s.name
}

func (s *illegalMoveSession) RequestBestMove(ctx context.Context, pos uci.Position, limits uci.Limits) (string, error) {
	return "e2e5", nil
}

func (s *illegalMoveSession) Stop(ctx context.Context) error {
	return nil
}

func (s *illegalMoveSession) Disconnect(ctx context.Context) error {
	return nil
}

func TestAbortedRoundsExcluded(t *testing.T) {
	// Launch failures abort every round: recorded, but no wins or draws.

	const rounds = 3
	l := &countingLauncher{fail: uci.ErrLaunch}

	ret := tournament.Run(context.Background(), rounds,
		uci.Descriptor{Name: "e1"}, uci.Descriptor{Name: "e2"},
		game.MoveTime(10*time.Millisecond),
		tournament.WithGameOptions(game.WithLauncher(l)))

	require.Len(t, ret.Games, rounds)
	assert.Equal(t, rounds, ret.Aborted)
	assert.Zero(t, ret.Engine1Wins)
	assert.Zero(t, ret.Engine2Wins)
	assert.Zero(t, ret.Draws)

	for _, res := range ret.Games {
		assert.Equal(t, game.Aborted, res.Outcome)
		assert.Equal(t, game.LaunchFailed, res.Reason)
	}
}

func TestCancellationStopsTournament(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := &countingLauncher{}

	ret := tournament.Run(ctx, 8,
		uci.Descriptor{Name: "e1"}, uci.Descriptor{Name: "e2"},
		game.MoveTime(10*time.Millisecond),
		tournament.WithGameOptions(game.WithLauncher(l)))

	// The first game observes the cancellation and the remaining rounds are
	// not played.
	require.Len(t, ret.Games, 1)
	assert.Equal(t, game.Aborted, ret.Games[0].Outcome)
	assert.Equal(t, game.Cancelled, ret.Games[0].Reason)
	assert.Equal(t, 1, ret.Aborted)
}
