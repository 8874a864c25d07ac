// sparring is a minimal UCI engine that plays a uniformly random legal move.
// It exists so the harness can be exercised end to end without third-party
// engines: point arena at two sparring binaries and a full game plays out.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/herohde/arena/pkg/game"
	"github.com/notnil/chess"
	"github.com/seekerror/logw"
)

var seed = flag.Int64("seed", 0, "Random seed (zero for time-based)")

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: sparring [options]

SPARRING is a trivial UCI chess engine that plays a random legal move.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(s))

	board := chess.NewGame()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "uci":
			fmt.Println("id name sparring")
			fmt.Println("id author arena")
			fmt.Println("uciok")

		case "isready":
			fmt.Println("readyok")

		case "ucinewgame":
			board = chess.NewGame()

		case "position":
			b, err := parsePosition(fields[1:])
			if err != nil {
				logw.Errorf(ctx, "Invalid position %q: %v", strings.Join(fields, " "), err)
				return
			}
			board = b

		case "go":
			moves := board.Position().ValidMoves()
			if len(moves) == 0 {
				fmt.Println("bestmove 0000")
				continue
			}
			fmt.Printf("bestmove %v\n", game.FormatMove(moves[rnd.Intn(len(moves))]))

		case "stop":
			// Moves are instantaneous; bestmove was already sent.

		case "quit":
			return

		default:
			// ignore anything not handled
		}
	}
}

func parsePosition(args []string) (*chess.Game, error) {
	ret := chess.NewGame()

	i := 0
	switch {
	case i < len(args) && args[i] == "startpos":
		i++
	case i < len(args) && args[i] == "fen":
		if len(args) < i+7 {
			return nil, fmt.Errorf("short fen: %v", strings.Join(args, " "))
		}
		opt, err := chess.FEN(strings.Join(args[i+1:i+7], " "))
		if err != nil {
			return nil, err
		}
		ret = chess.NewGame(opt)
		i += 7
	}

	if i < len(args) && args[i] == "moves" {
		for _, mv := range args[i+1:] {
			m, err := game.ParseMove(mv, ret.Position())
			if err != nil {
				return nil, err
			}
			if err := ret.Move(m); err != nil {
				return nil, err
			}
		}
	}
	return ret, nil
}
