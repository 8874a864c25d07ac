package uci

import (
	"fmt"
	"strings"
	"time"

	"github.com/seekerror/stdlib/pkg/lang"
)

// Position describes the game state transmitted before each search:
// "position [fen <FEN> | startpos] [moves m1 .. mk]".
type Position struct {
	// FEN is the starting position, if not the standard one.
	FEN lang.Optional[string]
	// Moves are the UCI moves applied from the starting position.
	Moves []string
}

// Command returns the position command line.
func (p Position) Command() string {
	var sb strings.Builder
	sb.WriteString("position ")
	if fen, ok := p.FEN.V(); ok {
		sb.WriteString("fen ")
		sb.WriteString(fen)
	} else {
		sb.WriteString("startpos")
	}
	if len(p.Moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(p.Moves, " "))
	}
	return sb.String()
}

// Limits hold the per-move search limits transmitted with "go". At most one
// of Infinite, MoveTime and the clock fields is expected to be in use.
type Limits struct {
	// MoveTime limits the search to a fixed duration.
	MoveTime lang.Optional[time.Duration]
	// WTime and BTime are the remaining clock times per side.
	WTime, BTime lang.Optional[time.Duration]
	// WInc and BInc are the per-move increments, if any.
	WInc, BInc lang.Optional[time.Duration]
	// Infinite searches until "stop".
	Infinite bool
}

// Command returns the go command line.
func (l Limits) Command() string {
	parts := []string{"go"}
	if l.Infinite {
		parts = append(parts, "infinite")
	}
	if d, ok := l.MoveTime.V(); ok {
		parts = append(parts, fmt.Sprintf("movetime %v", d.Milliseconds()))
	}
	if d, ok := l.WTime.V(); ok {
		parts = append(parts, fmt.Sprintf("wtime %v", d.Milliseconds()))
	}
	if d, ok := l.BTime.V(); ok {
		parts = append(parts, fmt.Sprintf("btime %v", d.Milliseconds()))
	}
	if d, ok := l.WInc.V(); ok {
		parts = append(parts, fmt.Sprintf("winc %v", d.Milliseconds()))
	}
	if d, ok := l.BInc.V(); ok {
		parts = append(parts, fmt.Sprintf("binc %v", d.Milliseconds()))
	}
	return strings.Join(parts, " ")
}
