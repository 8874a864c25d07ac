package game

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/notnil/chess"
)

// ErrIllegalMove indicates a move that is not syntactically valid UCI long
// algebraic notation, or not legal in the position.
var ErrIllegalMove = errors.New("illegal move")

var uciMove = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

var promoPieces = map[byte]chess.PieceType{
	'q': chess.Queen,
	'r': chess.Rook,
	'b': chess.Bishop,
	'n': chess.Knight,
}

// ParseMove decodes a UCI long-algebraic move, such as "e2e4" or "e7e8q",
// against the given position. The mover is resolved from the board and the
// move is validated by membership in the position's legal moves, so the
// returned move carries the correct kind: capture, double push, en passant,
// castling or promotion.
func ParseMove(s string, pos *chess.Position) (*chess.Move, error) {
	if !uciMove.MatchString(s) {
		return nil, fmt.Errorf("%w: malformed %q", ErrIllegalMove, s)
	}

	from := chess.Square((s[1]-'1')*8 + (s[0] - 'a'))
	to := chess.Square((s[3]-'1')*8 + (s[2] - 'a'))
	promo := chess.NoPieceType
	if len(s) == 5 {
		promo = promoPieces[s[4]]
	}

	p := pos.Board().Piece(from)
	if p == chess.NoPiece || p.Color() != pos.Turn() {
		return nil, fmt.Errorf("%w: no %v piece on %v", ErrIllegalMove, pos.Turn().Name(), from)
	}

	for _, m := range pos.ValidMoves() {
		if m.S1() == from && m.S2() == to && m.Promo() == promo {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q not playable", ErrIllegalMove, s)
}

// FormatMove encodes a move in UCI long-algebraic notation: four characters,
// five for promotions.
func FormatMove(m *chess.Move) string {
	if m.Promo() == chess.NoPieceType {
		return fmt.Sprintf("%v%v", m.S1(), m.S2())
	}
	return fmt.Sprintf("%v%v%v", m.S1(), m.S2(), promoChar(m.Promo()))
}

func promoChar(p chess.PieceType) string {
	switch p {
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	default:
		return ""
	}
}
