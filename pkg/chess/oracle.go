package chess

import (
	"errors"
	"fmt"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

// ErrIllegalMove is returned when the rules reject a move
var ErrIllegalMove = errors.New("illegal move")

// Move is a move request in board coordinates, e.g. e2 -> e4.
type Move struct {
	From      string
	To        string
	Promotion string
}

// AppliedMove is a move accepted by the rules, enriched with what the
// position knew about it.
type AppliedMove struct {
	From      string
	To        string
	Promotion string
	SAN       string
	Color     Color
	Piece     string
	Captured  string
}

// Oracle is the narrow view of a rules engine that the coordinator needs.
// One Oracle owns exactly one mutable position.
type Oracle interface {
	Turn() Color
	Apply(m Move) (AppliedMove, error)
	FEN() string
	IsCheckmate() bool
	IsDraw() bool
}

// RulesOracle is an Oracle backed by a full chess rules implementation
type RulesOracle struct {
	game *chesslib.Game
}

// NewRulesOracle creates an oracle on the standard starting position
func NewRulesOracle() *RulesOracle {
	return &RulesOracle{game: chesslib.NewGame()}
}

// Turn returns the side to move
func (o *RulesOracle) Turn() Color {
	if o.game.Position().Turn() == chesslib.White {
		return White
	}

	return Black
}

// Apply validates the move against the current position and plays it.
// Promotion defaults to a queen when a pawn reaches the last rank and the
// request does not name a piece. A promotion on a non-promoting move is
// ignored.
func (o *RulesOracle) Apply(m Move) (AppliedMove, error) {
	from, to := strings.ToLower(m.From), strings.ToLower(m.To)
	if !validSquare(from) || !validSquare(to) {
		return AppliedMove{}, fmt.Errorf("%w: malformed squares %q -> %q", ErrIllegalMove, m.From, m.To)
	}

	if o.game.Outcome() != chesslib.NoOutcome {
		return AppliedMove{}, fmt.Errorf("%w: game already decided", ErrIllegalMove)
	}

	promotion := strings.ToLower(m.Promotion)
	if promotion == "" {
		promotion = "q"
	}

	pos := o.game.Position()
	moves := o.game.ValidMoves()

	var chosen *chesslib.Move
	for i := range moves {
		candidate := &moves[i]
		if candidate.S1().String() != from || candidate.S2().String() != to {
			continue
		}
		if candidate.Promo() != chesslib.NoPieceType && candidate.Promo().String() != promotion {
			continue
		}
		chosen = candidate
		break
	}

	if chosen == nil {
		return AppliedMove{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	applied := AppliedMove{
		From:  from,
		To:    to,
		SAN:   chesslib.AlgebraicNotation{}.Encode(pos, chosen),
		Color: o.Turn(),
		Piece: pos.Board().Piece(chosen.S1()).Type().String(),
	}
	if chosen.Promo() != chesslib.NoPieceType {
		applied.Promotion = chosen.Promo().String()
	}
	if captured := pos.Board().Piece(chosen.S2()); captured != chesslib.NoPiece {
		applied.Captured = captured.Type().String()
	} else if chosen.HasTag(chesslib.EnPassant) {
		applied.Captured = chesslib.Pawn.String()
	}

	if err := o.game.PushMove(applied.SAN, nil); err != nil {
		return AppliedMove{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}

	return applied, nil
}

// FEN returns the serialized current position
func (o *RulesOracle) FEN() string {
	return o.game.FEN()
}

// IsCheckmate reports whether the side to move has been mated
func (o *RulesOracle) IsCheckmate() bool {
	return o.game.Method() == chesslib.Checkmate
}

// IsDraw reports whether the game has ended drawn
func (o *RulesOracle) IsDraw() bool {
	return o.game.Outcome() == chesslib.Draw
}

func validSquare(sq string) bool {
	return len(sq) == 2 && sq[0] >= 'a' && sq[0] <= 'h' && sq[1] >= '1' && sq[1] <= '8'
}
