// Package chess defines the game entities
package chess

// Color represents a side in a chess game
type Color string

// Possible color variations in a chess game
const (
	White Color = "w"
	Black Color = "b"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	if c == White {
		return Black
	}

	return White
}

// Name returns the capitalized side name used in player facing messages.
func (c Color) Name() string {
	if c == White {
		return "White"
	}

	return "Black"
}

// Valid reports whether c is one of the two sides.
func (c Color) Valid() bool {
	return c == White || c == Black
}
