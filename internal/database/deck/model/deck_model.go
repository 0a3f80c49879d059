package model

import "time"

// Board rows hold card pool indices grouped by type row and mana value
// column, the layout deck editors expect.
type Board [][][]int

// NewBoard allocates an empty rows x cols board.
func NewBoard(rows, cols int) Board {
	board := make(Board, rows)
	for r := range board {
		board[r] = make([][]int, cols)
		for c := range board[r] {
			board[r][c] = []int{}
		}
	}
	return board
}

// DeckSeat is one drafter's built deck.
type DeckSeat struct {
	Bot       bool   `json:"bot"`
	Owner     string `json:"owner,omitempty"`
	Name      string `json:"name"`
	Mainboard Board  `json:"mainboard"`
	Sideboard Board  `json:"sideboard"`
	Pickorder []int  `json:"pickorder"`
}

// Deck is the per-draft deck document, one seat entry per drafter. It is
// keyed by the draft id and carries its own public id.
type Deck struct {
	ID      string     `json:"id"`
	DraftID string     `json:"draft"`
	CubeID  string     `json:"cube"`
	Cards   []string   `json:"cards"`
	Basics  []int      `json:"basics"`
	Seats   []DeckSeat `json:"seats"`

	Version uint64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
}
