package model

import "time"

// Game is a recorded game result.
type Game struct {
	ID             int64     `json:"id"`
	WhiteID        int64     `json:"white_id"`
	BlackID        int64     `json:"black_id"`
	WhitePoints    float64   `json:"white_points"`
	BlackPoints    float64   `json:"black_points"`
	PGN            *string   `json:"pgn,omitempty"`
	ScorecardImage []byte    `json:"scorecard_image,omitempty"`
	GameEnd        time.Time `json:"game_end"`
	GameEntered    time.Time `json:"game_entered"`
	AddedBy        int64     `json:"added_by"`
}

// NewGame is the data needed to insert a game.
type NewGame struct {
	WhiteID        int64
	BlackID        int64
	WhitePoints    float64
	BlackPoints    float64
	PGN            *string
	ScorecardImage []byte
	GameEnd        time.Time
	GameEntered    time.Time
	AddedBy        int64
}
