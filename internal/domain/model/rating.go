package model

// RatingRecord tracks a player's skill rating and match history. Records
// are lazily seeded on first queue join and survive process restarts only
// when backed by a durable store.
type RatingRecord struct {
	PlayerID      string  `json:"player_id"`
	Rating        float64 `json:"rating"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	TotalMatches  int     `json:"total_matches"`
	WinRate       float64 `json:"win_rate"`
	LastMatchTime int64   `json:"last_match_time"`
}
