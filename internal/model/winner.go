package model

// Winner is one row of the win leaderboard, keyed by user name
type Winner struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}
