package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState represents the current phase of a game
type GameState string

const (
	GameStateAwaitingFleets GameState = "awaiting_fleets" // 0 or 1 fleets submitted
	GameStateInProgress     GameState = "in_progress"     // both fleets in, turn assigned
	GameStateFinished       GameState = "finished"        // one fleet destroyed or forced by disconnect
)

// AttackStatus is the per-cell outcome of a resolved shot
type AttackStatus string

const (
	AttackMiss AttackStatus = "miss"
	AttackHit  AttackStatus = "hit"
	AttackKill AttackStatus = "kill"
)

// Game is one match between exactly two players
type Game struct {
	ID      GameID
	State   GameState
	Players []UserID // exactly 2
	// Fleets holds the submitted fleets by player id; absent until submission
	Fleets map[UserID]*Fleet
	// FleetOrder records fleet submission order; the first submitter moves first
	FleetOrder []UserID
	// Turn is the current turn holder once the game is InProgress
	Turn UserID
	// BotID is set for single-player games
	BotID     UserID
	Winner    UserID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPlayer returns true if the user is one of the game's players
func (g *Game) HasPlayer(id UserID) bool {
	for _, p := range g.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Opponent returns the other player's id
func (g *Game) Opponent(id UserID) UserID {
	for _, p := range g.Players {
		if p != id {
			return p
		}
	}
	return ""
}

// FleetOf returns the player's own fleet, or nil if not yet submitted
func (g *Game) FleetOf(id UserID) *Fleet {
	return g.Fleets[id]
}

// DefendingFleet returns the fleet the given attacker shoots at
func (g *Game) DefendingFleet(attacker UserID) *Fleet {
	return g.Fleets[g.Opponent(attacker)]
}

// BothFleetsIn returns true once both players have submitted fleets
func (g *Game) BothFleetsIn() bool {
	return len(g.Fleets) == len(g.Players)
}

// IsBotTurn returns true if the current turn holder is the game's bot
func (g *Game) IsBotTurn() bool {
	return g.BotID != "" && g.Turn == g.BotID
}
