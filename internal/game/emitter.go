package game

import (
	"context"

	"github.com/rashedq/shahid/internal/stats"
)

// Emitter is the outbound half of the transport gateway. The registry pushes
// every server-originated event through it, including timer ticks.
type Emitter interface {
	ToRoom(code string, event string, payload any)
	ToConn(connID string, event string, payload any)
}

// StatsSink receives the durable per-player ledger updates at match end.
type StatsSink interface {
	UpdatePlayerStats(name string, score int, role string, winner bool) error
	SaveMatch(roomCode string, players []stats.MatchPlayer) error
	Leaderboard() ([]stats.PlayerStats, error)
}

// BotAnswerer lets bot seats fetch an LLM-written alibi instead of the
// static pool. Best-effort: any failure falls back to canned text.
type BotAnswerer interface {
	CompleteWithSystem(ctx context.Context, model string, systemPrompt string, prompt string) (string, error)
}
