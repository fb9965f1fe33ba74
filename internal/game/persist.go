package game

import (
	"github.com/rs/zerolog/log"

	"github.com/rashedq/shahid/internal/stats"
)

// persistMatch writes the finished match into the stat store. Bot seats are
// part of the match record but never get a player ledger entry. Caller
// holds r.mu; the store's read-modify-write stays on this call path so the
// single-writer model holds.
func (g *Registry) persistMatch(r *Room, results []ResultEntry) {
	winner := ""
	if len(results) > 0 {
		winner = results[0].Name
	}
	matchPlayers := make([]stats.MatchPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		matchPlayers = append(matchPlayers, stats.MatchPlayer{
			Name:  p.Name,
			Score: p.Score,
			Role:  string(p.Role),
		})
		if p.IsBot {
			continue
		}
		if err := g.stats.UpdatePlayerStats(p.Name, p.Score, string(p.Role), p.Name == winner); err != nil {
			log.Error().Err(err).Str("player", p.Name).Msg("failed to update player stats")
		}
	}
	if err := g.stats.SaveMatch(r.Code, matchPlayers); err != nil {
		log.Error().Err(err).Str("code", r.Code).Msg("failed to save match")
	}
}
