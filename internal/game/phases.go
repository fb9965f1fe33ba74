package game

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// clearPhaseTimer cancels the phase-owned countdown or delay and bumps the
// generation counter so any callback already in flight bails out. Must run
// on every transition, with r.mu held.
func (g *Registry) clearPhaseTimer(r *Room) {
	r.timerGen++
	if r.timerCancel != nil {
		r.timerCancel()
		r.timerCancel = nil
	}
}

// scheduleAfter installs the phase-owned delay. fn runs with r.mu held and
// only if no transition has happened in between.
func (g *Registry) scheduleAfter(r *Room, d time.Duration, fn func(*Room)) {
	gen := r.timerGen
	t := time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.timerGen != gen {
			return
		}
		fn(r)
	})
	r.timerCancel = func() { t.Stop() }
}

// startCountdown runs the drafting countdown, broadcasting the remaining
// seconds every tick and advancing when it reaches zero.
func (g *Registry) startCountdown(r *Room, seconds int, onExpire func(*Room)) {
	gen := r.timerGen
	stop := make(chan struct{})
	r.timerCancel = func() { close(stop) }
	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		left := seconds
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				left--
				g.emit.ToRoom(r.Code, "timerUpdate", left)
				if left <= 0 {
					r.mu.Lock()
					if r.timerGen == gen {
						onExpire(r)
					}
					r.mu.Unlock()
					return
				}
			}
		}
	}()
}

// StartGame begins a match (or restarts one from END). Tutorial mode is a
// single bot-backfilled round where the caller may pin their own role.
func (g *Registry) StartGame(connID string, tutorial bool, desiredRole Role) error {
	r := g.findRoomByConn(connID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isAuthority(connID) {
		return ErrNotHost
	}
	if r.Phase != PhaseLobby && r.Phase != PhaseEnd {
		return ErrInvalidPhase
	}
	if !tutorial && len(r.Players) < 3 {
		return ErrNotEnoughPlayers
	}

	if tutorial {
		for len(r.Players) < 4 {
			g.addBot(r, len(r.Players))
		}
		if desiredRole != "" && r.player(connID) != nil {
			r.forcedConnID = connID
			r.forcedRole = desiredRole
		}
		g.emit.ToRoom(r.Code, "playerJoined", r.roster())
	}

	r.IsTutorial = tutorial
	r.CurrentRound = 1
	if tutorial {
		r.TotalRounds = 1
	} else {
		r.TotalRounds = g.settings.StandardRounds
	}
	for _, p := range r.Players {
		p.Score = 0
	}
	r.usedScenarios = make(map[int]bool)

	log.Info().Str("code", r.Code).Int("players", len(r.Players)).Bool("tutorial", tutorial).Msg("game started")
	g.startRound(r)
	return nil
}

// NextRound advances out of RESULTS on the host's command.
func (g *Registry) NextRound(connID string) error {
	r := g.findRoomByConn(connID)
	if r == nil {
		return ErrRoomNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.HostConnID != connID && !r.isAuthority(connID) {
		return ErrNotHost
	}
	if r.Phase != PhaseResults {
		return nil
	}
	r.CurrentRound++
	if r.CurrentRound > r.TotalRounds {
		g.finishGame(r)
		return nil
	}
	g.startRound(r)
	return nil
}

// startRound runs role assignment and gives clients a short grace window to
// show the role screen before drafting begins. Caller holds r.mu.
func (g *Registry) startRound(r *Room) {
	g.clearPhaseTimer(r)
	r.Phase = PhasePlaying
	r.CurrentScenario = g.scenarios.Pick(r.usedScenarios)
	r.Answers = make(map[string]string)
	r.Drafts = make(map[string]string)
	r.Votes = make(map[string]Vote)

	pinnedConn, pinnedRole := r.forcedConnID, r.forcedRole
	r.forcedConnID, r.forcedRole = "", ""
	assignRoles(r.Players, pinnedConn, pinnedRole)

	for _, p := range r.Players {
		if p.IsBot {
			continue
		}
		g.emit.ToConn(p.ConnID, "roleAssigned", rolePayload(p, r))
	}
	g.emit.ToRoom(r.Code, "gameStarted", GameStartedPayload{
		Title:       r.CurrentScenario.Title,
		Round:       r.CurrentRound,
		TotalRounds: r.TotalRounds,
		IsTutorial:  r.IsTutorial,
	})
	log.Info().Str("code", r.Code).Int("round", r.CurrentRound).Str("scenario", r.CurrentScenario.Title).Msg("round started")

	g.scheduleAfter(r, g.settings.RoleGrace, g.startDrafting)
}

func (g *Registry) startDrafting(r *Room) {
	g.clearPhaseTimer(r)
	r.Phase = PhaseDrafting
	r.Answers = make(map[string]string)
	r.Drafts = make(map[string]string)

	g.emit.ToRoom(r.Code, "startDrafting", StartDraftingPayload{Duration: g.settings.DraftSeconds})
	g.startCountdown(r, g.settings.DraftSeconds, g.startPresentation)
	g.scheduleBotDrafts(r)
}

func (g *Registry) startPresentation(r *Room) {
	g.clearPhaseTimer(r)
	r.Phase = PhasePresentation

	g.emit.ToRoom(r.Code, "startPresentation", nil)

	reveal := make([]AnswerReveal, 0, len(r.Players))
	for _, p := range r.Players {
		answer := r.Answers[p.ConnID]
		if answer == "" {
			answer = "لم يكتب شيئاً..."
		}
		reveal = append(reveal, AnswerReveal{PlayerID: p.ConnID, PlayerName: p.Name, Answer: answer})
	}
	g.emit.ToConn(r.HostConnID, "receiveAnswers", reveal)

	g.scheduleAfter(r, g.settings.PresentationDelay, g.startVoting)
}

func (g *Registry) startVoting(r *Room) {
	g.clearPhaseTimer(r)
	r.Phase = PhaseVoting
	r.Votes = make(map[string]Vote)

	g.emit.ToRoom(r.Code, "startVoting", r.ballot())
	g.scheduleBotVotes(r)
}

// endRound scores the finished round, applies the deltas and broadcasts the
// sorted breakdown. Caller holds r.mu.
func (g *Registry) endRound(r *Room) {
	g.clearPhaseTimer(r)
	r.Phase = PhaseResults

	scores := ScoreRound(r.Players, r.Votes)
	for _, p := range r.Players {
		if s := scores[p.ConnID]; s != nil {
			p.Score += s.Delta
		}
	}
	results := r.resultEntries(scores)
	g.emit.ToRoom(r.Code, "roundResults", RoundResultsPayload{Results: results})
	log.Info().Str("code", r.Code).Int("round", r.CurrentRound).Msg("round scored")

	if g.settings.ExportEnabled {
		snap := newExportSnapshot(r, scores)
		go func() {
			if err := snap.appendTo(g.settings.ExportFile); err != nil {
				log.Error().Err(err).Str("code", snap.Code).Msg("failed to export round")
			}
		}()
	}
}

func (r *Room) resultEntries(scores map[string]*RoundScore) []ResultEntry {
	results := make([]ResultEntry, 0, len(r.Players))
	for _, p := range r.Players {
		entry := ResultEntry{
			Name:       p.Name,
			Role:       RoleName(p.Role),
			TotalScore: p.Score,
		}
		if s := scores[p.ConnID]; s != nil {
			entry.RoundScore = s.Delta
			for _, ev := range s.Events {
				entry.Breakdown = append(entry.Breakdown, ev.Reason)
			}
		}
		results = append(results, entry)
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].TotalScore > results[j].TotalScore })
	return results
}

// finishGame terminates the match, persists stats and emits the final
// leaderboard. The room stays addressable; startGame restarts it.
func (g *Registry) finishGame(r *Room) {
	g.clearPhaseTimer(r)
	r.Phase = PhaseEnd

	results := r.resultEntries(nil)
	var leaderboard any
	if g.stats != nil && !r.IsTutorial {
		g.persistMatch(r, results)
		if lb, err := g.stats.Leaderboard(); err == nil {
			leaderboard = lb
		} else {
			log.Error().Err(err).Msg("failed to load leaderboard")
		}
	}
	g.emit.ToRoom(r.Code, "gameEnded", GameEndedPayload{Results: results, Leaderboard: leaderboard})
	log.Info().Str("code", r.Code).Msg("game ended")
}
