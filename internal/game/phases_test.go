package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedRoom(t *testing.T, g *Registry, n int) *Room {
	t.Helper()
	r := seatedRoom(t, g, n)
	require.NoError(t, g.StartGame("host", false, ""))
	waitPhase(t, r, PhaseDrafting)
	return r
}

func submitAll(t *testing.T, g *Registry, r *Room) {
	t.Helper()
	r.mu.Lock()
	conns := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		conns = append(conns, p.ConnID)
	}
	code := r.Code
	r.mu.Unlock()
	for _, c := range conns {
		require.NoError(t, g.SubmitAnswer(code, c, "إجابة من "+c))
	}
}

func voteAll(t *testing.T, g *Registry, r *Room) {
	t.Helper()
	r.mu.Lock()
	conns := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		conns = append(conns, p.ConnID)
	}
	code := r.Code
	r.mu.Unlock()
	for i, c := range conns {
		target := conns[(i+1)%len(conns)]
		require.NoError(t, g.SubmitVote(code, c, target, target))
	}
}

func TestDraftingAdvancesWhenAllSubmitted(t *testing.T) {
	g, rec := newTestRegistry()
	r := startedRoom(t, g, 3)

	submitAll(t, g, r)

	// the last answer ends drafting without waiting out the countdown; the
	// host gets the named answer list exactly once
	assert.Equal(t, 1, rec.countTo("host", "receiveAnswers"))

	waitPhase(t, r, PhaseVoting)
	assert.Equal(t, 1, rec.countTo(r.Code, "startVoting"))
}

func TestSubmitOutsideDraftingIsSilentlyIgnored(t *testing.T) {
	g, _ := newTestRegistry()
	r := seatedRoom(t, g, 3)

	require.NoError(t, g.SubmitAnswer(r.Code, "conn-1", "مبكر جداً"))
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.Answers, "lobby submission must not mutate state")
	assert.Equal(t, PhaseLobby, r.Phase)
}

func TestVoteOutsideVotingIsSilentlyIgnored(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)

	require.NoError(t, g.SubmitVote(r.Code, "conn-1", "conn-2", "conn-3"))
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.Votes)
	assert.Equal(t, PhaseDrafting, r.Phase)
}

func TestSelfQualityVoteRejected(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)
	submitAll(t, g, r)
	waitPhase(t, r, PhaseVoting)

	err := g.SubmitVote(r.Code, "conn-1", "conn-1", "conn-2")
	assert.ErrorIs(t, err, ErrSelfVote)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.Votes, "rejected vote must not be recorded")
}

func TestIdentitySelfVoteAllowed(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)
	submitAll(t, g, r)
	waitPhase(t, r, PhaseVoting)

	require.NoError(t, g.SubmitVote(r.Code, "conn-1", "conn-2", "conn-1"))
	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Len(t, r.Votes, 1)
}

func TestVotingAdvancesExactlyOnce(t *testing.T) {
	g, rec := newTestRegistry()
	r := startedRoom(t, g, 4)
	submitAll(t, g, r)
	waitPhase(t, r, PhaseVoting)

	voteAll(t, g, r)
	waitPhase(t, r, PhaseResults)

	assert.Equal(t, 1, rec.countTo(r.Code, "roundResults"), "results must be emitted exactly once")

	// a straggling vote after the transition is a no-op
	require.NoError(t, g.SubmitVote(r.Code, "conn-1", "conn-2", "conn-3"))
	assert.Equal(t, 1, rec.countTo(r.Code, "roundResults"))
}

func TestNextRoundLoopsUntilEnd(t *testing.T) {
	g, rec := newTestRegistry()
	r := startedRoom(t, g, 3)

	for round := 1; round <= 3; round++ {
		waitPhase(t, r, PhaseDrafting)
		submitAll(t, g, r)
		waitPhase(t, r, PhaseVoting)
		voteAll(t, g, r)
		waitPhase(t, r, PhaseResults)
		require.NoError(t, g.NextRound("host"))
	}

	waitPhase(t, r, PhaseEnd)
	assert.Equal(t, 1, rec.countTo(r.Code, "gameEnded"))

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, 4, r.CurrentRound)
}

func TestNextRoundRequiresHost(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)
	submitAll(t, g, r)
	waitPhase(t, r, PhaseVoting)
	voteAll(t, g, r)
	waitPhase(t, r, PhaseResults)

	assert.ErrorIs(t, g.NextRound("conn-2"), ErrNotHost)
}

func TestScenarioNotRepeatedWithinMatch(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)

	seen := map[int]bool{}
	for round := 1; round <= 3; round++ {
		waitPhase(t, r, PhaseDrafting)
		r.mu.Lock()
		id := r.CurrentScenario.ID
		r.mu.Unlock()
		assert.False(t, seen[id], "scenario %d repeated within match", id)
		seen[id] = true

		submitAll(t, g, r)
		waitPhase(t, r, PhaseVoting)
		voteAll(t, g, r)
		waitPhase(t, r, PhaseResults)
		require.NoError(t, g.NextRound("host"))
	}
}

func TestReconnectionMidVoting(t *testing.T) {
	g, rec := newTestRegistry()
	r := startedRoom(t, g, 3)
	submitAll(t, g, r)
	waitPhase(t, r, PhaseVoting)

	// Zed is conn-3's seat here: vote, drop, rejoin under a new conn id
	require.NoError(t, g.SubmitVote(r.Code, "conn-3", "conn-1", "conn-2"))
	g.Disconnect("conn-3")

	r.mu.Lock()
	name := r.player("conn-3").Name
	role := r.player("conn-3").Role
	score := r.player("conn-3").Score
	r.mu.Unlock()

	res, err := g.JoinRoom(r.Code, name, "conn-9")
	require.NoError(t, err)
	assert.True(t, res.Reconnected)

	r.mu.Lock()
	assert.Len(t, r.Players, 3, "reconnection must not duplicate the seat")
	p := r.player("conn-9")
	require.NotNil(t, p)
	assert.True(t, p.Connected)
	assert.Equal(t, role, p.Role)
	assert.Equal(t, score, p.Score)
	_, voteKept := r.Votes["conn-9"]
	assert.True(t, voteKept, "earlier vote must follow the new connection id")
	assert.Len(t, r.Votes, 1, "reconnection must not double-count the vote")
	r.mu.Unlock()

	// the current ballot is replayed to the rejoining connection only
	assert.Equal(t, 1, rec.countTo("conn-9", "startVoting"))
	assert.Equal(t, 1, rec.countTo("conn-9", "roleAssigned"))

	// remaining votes still complete the round
	require.NoError(t, g.SubmitVote(r.Code, "conn-1", "conn-2", "conn-2"))
	require.NoError(t, g.SubmitVote(r.Code, "conn-2", "conn-1", "conn-1"))
	waitPhase(t, r, PhaseResults)
}

func TestLateJoinerForcedCitizen(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)

	res, err := g.JoinRoom(r.Code, "Latecomer", "conn-7")
	require.NoError(t, err)
	assert.False(t, res.IsLeader)

	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.player("conn-7")
	require.NotNil(t, p)
	assert.Equal(t, RoleCitizen, p.Role)
}

func TestTimerClearedOnEarlyAdvance(t *testing.T) {
	g, _ := newTestRegistry()
	r := startedRoom(t, g, 3)

	r.mu.Lock()
	gen := r.timerGen
	r.mu.Unlock()

	submitAll(t, g, r)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Greater(t, r.timerGen, gen, "early advance must invalidate the drafting countdown")
}
